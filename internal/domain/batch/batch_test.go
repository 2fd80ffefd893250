package batch

import (
	"errors"
	"testing"
)

func TestResultConstructors(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		status ItemStatus
		ok     bool
	}{
		{"created", NewCreated("doc-1"), StatusCreated, true},
		{"updated", NewUpdated("doc-1"), StatusUpdated, true},
		{"deleted", NewDeleted("doc-1"), StatusDeleted, true},
		{"error", NewError("doc-1", errors.New("boom")), StatusError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.ID() != "doc-1" {
				t.Errorf("ID() = %q", tt.result.ID())
			}
			if tt.result.Status() != tt.status {
				t.Errorf("Status() = %q, want %q", tt.result.Status(), tt.status)
			}
			if tt.result.OK() != tt.ok {
				t.Errorf("OK() = %v, want %v", tt.result.OK(), tt.ok)
			}
		})
	}
}

func TestNewError_WrapsErr(t *testing.T) {
	err := errors.New("something failed")
	r := NewError("doc-2", err)
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}
