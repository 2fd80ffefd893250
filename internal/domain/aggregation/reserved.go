package aggregation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrReservedName signals that a reserved token was used as an aggregation name.
var ErrReservedName = errors.New("reserved aggregation name")

// reservedNames are tokens the response parser relies on as structural
// markers; a user aggregation registered under one of them would be
// indistinguishable from metadata at the same JSON level. The match is
// case-sensitive and exact.
var reservedNames = map[string]bool{
	"score":           true,
	"value_as_string": true,
	"keys":            true,
	"max_score":       true,
}

// ReservedNameError wraps ErrReservedName with the offending name.
type ReservedNameError struct {
	Name string
}

func (e *ReservedNameError) Error() string {
	return fmt.Sprintf("'%s' is one of the reserved aggregation names: %s",
		e.Name, strings.Join(ReservedNames(), ", "))
}

func (e *ReservedNameError) Unwrap() error { return ErrReservedName }

// ValidateName rejects reserved tokens used as aggregation names.
// It is enforced wherever a name is bound as a key into a Set; constructing
// a bare Definition with a reserved name is allowed, since the collision
// only hazards response parsing of the name-keyed mapping.
func ValidateName(name string) error {
	if reservedNames[name] {
		return &ReservedNameError{Name: name}
	}
	return nil
}

// ReservedNames returns the reserved tokens in a stable order.
func ReservedNames() []string {
	return []string{"score", "value_as_string", "keys", "max_score"}
}
