// Package batch defines per-item outcomes for bulk document operations.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusCreated ItemStatus = "created"
	StatusUpdated ItemStatus = "updated"
	StatusDeleted ItemStatus = "deleted"
	StatusError   ItemStatus = "error"
)

// Result is the outcome of processing one item in a batch operation.
type Result struct {
	id     string
	status ItemStatus
	err    error
}

// NewCreated marks an item as newly created.
func NewCreated(id string) Result { return Result{id: id, status: StatusCreated} }

// NewUpdated marks an item as overwritten.
func NewUpdated(id string) Result { return Result{id: id, status: StatusUpdated} }

// NewDeleted marks an item as removed.
func NewDeleted(id string) Result { return Result{id: id, status: StatusDeleted} }

// NewError creates a failed batch result.
func NewError(id string, err error) Result { return Result{id: id, status: StatusError, err: err} }

// ID returns the item identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// OK reports whether the item was processed successfully.
func (r Result) OK() bool { return r.status != StatusError }
