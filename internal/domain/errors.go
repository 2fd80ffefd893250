package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidSchema signals an invalid schema definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrAggregationNotSupported signals that the backend cannot execute the
	// requested aggregation shape (e.g. nested aggregations on the redis driver).
	ErrAggregationNotSupported = errors.New("aggregation not supported by backend")
)
