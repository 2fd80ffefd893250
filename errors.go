package docdex

import (
	"github.com/kailas-cloud/docdex/internal/domain"
	"github.com/kailas-cloud/docdex/internal/domain/aggregation"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound                = domain.ErrNotFound
	ErrAlreadyExists           = domain.ErrAlreadyExists
	ErrInvalidSchema           = domain.ErrInvalidSchema
	ErrDocumentNotFound        = domain.ErrDocumentNotFound
	ErrAggregationNotSupported = domain.ErrAggregationNotSupported
)

// ErrReservedName signals a reserved token used as an aggregation name.
var ErrReservedName = aggregation.ErrReservedName

// ReservedNameError carries the offending aggregation name; it unwraps to
// ErrReservedName.
type ReservedNameError = aggregation.ReservedNameError

// ReservedNames returns the aggregation name tokens docdex refuses, in a
// stable order. The match is case-sensitive and exact.
func ReservedNames() []string { return aggregation.ReservedNames() }
