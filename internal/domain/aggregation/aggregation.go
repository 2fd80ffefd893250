// Package aggregation defines named summary computations requested alongside
// a search query, the reserved-name rule protecting response parsing, and the
// parser that turns raw aggregation responses into typed results.
package aggregation

import "fmt"

// Kind is the aggregation computation type.
type Kind string

// Aggregation kind constants.
const (
	Terms      Kind = "terms"
	Max        Kind = "max"
	Min        Kind = "min"
	Avg        Kind = "avg"
	Sum        Kind = "sum"
	ValueCount Kind = "value_count"
)

// DefaultTermsSize is the bucket count used when a terms aggregation does not
// specify one.
const DefaultTermsSize = 10

// Definition is an immutable value object describing a single aggregation.
// Constructing a Definition does not apply the reserved-name rule; that rule
// binds only when the name is registered as a key in a Set.
type Definition struct {
	name  string
	kind  Kind
	field string
	size  int // terms only
}

// NewTerms creates a terms (bucket) aggregation over field.
// A non-positive size falls back to DefaultTermsSize.
func NewTerms(name, field string, size int) (Definition, error) {
	if size <= 0 {
		size = DefaultTermsSize
	}
	return newDefinition(name, Terms, field, size)
}

// NewMax creates a max metric aggregation over field.
func NewMax(name, field string) (Definition, error) {
	return newDefinition(name, Max, field, 0)
}

// NewMin creates a min metric aggregation over field.
func NewMin(name, field string) (Definition, error) {
	return newDefinition(name, Min, field, 0)
}

// NewAvg creates an avg metric aggregation over field.
func NewAvg(name, field string) (Definition, error) {
	return newDefinition(name, Avg, field, 0)
}

// NewSum creates a sum metric aggregation over field.
func NewSum(name, field string) (Definition, error) {
	return newDefinition(name, Sum, field, 0)
}

// NewValueCount creates a value_count metric aggregation over field.
func NewValueCount(name, field string) (Definition, error) {
	return newDefinition(name, ValueCount, field, 0)
}

func newDefinition(name string, kind Kind, field string, size int) (Definition, error) {
	if name == "" {
		return Definition{}, fmt.Errorf("aggregation name is required")
	}
	if field == "" {
		return Definition{}, fmt.Errorf("aggregation %q: field is required", name)
	}
	return Definition{name: name, kind: kind, field: field, size: size}, nil
}

// Name returns the user-supplied aggregation name.
func (d Definition) Name() string { return d.name }

// Kind returns the computation type.
func (d Definition) Kind() Kind { return d.kind }

// Field returns the document field the aggregation computes over.
func (d Definition) Field() string { return d.field }

// Size returns the bucket count for terms aggregations (0 otherwise).
func (d Definition) Size() int { return d.size }

// IsZero reports whether the definition is the zero value.
func (d Definition) IsZero() bool { return d.name == "" }
