package docdex

import (
	"fmt"

	"github.com/kailas-cloud/docdex/internal/domain/aggregation"
)

// Aggregation describes a single named aggregation to run alongside a
// search. Constructing a descriptor never checks the name against the
// reserved list; that check runs when the descriptor is registered into an
// Aggregations set, where the name becomes a response key.
type Aggregation struct {
	def aggregation.Definition
	err error
}

// TermsAgg describes a terms (bucket) aggregation over a tag field.
// A non-positive size falls back to the engine default.
func TermsAgg(name, field string, size int) Aggregation {
	def, err := aggregation.NewTerms(name, field, size)
	return Aggregation{def: def, err: err}
}

// MaxAgg describes a max metric aggregation over a numeric field.
func MaxAgg(name, field string) Aggregation {
	def, err := aggregation.NewMax(name, field)
	return Aggregation{def: def, err: err}
}

// MinAgg describes a min metric aggregation over a numeric field.
func MinAgg(name, field string) Aggregation {
	def, err := aggregation.NewMin(name, field)
	return Aggregation{def: def, err: err}
}

// AvgAgg describes an avg metric aggregation over a numeric field.
func AvgAgg(name, field string) Aggregation {
	def, err := aggregation.NewAvg(name, field)
	return Aggregation{def: def, err: err}
}

// SumAgg describes a sum metric aggregation over a numeric field.
func SumAgg(name, field string) Aggregation {
	def, err := aggregation.NewSum(name, field)
	return Aggregation{def: def, err: err}
}

// ValueCountAgg describes a value_count metric aggregation over a field.
func ValueCountAgg(name, field string) Aggregation {
	def, err := aggregation.NewValueCount(name, field)
	return Aggregation{def: def, err: err}
}

// Name returns the aggregation name the result will be keyed by.
func (a Aggregation) Name() string { return a.def.Name() }

// Aggregations is an ordered set of aggregations attached to a search
// request. Every registration path validates the name: a reserved name
// fails with a *ReservedNameError and leaves the set unchanged.
//
// The fluent methods record the first failure instead of panicking; it is
// returned by Err and again when the set is attached to a request, so a
// chain with a bad entry never reaches the engine.
type Aggregations struct {
	set *aggregation.Set
	err error
}

// NewAggregations creates an empty aggregation set for fluent use:
//
//	aggs := docdex.NewAggregations().
//		Terms("by_language", "language", 10).
//		Max("max_priority", "priority")
func NewAggregations() *Aggregations {
	return &Aggregations{set: aggregation.NewSet()}
}

// AggregationsOf builds a set from explicit descriptors, preserving order.
// The first invalid or reserved name fails the whole construction.
func AggregationsOf(aggs ...Aggregation) (*Aggregations, error) {
	out := NewAggregations()
	for _, a := range aggs {
		if err := out.Add(a); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AggregationMap is a plain name-keyed mapping of aggregation descriptors.
// The map key wins over the descriptor's own name.
type AggregationMap map[string]Aggregation

// Aggregations converts the mapping into a validated set. Names register in
// sorted order for determinism; a reserved key fails the conversion.
func (m AggregationMap) Aggregations() (*Aggregations, error) {
	defs := make(map[string]aggregation.Definition, len(m))
	for name, a := range m {
		if a.err != nil {
			return nil, fmt.Errorf("aggregation %q: %w", name, a.err)
		}
		defs[name] = a.def
	}
	set, err := aggregation.FromMap(defs)
	if err != nil {
		return nil, err
	}
	return &Aggregations{set: set}, nil
}

// Add registers a single descriptor, reporting the failure immediately.
func (a *Aggregations) Add(agg Aggregation) error {
	if agg.err != nil {
		return agg.err
	}
	return a.set.Add(agg.def)
}

// Terms appends a terms aggregation. See TermsAgg.
func (a *Aggregations) Terms(name, field string, size int) *Aggregations {
	return a.record(TermsAgg(name, field, size))
}

// Max appends a max aggregation.
func (a *Aggregations) Max(name, field string) *Aggregations {
	return a.record(MaxAgg(name, field))
}

// Min appends a min aggregation.
func (a *Aggregations) Min(name, field string) *Aggregations {
	return a.record(MinAgg(name, field))
}

// Avg appends an avg aggregation.
func (a *Aggregations) Avg(name, field string) *Aggregations {
	return a.record(AvgAgg(name, field))
}

// Sum appends a sum aggregation.
func (a *Aggregations) Sum(name, field string) *Aggregations {
	return a.record(SumAgg(name, field))
}

// ValueCount appends a value_count aggregation.
func (a *Aggregations) ValueCount(name, field string) *Aggregations {
	return a.record(ValueCountAgg(name, field))
}

func (a *Aggregations) record(agg Aggregation) *Aggregations {
	if a.err != nil {
		return a
	}
	a.err = a.Add(agg)
	return a
}

// Err returns the first failure recorded by the fluent methods.
func (a *Aggregations) Err() error {
	if a == nil {
		return nil
	}
	return a.err
}

// Names returns the registered names in registration order.
func (a *Aggregations) Names() []string {
	if a == nil {
		return nil
	}
	return a.set.Names()
}

// Len returns the number of registered aggregations.
func (a *Aggregations) Len() int {
	if a == nil {
		return 0
	}
	return a.set.Len()
}

// toSet surfaces a recorded fluent error and hands the internal set to
// request construction.
func (a *Aggregations) toSet() (*aggregation.Set, error) {
	if a == nil {
		return nil, nil
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.set, nil
}
