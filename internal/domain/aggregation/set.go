package aggregation

import (
	"fmt"
	"iter"
	"sort"
	"sync"

	"github.com/kailas-cloud/docdex/pkg/synclist"
)

// Set is an ordered, name-keyed collection of aggregation definitions.
// Registration order is preserved, and every write path applies ValidateName
// before the name reaches the mapping; a rejected entry is never inserted.
//
// The name index is maintained by a synclist insert hook, which runs under
// the list guard after bounds checking and before the mutation: the
// reserved-name and duplicate checks, the name-index update and the ordered
// insert are a single atomic step, and the guard rule cannot be bypassed by
// any registration path.
type Set struct {
	mu    sync.Mutex
	defs  *synclist.List[Definition]
	names map[string]bool // guarded by mu via the shared synclist guard
}

// NewSet creates an empty Set.
func NewSet() *Set {
	s := &Set{names: make(map[string]bool)}
	s.defs = synclist.NewWithGuard[Definition](&s.mu).WithHooks(synclist.Hooks[Definition]{
		OnInsert: func(_ int, d Definition) error {
			if err := ValidateName(d.Name()); err != nil {
				return err
			}
			if s.names[d.Name()] {
				return fmt.Errorf("duplicate aggregation name %q", d.Name())
			}
			s.names[d.Name()] = true
			return nil
		},
		OnRemoveAt: func(_ int, d Definition) {
			delete(s.names, d.Name())
		},
		OnClear: func(int) {
			clear(s.names)
		},
	})
	return s
}

// FromDefinitions creates a Set from explicit definitions, preserving order.
// The first reserved or duplicate name fails the whole construction.
func FromDefinitions(defs ...Definition) (*Set, error) {
	s := NewSet()
	for _, d := range defs {
		if err := s.Add(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// FromMap converts a plain name-keyed mapping into a Set. Names are
// registered in sorted order for determinism, and each one passes through
// the same guarded insert as any other registration path. The map key wins
// over the definition's own name.
func FromMap(m map[string]Definition) (*Set, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	s := NewSet()
	for _, name := range names {
		d := m[name]
		if d.name != name {
			renamed, err := newDefinition(name, d.kind, d.field, d.size)
			if err != nil {
				return nil, fmt.Errorf("aggregation %q: %w", name, err)
			}
			d = renamed
		}
		if err := s.Add(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add registers a definition under its name. Fails with a ReservedNameError
// for reserved names and with a plain error for duplicates; the Set is
// unchanged on failure.
func (s *Set) Add(def Definition) error {
	if def.IsZero() {
		return fmt.Errorf("aggregation definition is required")
	}
	return s.defs.Add(def)
}

// Get returns the definition registered under name.
func (s *Set) Get(name string) (Definition, bool) {
	for _, d := range s.defs.Values() {
		if d.Name() == name {
			return d, true
		}
	}
	return Definition{}, false
}

// Len returns the number of registered aggregations.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return s.defs.Len()
}

// IsEmpty reports whether the set has no registrations.
func (s *Set) IsEmpty() bool { return s.Len() == 0 }

// Names returns the registered names in registration order.
func (s *Set) Names() []string {
	defs := s.defs.Values()
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Name()
	}
	return out
}

// Definitions returns a copy of the registered definitions in order.
func (s *Set) Definitions() []Definition {
	if s == nil {
		return nil
	}
	return s.defs.Values()
}

// All iterates the definitions in registration order.
func (s *Set) All() iter.Seq[Definition] {
	return s.defs.All()
}
