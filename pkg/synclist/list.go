// Package synclist provides a mutex-guarded, index-addressable sequence with
// a typed facade (List) and a type-erased facade (AnyList) over the same
// backing state.
//
// Every operation holds the guard for its full duration, and index bounds are
// validated against the current length immediately before the mutation they
// protect. The guard may be supplied externally so several collaborating
// state objects can be composed behind one lock.
package synclist

import (
	"iter"
	"reflect"
	"sync"
)

// Hooks intercepts the four single-element mutation primitives of a List.
// Each hook runs under the list guard, after bounds validation and before the
// mutation is applied, so an interceptor can add side effects or extra
// validation without ever bypassing the locking and bounds-checking contract.
// OnInsert and OnSet may veto the mutation by returning an error; the list is
// left unchanged and the error is surfaced to the caller. Nil fields are
// skipped.
type Hooks[T any] struct {
	OnInsert   func(index int, item T) error
	OnSet      func(index int, old, item T) error
	OnRemoveAt func(index int, item T)
	OnClear    func(removed int)
}

// state is the backing storage shared by the typed and type-erased facades.
type state struct {
	mu    *sync.Mutex
	items []any

	elem    reflect.Type // element type for boundary checks on the erased facade
	nilable bool         // whether a nil value is a legal element
}

// List is a thread-safe, dynamically-sized ordered sequence of T.
// The zero value is not usable; use New, NewWithGuard or NewFrom.
type List[T any] struct {
	s     *state
	hooks Hooks[T]
}

// New creates an empty List with a private guard.
func New[T any]() *List[T] {
	return NewWithGuard[T](&sync.Mutex{})
}

// NewWithGuard creates an empty List serialized by the given guard.
// Sharing one guard across several lists (or other state) makes their
// operations mutually exclusive, which allows composing multiple state
// objects behind a single lock.
func NewWithGuard[T any](guard *sync.Mutex) *List[T] {
	elem := reflect.TypeOf((*T)(nil)).Elem()
	return &List[T]{s: &state{
		mu:      guard,
		elem:    elem,
		nilable: isNilable(elem),
	}}
}

// NewFrom creates a List pre-seeded with a copy of items.
func NewFrom[T any](items ...T) *List[T] {
	l := New[T]()
	l.s.items = make([]any, len(items))
	for i, v := range items {
		l.s.items[i] = v
	}
	return l
}

// WithHooks installs a mutation observer and returns the list for chaining.
// Must be called before the list is shared across goroutines.
func (l *List[T]) WithHooks(h Hooks[T]) *List[T] {
	l.hooks = h
	return l
}

// Untyped returns the type-erased facade over the same backing state.
// Both facades observe and apply mutations under the same guard.
func (l *List[T]) Untyped() *AnyList {
	return &AnyList{s: l.s, apply: l.applier()}
}

// Len returns the current element count.
func (l *List[T]) Len() int {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return len(l.s.items)
}

// Get returns the element at index, or an IndexError when the index is
// outside [0, Len).
func (l *List[T]) Get(index int) (T, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if index < 0 || index >= len(l.s.items) {
		var zero T
		return zero, &IndexError{Index: index, Len: len(l.s.items)}
	}
	return l.cast(l.s.items[index]), nil
}

// Set replaces the element at index. Index must be inside [0, Len).
func (l *List[T]) Set(index int, item T) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.setLocked(index, item)
}

// Add appends an element. Equivalent to Insert(Len, item); it only fails
// when an OnInsert hook vetoes the append.
func (l *List[T]) Add(item T) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.insertLocked(len(l.s.items), item)
}

// Insert places an element at index, shifting subsequent elements right.
// Index may equal Len (append); larger or negative indices fail.
func (l *List[T]) Insert(index int, item T) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.insertLocked(index, item)
}

// RemoveAt removes the element at index. Index must be inside [0, Len).
func (l *List[T]) RemoveAt(index int) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.removeAtLocked(index)
}

// Remove removes the first element equal to item (by value equality) and
// reports whether an element was removed.
func (l *List[T]) Remove(item T) bool {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	i := indexOfLocked(l.s, item)
	if i < 0 {
		return false
	}
	return l.removeAtLocked(i) == nil
}

// IndexOf returns the index of the first element equal to item, or -1.
func (l *List[T]) IndexOf(item T) int {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return indexOfLocked(l.s, item)
}

// Contains reports whether the list holds an element equal to item.
func (l *List[T]) Contains(item T) bool {
	return l.IndexOf(item) >= 0
}

// Clear removes all elements atomically.
func (l *List[T]) Clear() {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.clearLocked()
}

// CopyTo copies the current contents into dst starting at start.
// Fails when start is negative or dst lacks capacity for all elements.
func (l *List[T]) CopyTo(dst []T, start int) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if start < 0 || start+len(l.s.items) > len(dst) {
		return &IndexError{Index: start, Len: len(dst)}
	}
	for i, v := range l.s.items {
		dst[start+i] = l.cast(v)
	}
	return nil
}

// Values returns a copy of the current contents.
func (l *List[T]) Values() []T {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	out := make([]T, len(l.s.items))
	for i, v := range l.s.items {
		out[i] = l.cast(v)
	}
	return out
}

// All returns a restartable sequence over the elements. The guard is held
// only while the sequence is obtained, not while it is consumed; mutating
// the list structurally during consumption yields undefined (but memory-safe)
// results.
func (l *List[T]) All() iter.Seq[T] {
	l.s.mu.Lock()
	items := l.s.items
	l.s.mu.Unlock()
	return func(yield func(T) bool) {
		for _, v := range items {
			if !yield(l.cast(v)) {
				return
			}
		}
	}
}

// --- guarded primitives ---
//
// The four single-element mutation primitives below run with the guard held
// and validate bounds before touching storage; hooks are invoked after the
// bounds check and before the mutation, so a veto leaves the list unchanged.
// The type-erased facade reuses the primitives through applier, so the
// lock+bounds invariant holds on both facades.

func (l *List[T]) setLocked(index int, item T) error {
	if index < 0 || index >= len(l.s.items) {
		return &IndexError{Index: index, Len: len(l.s.items)}
	}
	if l.hooks.OnSet != nil {
		if err := l.hooks.OnSet(index, l.cast(l.s.items[index]), item); err != nil {
			return err
		}
	}
	l.s.items[index] = item
	return nil
}

func (l *List[T]) insertLocked(index int, item T) error {
	if index < 0 || index > len(l.s.items) {
		return &IndexError{Index: index, Len: len(l.s.items)}
	}
	if l.hooks.OnInsert != nil {
		if err := l.hooks.OnInsert(index, item); err != nil {
			return err
		}
	}
	l.s.items = append(l.s.items, nil)
	copy(l.s.items[index+1:], l.s.items[index:])
	l.s.items[index] = item
	return nil
}

func (l *List[T]) removeAtLocked(index int) error {
	if index < 0 || index >= len(l.s.items) {
		return &IndexError{Index: index, Len: len(l.s.items)}
	}
	if l.hooks.OnRemoveAt != nil {
		l.hooks.OnRemoveAt(index, l.cast(l.s.items[index]))
	}
	l.s.items = append(l.s.items[:index], l.s.items[index+1:]...)
	return nil
}

func (l *List[T]) clearLocked() {
	if l.hooks.OnClear != nil {
		l.hooks.OnClear(len(l.s.items))
	}
	l.s.items = nil
}

// applier exposes the guarded primitives to the type-erased facade without
// exposing them publicly.
func (l *List[T]) applier() mutator {
	return mutator{
		set:      func(i int, v any) error { return l.setLocked(i, l.unbox(v)) },
		insert:   func(i int, v any) error { return l.insertLocked(i, l.unbox(v)) },
		removeAt: func(i int) error { return l.removeAtLocked(i) },
		clear:    func() { l.clearLocked() },
	}
}

// unbox converts an already type-checked boundary value to T. Assignable but
// non-identical dynamic types (e.g. an unnamed slice into a named slice
// element type) go through reflection; everything else is a direct assertion.
func (l *List[T]) unbox(v any) T {
	if v == nil {
		var zero T
		return zero
	}
	if t, ok := v.(T); ok {
		return t
	}
	var t T
	reflect.ValueOf(&t).Elem().Set(reflect.ValueOf(v))
	return t
}

// cast converts boxed storage back to T, mapping stored nils to the zero
// value (a nil cannot be type-asserted to a concrete T).
func (l *List[T]) cast(v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

func indexOfLocked(s *state, item any) int {
	for i, v := range s.items {
		if reflect.DeepEqual(v, item) {
			return i
		}
	}
	return -1
}

func isNilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface,
		reflect.Map, reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}
