package synclist

import (
	"iter"
	"reflect"
)

// mutator carries the typed facade's guarded mutation primitives into the
// type-erased facade, so both views share one locking and bounds-checking
// implementation.
type mutator struct {
	set      func(index int, v any) error
	insert   func(index int, v any) error
	removeAt func(index int) error
	clear    func()
}

// AnyList is the type-erased view of a List. Values presented through it are
// validated at the boundary: a value must be assignable to the list's element
// type, and nil is only accepted when the element type can hold nil. Failed
// validation leaves the list unchanged.
type AnyList struct {
	s     *state
	apply mutator
}

// Len returns the current element count.
func (l *AnyList) Len() int {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return len(l.s.items)
}

// Get returns the element at index, or an IndexError when the index is
// outside [0, Len).
func (l *AnyList) Get(index int) (any, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if index < 0 || index >= len(l.s.items) {
		return nil, &IndexError{Index: index, Len: len(l.s.items)}
	}
	return l.s.items[index], nil
}

// Set replaces the element at index after boundary type validation.
func (l *AnyList) Set(index int, v any) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.checkValue(v); err != nil {
		return err
	}
	return l.apply.set(index, v)
}

// Add appends an element after boundary type validation.
func (l *AnyList) Add(v any) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.checkValue(v); err != nil {
		return err
	}
	return l.apply.insert(len(l.s.items), v)
}

// Insert places an element at index after boundary type validation.
// Index may equal Len (append).
func (l *AnyList) Insert(index int, v any) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if err := l.checkValue(v); err != nil {
		return err
	}
	return l.apply.insert(index, v)
}

// RemoveAt removes the element at index. Index must be inside [0, Len).
func (l *AnyList) RemoveAt(index int) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.apply.removeAt(index)
}

// Remove removes the first element equal to v (by value equality) and
// reports whether an element was removed.
func (l *AnyList) Remove(v any) bool {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	i := indexOfLocked(l.s, v)
	if i < 0 {
		return false
	}
	_ = l.apply.removeAt(i)
	return true
}

// IndexOf returns the index of the first element equal to v, or -1.
func (l *AnyList) IndexOf(v any) int {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return indexOfLocked(l.s, v)
}

// Contains reports whether the list holds an element equal to v.
func (l *AnyList) Contains(v any) bool {
	return l.IndexOf(v) >= 0
}

// Clear removes all elements atomically.
func (l *AnyList) Clear() {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	l.apply.clear()
}

// All returns a restartable sequence over the elements. Like List.All, the
// guard is held only while the sequence is obtained.
func (l *AnyList) All() iter.Seq[any] {
	l.s.mu.Lock()
	items := l.s.items
	l.s.mu.Unlock()
	return func(yield func(any) bool) {
		for _, v := range items {
			if !yield(v) {
				return
			}
		}
	}
}

// checkValue validates v against the element type before any mutation.
func (l *AnyList) checkValue(v any) error {
	if v == nil {
		if l.s.nilable {
			return nil
		}
		return &TypeError{Value: "nil", Elem: l.s.elem.String()}
	}
	vt := reflect.TypeOf(v)
	if !vt.AssignableTo(l.s.elem) {
		return &TypeError{Value: vt.String(), Elem: l.s.elem.String()}
	}
	return nil
}
