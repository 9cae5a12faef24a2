// Package history implements linear undo/redo over snapshots of a
// collection.
package history

import "slices"

// History keeps snapshots of a collection. Push is called with the state as
// it was before a mutation; any push invalidates redo.
type History[T any] struct {
	undo [][]T
	redo [][]T
	copy func([]T) []T
}

// New returns an empty history. clone deep-copies a snapshot; nil means a
// shallow slice copy.
func New[T any](clone func([]T) []T) *History[T] {
	if clone == nil {
		clone = slices.Clone[[]T]
	}
	return &History[T]{copy: clone}
}

// Push records prior as the state to return to on the next Undo.
func (h *History[T]) Push(prior []T) {
	h.undo = append(h.undo, h.copy(prior))
	h.redo = nil
}

// Undo returns the most recent snapshot and keeps current for Redo. ok is
// false when there is nothing to undo.
func (h *History[T]) Undo(current []T) (prev []T, ok bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	last := len(h.undo) - 1
	prev = h.undo[last]
	h.undo = h.undo[:last]
	h.redo = append([][]T{h.copy(current)}, h.redo...)
	return h.copy(prev), true
}

// Redo re-applies the state most recently replaced by Undo.
func (h *History[T]) Redo(current []T) (next []T, ok bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	next = h.redo[0]
	h.redo = h.redo[1:]
	h.undo = append(h.undo, h.copy(current))
	return h.copy(next), true
}

func (h *History[T]) CanUndo() bool { return len(h.undo) > 0 }
func (h *History[T]) CanRedo() bool { return len(h.redo) > 0 }

// Reset drops both stacks, e.g. when another document is opened.
func (h *History[T]) Reset() {
	h.undo = nil
	h.redo = nil
}
