// Package query derives the visible, ordered list of todos for a filter.
//
// Projection is pure: it never mutates its input and never rewrites
// positions, so any view can be re-derived from a store snapshot plus a
// filter at any time.
package query

import (
	"slices"

	"github.com/roach88/todosync/internal/todo"
)

// Project returns the todos matching f, sorted ascending by position.
// The result is a fresh slice (never nil).
func Project(all []todo.Todo, f todo.Filter) []todo.Todo {
	out := make([]todo.Todo, 0, len(all))
	for _, t := range all {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	Sort(out)
	return out
}

// Sort orders todos in place by position, then CreatedAt, then ID.
func Sort(todos []todo.Todo) {
	slices.SortFunc(todos, compare)
}

// IsSorted reports whether todos are in canonical order.
func IsSorted(todos []todo.Todo) bool {
	return slices.IsSortedFunc(todos, compare)
}

// IDs returns the IDs of todos in order.
func IDs(todos []todo.Todo) []string {
	ids := make([]string, len(todos))
	for i, t := range todos {
		ids[i] = t.ID
	}
	return ids
}

// Equal reports whether two projections are identical field by field.
func Equal(a, b []todo.Todo) bool {
	return slices.EqualFunc(a, b, func(x, y todo.Todo) bool {
		return x.ID == y.ID &&
			x.Title == y.Title &&
			x.Description == y.Description &&
			x.IsCompleted == y.IsCompleted &&
			x.CreatedAt.Equal(y.CreatedAt) &&
			x.Position == y.Position
	})
}

func compare(a, b todo.Todo) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	}
	return 0
}
