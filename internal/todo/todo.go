package todo

import (
	"fmt"
	"math"
	"time"
)

// Todo is the single record type of the store.
type Todo struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description Option[string] `json:"description"`
	IsCompleted bool           `json:"isCompleted"`
	CreatedAt   time.Time      `json:"createdAt"`
	Position    float64        `json:"position"`
}

// Before reports whether t sorts before o.
// Position decides; CreatedAt then ID break ties so the order is total.
func (t Todo) Before(o Todo) bool {
	if t.Position != o.Position {
		return t.Position < o.Position
	}
	if !t.CreatedAt.Equal(o.CreatedAt) {
		return t.CreatedAt.Before(o.CreatedAt)
	}
	return t.ID < o.ID
}

// DefaultPosition returns the initial position for a todo created at ts.
func DefaultPosition(ts time.Time) float64 {
	return float64(ts.UnixMilli())
}

// Filter selects which todos are visible.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Filters lists every valid filter in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

// ParseFilter converts s into a Filter. The empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch Filter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive:
		return FilterActive, nil
	case FilterCompleted:
		return FilterCompleted, nil
	}
	return "", NewValidationError("parse filter", fmt.Sprintf("unknown filter %q: must be one of %v", s, Filters))
}

// Match reports whether t is visible under f.
func (f Filter) Match(t Todo) bool {
	switch f {
	case FilterActive:
		return !t.IsCompleted
	case FilterCompleted:
		return t.IsCompleted
	default:
		return true
	}
}

// PositionUpdate assigns a new position to one todo.
type PositionUpdate struct {
	ID       string  `json:"id"`
	Position float64 `json:"position"`
}

// ValidatePositionUpdates rejects batches with empty or duplicate IDs and
// non-finite positions.
func ValidatePositionUpdates(updates []PositionUpdate) error {
	seen := make(map[string]struct{}, len(updates))
	for i, u := range updates {
		if u.ID == "" {
			return NewValidationError("update positions", fmt.Sprintf("updates[%d]: id is required", i))
		}
		if math.IsNaN(u.Position) || math.IsInf(u.Position, 0) {
			return NewValidationError("update positions", fmt.Sprintf("updates[%d]: position must be finite", i))
		}
		if _, dup := seen[u.ID]; dup {
			return NewValidationError("update positions", fmt.Sprintf("updates[%d]: duplicate id %s", i, u.ID))
		}
		seen[u.ID] = struct{}{}
	}
	return nil
}
