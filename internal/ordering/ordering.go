// Package ordering turns a client-supplied ordering of visible todos into the
// position updates that realize it.
//
// A reorder that names every todo assigns dense positions 0..N-1. A reorder
// of a filtered subset only reuses the position slots that subset already
// occupies, so todos outside the subset keep their place relative to each
// other and to the subset. When the subset's slots contain ties the whole
// list is renumbered densely with the subset permuted inside its slots.
//
// Plan is pure; the store applies its output inside a single transaction.
package ordering

import (
	"fmt"

	"github.com/roach88/todosync/internal/query"
	"github.com/roach88/todosync/internal/todo"
)

// Strategy names how a plan assigned positions. Exposed for logging.
type Strategy string

const (
	StrategyNone    Strategy = "none"
	StrategyDense   Strategy = "dense"
	StrategySlots   Strategy = "slots"
	StrategyRebuild Strategy = "rebuild"
)

// Result is the outcome of planning a reorder.
type Result struct {
	Strategy Strategy
	// Updates holds only the todos whose position actually changes.
	Updates []todo.PositionUpdate
}

// Plan computes the position updates that put ids in the given order.
//
// ids must be distinct and must all exist in current. Unknown ids fail the
// whole plan with NOT_FOUND; nothing is partially applied.
func Plan(current []todo.Todo, ids []string) (Result, error) {
	if len(ids) == 0 {
		return Result{Strategy: StrategyNone}, nil
	}

	byID := make(map[string]todo.Todo, len(current))
	for _, t := range current {
		byID[t.ID] = t
	}

	inSubset := make(map[string]struct{}, len(ids))
	for i, id := range ids {
		if id == "" {
			return Result{}, todo.NewValidationError("reorder", fmt.Sprintf("ids[%d]: id is required", i))
		}
		if _, dup := inSubset[id]; dup {
			return Result{}, todo.NewValidationError("reorder", fmt.Sprintf("ids[%d]: duplicate id %s", i, id))
		}
		if _, ok := byID[id]; !ok {
			return Result{}, todo.NewNotFoundError("reorder", id)
		}
		inSubset[id] = struct{}{}
	}

	ordered := query.Project(current, todo.FilterAll)

	if len(ids) == len(ordered) {
		targets := make([]todo.PositionUpdate, len(ids))
		for i, id := range ids {
			targets[i] = todo.PositionUpdate{ID: id, Position: float64(i)}
		}
		return Result{Strategy: StrategyDense, Updates: changed(byID, targets)}, nil
	}

	slots := make([]float64, 0, len(ids))
	for _, t := range ordered {
		if _, ok := inSubset[t.ID]; ok {
			slots = append(slots, t.Position)
		}
	}

	if strictlyIncreasing(slots) {
		targets := make([]todo.PositionUpdate, len(ids))
		for i, id := range ids {
			targets[i] = todo.PositionUpdate{ID: id, Position: slots[i]}
		}
		return Result{Strategy: StrategySlots, Updates: changed(byID, targets)}, nil
	}

	// Ties inside the subset: splice the new subset order into the global
	// order and renumber everything.
	targets := make([]todo.PositionUpdate, 0, len(ordered))
	next := 0
	for i, t := range ordered {
		id := t.ID
		if _, ok := inSubset[id]; ok {
			id = ids[next]
			next++
		}
		targets = append(targets, todo.PositionUpdate{ID: id, Position: float64(i)})
	}
	return Result{Strategy: StrategyRebuild, Updates: changed(byID, targets)}, nil
}

func changed(byID map[string]todo.Todo, targets []todo.PositionUpdate) []todo.PositionUpdate {
	var out []todo.PositionUpdate
	for _, u := range targets {
		if byID[u.ID].Position != u.Position {
			out = append(out, u)
		}
	}
	return out
}

func strictlyIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return false
		}
	}
	return true
}
