package store

import (
	"fmt"
	"strings"

	"github.com/roach88/todosync/internal/todo"
)

// predicate is a WHERE condition on the todos table.
//
// This is a sealed interface so compilePredicate can switch exhaustively.
type predicate interface {
	predicateNode()
}

// equals matches column = value. The value is always a bound parameter.
type equals struct {
	Column string
	Value  any
}

func (equals) predicateNode() {}

// orderBy is the canonical todo order. Every select ends with it so results
// are deterministic.
const orderBy = "position ASC, created_at ASC, id ASC"

// filterPredicate returns the predicate selecting the todos visible under f.
// FilterAll has no predicate.
func filterPredicate(f todo.Filter) (predicate, error) {
	switch f {
	case todo.FilterAll:
		return nil, nil
	case todo.FilterActive:
		return equals{Column: "is_completed", Value: 0}, nil
	case todo.FilterCompleted:
		return equals{Column: "is_completed", Value: 1}, nil
	default:
		return nil, todo.NewValidationError("list", fmt.Sprintf("unknown filter %q", f))
	}
}

// compileSelect builds the parameterized select of all todo columns
// matching p (nil for every row).
func compileSelect(p predicate) (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(todoColumns)
	b.WriteString(" FROM todos")

	var params []any
	if p != nil {
		where, whereParams, err := compilePredicate(p)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = whereParams
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(orderBy)
	return b.String(), params, nil
}

func compilePredicate(p predicate) (string, []any, error) {
	switch pred := p.(type) {
	case equals:
		if !isColumn(pred.Column) {
			return "", nil, fmt.Errorf("unknown column %q", pred.Column)
		}
		return pred.Column + " = ?", []any{pred.Value}, nil

	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// isColumn guards identifiers, which cannot be bound as parameters.
func isColumn(name string) bool {
	for _, c := range strings.Split(todoColumns, ", ") {
		if c == name {
			return true
		}
	}
	return false
}
