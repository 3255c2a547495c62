package harness

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/todosync/internal/query"
	"github.com/roach88/todosync/internal/todo"
)

// evaluate checks every assertion and returns one message per failure.
func (h *Harness) evaluate(ctx context.Context, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := h.check(ctx, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d] %s: %v", i, a.Type, err))
		}
	}
	return errs
}

func (h *Harness) check(ctx context.Context, a Assertion) error {
	switch a.Type {
	case AssertView:
		todos, err := h.list(ctx, a.Filter)
		if err != nil {
			return err
		}
		got := titles(todos)
		want := a.Titles
		if want == nil {
			want = []string{}
		}
		if !slices.Equal(got, want) {
			return fmt.Errorf("filter %s: expected %v, got %v", a.Filter, want, got)
		}

	case AssertCount:
		todos, err := h.list(ctx, a.Filter)
		if err != nil {
			return err
		}
		if len(todos) != *a.Count {
			return fmt.Errorf("filter %s: expected %d todos, got %d", a.Filter, *a.Count, len(todos))
		}

	case AssertRevision:
		if got := h.engine.Revision(); got != *a.Revision {
			return fmt.Errorf("expected revision %d, got %d", *a.Revision, got)
		}

	case AssertLive:
		f, _ := todo.ParseFilter(a.Filter)
		sub, ok := h.subs[f]
		if !ok {
			return fmt.Errorf("no subscription for filter %s", f)
		}
		view, ok := sub.Current()
		if !ok {
			return fmt.Errorf("filter %s: subscription still loading", f)
		}
		fresh, err := h.engine.GetTodos(ctx, f)
		if err != nil {
			return err
		}
		if !query.Equal(view.Todos, fresh) {
			return fmt.Errorf("filter %s: live view %v differs from fresh read %v", f, titles(view.Todos), titles(fresh))
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func (h *Harness) list(ctx context.Context, filter string) ([]todo.Todo, error) {
	f, err := todo.ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	return h.engine.GetTodos(ctx, f)
}

func titles(todos []todo.Todo) []string {
	out := make([]string, len(todos))
	for i, t := range todos {
		out[i] = t.Title
	}
	return out
}
