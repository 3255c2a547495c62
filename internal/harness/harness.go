package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/todosync/internal/engine"
	"github.com/roach88/todosync/internal/store"
	"github.com/roach88/todosync/internal/testutil"
	"github.com/roach88/todosync/internal/todo"
)

// Harness executes one scenario against a running engine.
type Harness struct {
	engine *engine.Engine
	refs   map[string]string
	subs   map[todo.Filter]*engine.Subscription
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Open store and start the engine loop
//  2. Subscribe for every live assertion and wait for the first view
//  3. Execute setup steps (must succeed)
//  4. Execute flow steps, checking expect_error
//  5. Capture final state and evaluate assertions
//
// An error is returned only when the scenario could not be executed;
// failed expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:",
		store.WithClock(testutil.NewStepClock()),
		store.WithIDGenerator(testutil.NewSequentialIDs()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	eng := engine.New(st)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = eng.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	h := &Harness{
		engine: eng,
		refs:   make(map[string]string),
		subs:   make(map[todo.Filter]*engine.Subscription),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	defer h.closeSubscriptions()

	for _, a := range scenario.Assertions {
		if a.Type != AssertLive {
			continue
		}
		f, _ := todo.ParseFilter(a.Filter)
		if _, ok := h.subs[f]; !ok {
			h.subs[f] = eng.Subscribe(f)
		}
	}
	for f, sub := range h.subs {
		if err := awaitPrimed(sub); err != nil {
			return nil, fmt.Errorf("live %s: %w", f, err)
		}
	}

	result := NewResult()

	for i, step := range scenario.Setup {
		outcome, err := h.execute(ctx, step, result)
		if err != nil {
			return nil, fmt.Errorf("setup step %d (%s): %w", i, step.Op, err)
		}
		h.logger.Info("setup step completed", "step", i, "op", step.Op, "outcome", outcome)
	}

	for i, step := range scenario.Flow {
		outcome, err := h.execute(ctx, step, result)
		want := step.ExpectError
		if want == "" {
			want = OutcomeOK
		}
		if outcome != want {
			msg := fmt.Sprintf("flow[%d] %s: expected %s, got %s", i, step.Op, want, outcome)
			if err != nil {
				msg += ": " + err.Error()
			}
			result.AddError(msg)
		}
		h.logger.Info("flow step completed", "step", i, "op", step.Op, "outcome", outcome)
	}

	all, err := eng.GetTodos(ctx, todo.FilterAll)
	if err != nil {
		return nil, fmt.Errorf("failed to read final state: %w", err)
	}
	result.Final = stateOf(all)
	result.Revision = eng.Revision()

	for _, msg := range h.evaluate(ctx, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// primeTimeout bounds the wait for a new subscription's first view.
const primeTimeout = 5 * time.Second

// awaitPrimed blocks until the loop has delivered sub's first view, so live
// assertions never observe the loading state.
func awaitPrimed(sub *engine.Subscription) error {
	select {
	case <-sub.Updates():
		return nil
	case <-time.After(primeTimeout):
		return fmt.Errorf("subscription not primed within %s", primeTimeout)
	}
}

func (h *Harness) closeSubscriptions() {
	for _, s := range h.subs {
		s.Close()
	}
}

// ref resolves a label to the ID it was created as.
func (h *Harness) ref(label string) string {
	if id, ok := h.refs[label]; ok {
		return id
	}
	return label
}

// execute runs one step and records it in the trace.
// The returned outcome is "ok" or the error code; err is the raw error.
func (h *Harness) execute(ctx context.Context, step Step, result *Result) (string, error) {
	target, err := h.apply(ctx, step)

	outcome := OutcomeOK
	if err != nil {
		outcome = string(todo.CodeOf(err))
		if outcome == "" {
			outcome = "ERROR"
		}
	}
	result.AddTrace(step.Op, target, outcome, h.engine.Revision())
	return outcome, err
}

func (h *Harness) apply(ctx context.Context, step Step) (target string, err error) {
	switch step.Op {
	case OpCreate:
		desc := todo.None[string]()
		if step.Description != nil {
			desc = todo.Some(*step.Description)
		}
		id, err := h.engine.CreateTodo(ctx, step.Title, desc)
		if err == nil && step.As != "" {
			h.refs[step.As] = id
		}
		return step.As, err

	case OpToggle:
		completed := true
		if step.Completed != nil {
			completed = *step.Completed
		}
		return step.Ref, h.engine.ToggleTodo(ctx, h.ref(step.Ref), completed)

	case OpDelete:
		return step.Ref, h.engine.DeleteTodo(ctx, h.ref(step.Ref))

	case OpReorder:
		ids := make([]string, len(step.Refs))
		for i, r := range step.Refs {
			ids[i] = h.ref(r)
		}
		_, err := h.engine.Reorder(ctx, ids)
		return strings.Join(step.Refs, ","), err

	case OpPositions:
		updates := make([]todo.PositionUpdate, len(step.Positions))
		labels := make([]string, len(step.Positions))
		for i, p := range step.Positions {
			updates[i] = todo.PositionUpdate{ID: h.ref(p.Ref), Position: p.Position}
			labels[i] = p.Ref
		}
		return strings.Join(labels, ","), h.engine.UpdateTodoPositions(ctx, updates)

	case OpClearCompleted:
		_, err := h.engine.ClearCompletedTodos(ctx)
		return "", err
	}

	return "", fmt.Errorf("unknown op %q", step.Op)
}
