package harness

import "github.com/roach88/todosync/internal/todo"

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq      int    `json:"seq"`
	Op       string `json:"op"`
	Target   string `json:"target,omitempty"`
	Outcome  string `json:"outcome"` // "ok" or an error code
	Revision int64  `json:"revision"`
}

// OutcomeOK is the outcome of a step that succeeded.
const OutcomeOK = "ok"

// TodoState is the golden form of a todo. CreatedAt is left out because
// position and ID already fix the order.
type TodoState struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	Position  float64 `json:"position"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the full todo list in canonical order after the flow.
	Final []TodoState `json:"final"`

	// Revision is the engine revision after the flow.
	Revision int64 `json:"revision"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Final:  []TodoState{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(op, target, outcome string, revision int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:      len(r.Trace) + 1,
		Op:       op,
		Target:   target,
		Outcome:  outcome,
		Revision: revision,
	})
}

func stateOf(todos []todo.Todo) []TodoState {
	out := make([]TodoState, len(todos))
	for i, t := range todos {
		out[i] = TodoState{
			ID:        t.ID,
			Title:     t.Title,
			Completed: t.IsCompleted,
			Position:  t.Position,
		}
	}
	return out
}
