package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/todosync/internal/ordering"
	"github.com/roach88/todosync/internal/store"
	"github.com/roach88/todosync/internal/todo"
)

// ErrStopped is wrapped in a TRANSIENT error when a command is submitted to
// an engine that is not accepting work.
var ErrStopped = errors.New("engine stopped")

// Backend is the record store the engine drives. *store.Store implements it.
type Backend interface {
	Create(ctx context.Context, in store.NewTodo) (todo.Todo, error)
	Delete(ctx context.Context, id string) error
	SetCompleted(ctx context.Context, id string, completed bool) error
	ClearCompleted(ctx context.Context) ([]string, error)
	UpdatePositions(ctx context.Context, updates []todo.PositionUpdate) error
	Reorder(ctx context.Context, ids []string) (ordering.Result, error)
	Snapshot(ctx context.Context) ([]todo.Todo, error)
	List(ctx context.Context, f todo.Filter) ([]todo.Todo, error)
}

// DefaultSubscriberBuffer is the per-subscription channel size.
// With latest-wins delivery one slot is enough.
const DefaultSubscriberBuffer = 1

// Engine is the single-writer command loop.
//
// Thread-safety model:
//   - CreateTodo, ToggleTodo, ... : safe from any goroutine
//   - GetTodos, Subscribe: safe from any goroutine
//   - Run(): must be called from exactly one goroutine
type Engine struct {
	store Backend
	clock *Clock
	queue *eventQueue
	hub   *Hub
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*engineConfig)

type engineConfig struct {
	subscriberBuffer int
}

// WithSubscriberBuffer sets the channel size of every subscription.
// Values below 1 are ignored.
func WithSubscriberBuffer(n int) EngineOption {
	return func(c *engineConfig) {
		if n >= 1 {
			c.subscriberBuffer = n
		}
	}
}

// New creates an Engine over the given store.
func New(st Backend, opts ...EngineOption) *Engine {
	cfg := engineConfig{subscriberBuffer: DefaultSubscriberBuffer}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Engine{
		store: st,
		clock: NewClock(),
		queue: newEventQueue(),
		hub:   NewHub(cfg.subscriberBuffer),
	}
}

// Revision returns the revision of the last committed command.
func (e *Engine) Revision() int64 {
	return e.clock.Current()
}

// Hub returns the subscription registry.
func (e *Engine) Hub() *Hub {
	return e.hub
}

// Run starts the single-writer event loop.
// Blocks until context is cancelled or Stop() is called.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// A failed command is reported to its submitter and the loop continues;
// nothing is retried here.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting")

	for {
		event, ok := e.queue.TryDequeue()
		if ok {
			e.processEvent(ctx, event)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.queue.Close()
			e.drain()
			return ctx.Err()

		case <-e.queue.Wait():
			// The signal channel closes when the queue is closed; queued
			// commands are still applied before returning.
			if e.closedAndEmpty() {
				slog.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop gracefully shuts down the engine.
// Commands already queued are still applied before Run returns.
func (e *Engine) Stop() {
	e.queue.Close()
}

func (e *Engine) closedAndEmpty() bool {
	e.queue.mu.Lock()
	defer e.queue.mu.Unlock()
	return e.queue.closed && len(e.queue.events) == 0
}

// drain fails every command still queued after the loop stopped.
func (e *Engine) drain() {
	for {
		ev, ok := e.queue.TryDequeue()
		if !ok {
			return
		}
		if ev.reply != nil {
			ev.reply <- reply{err: todo.NewTransientError(string(ev.Command.Kind), ErrStopped)}
		}
	}
}

// processEvent routes an event to the appropriate handler.
// CRITICAL: Called only from Run() goroutine - single-writer guarantee.
func (e *Engine) processEvent(ctx context.Context, ev Event) {
	switch ev.Type {
	case EventTypeCommand:
		res, err := e.processCommand(ctx, ev.Command)
		ev.reply <- reply{result: res, err: err}

	case EventTypePrime:
		e.prime(ctx, ev.Subscription)

	default:
		slog.Error("unknown event type", "type", ev.Type)
	}
}

// processCommand applies one command, then republishes views.
func (e *Engine) processCommand(ctx context.Context, cmd *Command) (Result, error) {
	start := time.Now()
	res, err := e.apply(ctx, cmd)
	observeCommand(cmd.Kind, err, time.Since(start))

	if err != nil {
		logCommandError(cmd, err)
		return Result{}, err
	}

	res.Revision = e.clock.Next()
	revisionGauge.Set(float64(res.Revision))

	slog.Debug("command committed",
		"command", cmd.Kind,
		"id", cmd.ID,
		"revision", res.Revision,
	)

	e.publish(ctx, res.Revision)
	return res, nil
}

func (e *Engine) apply(ctx context.Context, cmd *Command) (Result, error) {
	switch cmd.Kind {
	case CommandCreate:
		t, err := e.store.Create(ctx, store.NewTodo{Title: cmd.Title, Description: cmd.Description})
		if err != nil {
			return Result{}, err
		}
		slog.Info("todo created", "id", t.ID, "position", t.Position)
		return Result{Todo: t}, nil

	case CommandToggle:
		if err := e.store.SetCompleted(ctx, cmd.ID, cmd.Completed); err != nil {
			return Result{}, err
		}
		slog.Info("todo toggled", "id", cmd.ID, "completed", cmd.Completed)
		return Result{}, nil

	case CommandDelete:
		if err := e.store.Delete(ctx, cmd.ID); err != nil {
			return Result{}, err
		}
		slog.Info("todo deleted", "id", cmd.ID)
		return Result{}, nil

	case CommandUpdatePositions:
		if err := e.store.UpdatePositions(ctx, cmd.Updates); err != nil {
			return Result{}, err
		}
		slog.Info("positions updated", "count", len(cmd.Updates))
		return Result{}, nil

	case CommandReorder:
		plan, err := e.store.Reorder(ctx, cmd.IDs)
		if err != nil {
			return Result{}, err
		}
		slog.Info("todos reordered",
			"ids", len(cmd.IDs),
			"strategy", plan.Strategy,
			"updated", len(plan.Updates),
		)
		return Result{Plan: plan}, nil

	case CommandClearCompleted:
		deleted, err := e.store.ClearCompleted(ctx)
		if err != nil {
			return Result{}, err
		}
		slog.Info("completed todos cleared", "count", len(deleted))
		return Result{Deleted: deleted}, nil
	}

	return Result{}, fmt.Errorf("unknown command kind: %q", cmd.Kind)
}

// publish reads a snapshot and pushes changed views to every subscription.
func (e *Engine) publish(ctx context.Context, rev int64) {
	if e.hub.Len() == 0 {
		return
	}
	all, err := e.store.Snapshot(ctx)
	if err != nil {
		// The next successful commit republishes the full state.
		slog.Error("snapshot for publish failed", "revision", rev, "error", err)
		return
	}
	pushed := e.hub.Publish(rev, all)
	slog.Debug("views published", "revision", rev, "pushed", pushed)
}

// prime sends a new subscription its first view.
func (e *Engine) prime(ctx context.Context, sub *Subscription) {
	if sub.isClosed() {
		return
	}
	all, err := e.store.Snapshot(ctx)
	if err != nil {
		slog.Error("snapshot for new subscription failed", "filter", sub.Filter(), "error", err)
		return
	}
	e.hub.deliver(sub, e.clock.Current(), all)
}

// logCommandError logs a failed command. NOT_FOUND and VALIDATION are
// expected outcomes and logged at warn level.
func logCommandError(cmd *Command, err error) {
	attrs := []any{"command", cmd.Kind, "error", err}
	if cmd.ID != "" {
		attrs = append(attrs, "id", cmd.ID)
	}
	switch todo.CodeOf(err) {
	case todo.ErrCodeNotFound, todo.ErrCodeValidation:
		slog.Warn("command rejected", attrs...)
	default:
		slog.Error("command failed", attrs...)
	}
}

// submit enqueues a command and waits for its result.
//
// If ctx ends first the caller stops waiting, but the command still runs.
func (e *Engine) submit(ctx context.Context, cmd Command) (Result, error) {
	ev := Event{
		Type:    EventTypeCommand,
		Command: &cmd,
		reply:   make(chan reply, 1),
	}
	if !e.queue.Enqueue(ev) {
		return Result{}, todo.NewTransientError(string(cmd.Kind), ErrStopped)
	}

	select {
	case r := <-ev.reply:
		return r.result, r.err
	case <-ctx.Done():
		return Result{}, todo.NewTransientError(string(cmd.Kind), ctx.Err())
	}
}

// CreateTodo creates a todo and returns its ID.
// Fails with VALIDATION if title is blank. Not idempotent.
func (e *Engine) CreateTodo(ctx context.Context, title string, description todo.Option[string]) (string, error) {
	if _, err := todo.NormalizeTitle(title); err != nil {
		// Rejected before reaching the loop; no state change, no revision.
		observeCommand(CommandCreate, err, 0)
		return "", err
	}
	res, err := e.submit(ctx, Command{Kind: CommandCreate, Title: title, Description: description})
	if err != nil {
		return "", err
	}
	return res.Todo.ID, nil
}

// ToggleTodo sets IsCompleted of id to completed.
// Returns NOT_FOUND if the todo no longer exists.
func (e *Engine) ToggleTodo(ctx context.Context, id string, completed bool) error {
	_, err := e.submit(ctx, Command{Kind: CommandToggle, ID: id, Completed: completed})
	return err
}

// DeleteTodo removes id.
// Returns NOT_FOUND if the todo no longer exists.
func (e *Engine) DeleteTodo(ctx context.Context, id string) error {
	_, err := e.submit(ctx, Command{Kind: CommandDelete, ID: id})
	return err
}

// UpdateTodoPositions applies explicit positions as one atomic batch.
func (e *Engine) UpdateTodoPositions(ctx context.Context, updates []todo.PositionUpdate) error {
	if err := todo.ValidatePositionUpdates(updates); err != nil {
		observeCommand(CommandUpdatePositions, err, 0)
		return err
	}
	_, err := e.submit(ctx, Command{Kind: CommandUpdatePositions, Updates: updates})
	return err
}

// Reorder puts the given visible IDs in order as one atomic batch.
func (e *Engine) Reorder(ctx context.Context, ids []string) (ordering.Result, error) {
	res, err := e.submit(ctx, Command{Kind: CommandReorder, IDs: ids})
	if err != nil {
		return ordering.Result{}, err
	}
	return res.Plan, nil
}

// ClearCompletedTodos deletes every completed todo and returns their IDs.
func (e *Engine) ClearCompletedTodos(ctx context.Context) ([]string, error) {
	res, err := e.submit(ctx, Command{Kind: CommandClearCompleted})
	if err != nil {
		return nil, err
	}
	return res.Deleted, nil
}

// GetTodos returns the current todos visible under f.
func (e *Engine) GetTodos(ctx context.Context, f todo.Filter) ([]todo.Todo, error) {
	return e.store.List(ctx, f)
}

// Subscribe opens a live view of f.
//
// The subscription is loading until the loop primes it; if the engine is
// not running it stays loading. Call Close when done.
func (e *Engine) Subscribe(f todo.Filter) *Subscription {
	sub := e.hub.Subscribe(f)
	if !e.queue.Enqueue(Event{Type: EventTypePrime, Subscription: sub}) {
		slog.Warn("subscription opened on stopped engine", "filter", f)
	}
	return sub
}
