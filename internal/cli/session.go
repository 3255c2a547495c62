package cli

import (
	"context"
	"log/slog"

	"github.com/roach88/todosync/internal/api"
	"github.com/roach88/todosync/internal/config"
	"github.com/roach88/todosync/internal/engine"
	"github.com/roach88/todosync/internal/ordering"
	"github.com/roach88/todosync/internal/store"
	"github.com/roach88/todosync/internal/todo"
)

// todoService is what the todo commands drive. *engine.Engine and
// *api.Client implement it.
type todoService interface {
	CreateTodo(ctx context.Context, title string, description todo.Option[string]) (string, error)
	ToggleTodo(ctx context.Context, id string, completed bool) error
	DeleteTodo(ctx context.Context, id string) error
	UpdateTodoPositions(ctx context.Context, updates []todo.PositionUpdate) error
	Reorder(ctx context.Context, ids []string) (ordering.Result, error)
	ClearCompletedTodos(ctx context.Context) ([]string, error)
	GetTodos(ctx context.Context, f todo.Filter) ([]todo.Todo, error)
}

// session is the todo service for one command: a running server's API when
// one is configured, otherwise the local database with its own engine.
type session struct {
	svc   todoService
	close func()
}

// openSession connects to server, or opens the configured database and
// starts an engine loop when server is empty. Callers must Close the session.
func openSession(ctx context.Context, cfg config.Config, server string, opts ...store.Option) (*session, error) {
	if server != "" {
		slog.Debug("using server", "url", server)
		c, err := api.NewClient(server)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid server", err)
		}
		return &session{svc: c, close: func() {}}, nil
	}

	slog.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database, opts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	eng := engine.New(st, engine.WithSubscriberBuffer(cfg.SubscriberBuffer))
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = eng.Run(runCtx)
	}()

	// Stop lets queued commands finish before the store closes.
	return &session{svc: eng, close: func() {
		eng.Stop()
		<-done
		cancel()
		if err := st.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}}, nil
}

// Close releases the session.
func (s *session) Close() {
	s.close()
}
