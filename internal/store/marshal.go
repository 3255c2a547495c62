package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/todosync/internal/todo"
)

const todoColumns = `id, title, description, is_completed, created_at, position`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanTodo(r rowScanner) (todo.Todo, error) {
	var (
		t         todo.Todo
		desc      sql.NullString
		completed int
		createdMs int64
	)
	if err := r.Scan(&t.ID, &t.Title, &desc, &completed, &createdMs, &t.Position); err != nil {
		return todo.Todo{}, err
	}
	if desc.Valid {
		t.Description = todo.Some(desc.String)
	}
	t.IsCompleted = completed != 0
	t.CreatedAt = fromMillis(createdMs)
	return t, nil
}

func descriptionValue(o todo.Option[string]) sql.NullString {
	d, ok := o.Get()
	return sql.NullString{String: d, Valid: ok}
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}

// fromMillis is the inverse of the created_at encoding (Unix milliseconds, UTC).
func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// classify wraps a storage error, marking lock contention and closed
// connections as TRANSIENT.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *todo.Error
	if errors.As(err, &te) {
		return err
	}
	var se sqlite3.Error
	if errors.As(err, &se) && (se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked) {
		return todo.NewTransientError(op, err)
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return todo.NewTransientError(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
