package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/todosync/internal/todo"
)

// Get retrieves a single todo by ID.
// Returns a NOT_FOUND error if it does not exist.
func (s *Store) Get(ctx context.Context, id string) (todo.Todo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		WHERE id = ?
	`, id)

	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return todo.Todo{}, todo.NewNotFoundError("get", id)
	}
	if err != nil {
		return todo.Todo{}, classify("get", err)
	}
	return t, nil
}

// Snapshot returns every todo in canonical order, read in one statement.
//
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) Snapshot(ctx context.Context) ([]todo.Todo, error) {
	todos, err := readAll(ctx, s.db)
	if err != nil {
		return nil, classify("snapshot", err)
	}
	return todos, nil
}

// List returns the todos visible under f in canonical order.
// The filter runs in SQL; the result matches query.Project over a snapshot.
func (s *Store) List(ctx context.Context, f todo.Filter) ([]todo.Todo, error) {
	p, err := filterPredicate(f)
	if err != nil {
		return nil, err
	}
	todos, err := selectTodos(ctx, s.db, p)
	if err != nil {
		return nil, classify("list", err)
	}
	return todos, nil
}

// Count returns the number of todos and how many of them are completed.
func (s *Store) Count(ctx context.Context) (total, completed int, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(is_completed), 0) FROM todos
	`).Scan(&total, &completed)
	if err != nil {
		return 0, 0, classify("count", err)
	}
	return total, completed, nil
}

// readAll returns all todos ordered by position, created_at, id.
func readAll(ctx context.Context, q querier) ([]todo.Todo, error) {
	return selectTodos(ctx, q, nil)
}

// selectTodos returns the todos matching p (nil for all) in canonical order.
func selectTodos(ctx context.Context, q querier, p predicate) ([]todo.Todo, error) {
	sqlText, params, err := compileSelect(p)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	todos := []todo.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}

	return todos, nil
}
