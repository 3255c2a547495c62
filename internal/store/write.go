package store

import (
	"context"
	"database/sql"

	"github.com/roach88/todosync/internal/ordering"
	"github.com/roach88/todosync/internal/todo"
)

// NewTodo is the input to Create.
type NewTodo struct {
	Title       string
	Description todo.Option[string]
}

// Create inserts a new todo and returns it.
//
// The title is trimmed and NFC-normalized; a blank title fails with a
// VALIDATION error before anything is written. The store assigns ID,
// CreatedAt and a default Position of CreatedAt in milliseconds, so new todos
// sort after every earlier todo unless explicitly reordered.
//
// Create is not idempotent: submitting it twice creates two todos.
func (s *Store) Create(ctx context.Context, in NewTodo) (todo.Todo, error) {
	title, err := todo.NormalizeTitle(in.Title)
	if err != nil {
		return todo.Todo{}, err
	}

	now := s.clock.Now()
	t := todo.Todo{
		ID:          s.ids.Generate(),
		Title:       title,
		Description: todo.NormalizeDescription(in.Description),
		IsCompleted: false,
		CreatedAt:   fromMillis(now.UnixMilli()),
		Position:    todo.DefaultPosition(now),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO todos (id, title, description, is_completed, created_at, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.Title,
		descriptionValue(t.Description),
		boolValue(t.IsCompleted),
		t.CreatedAt.UnixMilli(),
		t.Position,
	)
	if err != nil {
		return todo.Todo{}, classify("create", err)
	}

	return t, nil
}

// Delete removes a todo.
// Returns a NOT_FOUND error if the todo does not exist (e.g. a racing delete
// already removed it).
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return classify("delete", err)
	}
	return requireRow(res, "delete", id)
}

// SetCompleted sets IsCompleted to the given target value.
//
// Writing an explicit target (rather than flipping) makes repeated and racing
// toggles converge on the last committed value. Returns NOT_FOUND if the todo
// does not exist.
func (s *Store) SetCompleted(ctx context.Context, id string, completed bool) error {
	// SQLite counts matched rows, so a same-value update still reports 1.
	res, err := s.db.ExecContext(ctx, `
		UPDATE todos SET is_completed = ? WHERE id = ?
	`, boolValue(completed), id)
	if err != nil {
		return classify("toggle", err)
	}
	return requireRow(res, "toggle", id)
}

// ClearCompleted deletes every completed todo in one transaction and returns
// the deleted IDs in display order.
//
// The completed set is read and deleted inside the same transaction, so the
// batch covers exactly the todos that were completed when it started.
func (s *Store) ClearCompleted(ctx context.Context) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("clear completed: begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM todos
		WHERE is_completed = 1
		ORDER BY position ASC, created_at ASC, id ASC
	`)
	if err != nil {
		return nil, classify("clear completed: select", err)
	}
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, classify("clear completed: scan", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, classify("clear completed: iterate", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return ids, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM todos WHERE is_completed = 1`); err != nil {
		return nil, classify("clear completed: delete", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, classify("clear completed: commit", err)
	}

	return ids, nil
}

// UpdatePositions applies explicit positions as one atomic batch.
//
// The batch is validated first (non-empty, distinct IDs, finite positions).
// If any ID does not exist the whole batch is rolled back with NOT_FOUND.
func (s *Store) UpdatePositions(ctx context.Context, updates []todo.PositionUpdate) error {
	if err := todo.ValidatePositionUpdates(updates); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("update positions: begin tx", err)
	}
	defer tx.Rollback()

	if err := applyPositions(ctx, tx, "update positions", updates); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("update positions: commit", err)
	}
	return nil
}

// Reorder puts ids in the given order as one atomic batch.
//
// ids is the client's full ordering of the todos it can see. The current
// rows are read and the plan from ordering.Plan is applied inside a single
// transaction, so concurrent reorders never interleave.
func (s *Store) Reorder(ctx context.Context, ids []string) (ordering.Result, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ordering.Result{}, classify("reorder: begin tx", err)
	}
	defer tx.Rollback()

	current, err := readAll(ctx, tx)
	if err != nil {
		return ordering.Result{}, classify("reorder: read", err)
	}

	plan, err := ordering.Plan(current, ids)
	if err != nil {
		return ordering.Result{}, err
	}
	if len(plan.Updates) == 0 {
		return plan, nil
	}

	if err := applyPositions(ctx, tx, "reorder", plan.Updates); err != nil {
		return ordering.Result{}, err
	}

	if err := tx.Commit(); err != nil {
		return ordering.Result{}, classify("reorder: commit", err)
	}
	return plan, nil
}

func applyPositions(ctx context.Context, tx *sql.Tx, op string, updates []todo.PositionUpdate) error {
	stmt, err := tx.PrepareContext(ctx, `UPDATE todos SET position = ? WHERE id = ?`)
	if err != nil {
		return classify(op+": prepare", err)
	}
	defer stmt.Close()

	for _, u := range updates {
		res, err := stmt.ExecContext(ctx, u.Position, u.ID)
		if err != nil {
			return classify(op+": update", err)
		}
		if err := requireRow(res, op, u.ID); err != nil {
			return err
		}
	}
	return nil
}

// requireRow turns "no row affected" into NOT_FOUND.
func requireRow(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op+": rows affected", err)
	}
	if n == 0 {
		return todo.NewNotFoundError(op, id)
	}
	return nil
}
