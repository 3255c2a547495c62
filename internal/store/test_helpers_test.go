package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/todosync/internal/query"
	"github.com/roach88/todosync/internal/testutil"
	"github.com/roach88/todosync/internal/todo"
)

// createTestStore creates a new temp-dir store with deterministic IDs and clock.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithClock(testutil.NewStepClock()),
		WithIDGenerator(testutil.NewSequentialIDs()),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustCreate creates a todo with the given title and returns its ID.
func mustCreate(t *testing.T, s *Store, title string) string {
	t.Helper()
	td, err := s.Create(context.Background(), NewTodo{Title: title})
	require.NoError(t, err)
	return td.ID
}

// titles lists the titles visible under f.
func titles(t *testing.T, s *Store, f todo.Filter) []string {
	t.Helper()
	todos, err := s.List(context.Background(), f)
	require.NoError(t, err)
	out := make([]string, len(todos))
	for i, td := range todos {
		out[i] = td.Title
	}
	return out
}

// ids lists the IDs visible under f.
func ids(t *testing.T, s *Store, f todo.Filter) []string {
	t.Helper()
	todos, err := s.List(context.Background(), f)
	require.NoError(t, err)
	return query.IDs(todos)
}
