package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todosync/internal/ordering"
	"github.com/roach88/todosync/internal/testutil"
	"github.com/roach88/todosync/internal/todo"
)

func TestCreate_Defaults(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	td, err := s.Create(ctx, NewTodo{Title: "  Buy milk  "})
	require.NoError(t, err)

	assert.Equal(t, "todo-0001", td.ID)
	assert.Equal(t, "Buy milk", td.Title)
	assert.False(t, td.IsCompleted)
	assert.False(t, td.Description.IsSome())
	assert.Equal(t, testutil.DefaultEpoch, td.CreatedAt)
	assert.Equal(t, todo.DefaultPosition(testutil.DefaultEpoch), td.Position)

	got, err := s.Get(ctx, td.ID)
	require.NoError(t, err)
	assert.Equal(t, td, got, "stored record must match the returned record")
}

func TestCreate_Description(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	withDesc, err := s.Create(ctx, NewTodo{Title: "A", Description: todo.Some(" two liters ")})
	require.NoError(t, err)
	blank, err := s.Create(ctx, NewTodo{Title: "B", Description: todo.Some("   ")})
	require.NoError(t, err)

	got, err := s.Get(ctx, withDesc.ID)
	require.NoError(t, err)
	assert.Equal(t, todo.Some("two liters"), got.Description)

	got, err = s.Get(ctx, blank.ID)
	require.NoError(t, err)
	assert.False(t, got.Description.IsSome(), "blank description is stored as absent")
}

func TestCreate_BlankTitleRejected(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"", "   "} {
		_, err := s.Create(ctx, NewTodo{Title: title})
		require.Error(t, err)
		assert.True(t, todo.IsValidation(err), "title %q", title)
	}

	total, _, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total, "no record is created on validation failure")
}

func TestCreate_UniqueIDs(t *testing.T) {
	s := createTestStore(t)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := mustCreate(t, s, fmt.Sprintf("todo %d", i))
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestCreate_PreservesCreationOrder(t *testing.T) {
	s := createTestStore(t)
	mustCreate(t, s, "A")
	mustCreate(t, s, "B")
	mustCreate(t, s, "C")

	assert.Equal(t, []string{"A", "B", "C"}, titles(t, s, todo.FilterAll))
}

func TestDelete(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	id := mustCreate(t, s, "A")

	require.NoError(t, s.Delete(ctx, id))

	_, err := s.Get(ctx, id)
	assert.True(t, todo.IsNotFound(err))

	err = s.Delete(ctx, id)
	require.Error(t, err)
	assert.True(t, todo.IsNotFound(err), "second delete reports NOT_FOUND")
}

func TestSetCompleted(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	id := mustCreate(t, s, "A")

	require.NoError(t, s.SetCompleted(ctx, id, true))
	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)

	require.NoError(t, s.SetCompleted(ctx, id, false))
	got, err = s.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)
}

func TestSetCompleted_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	id := mustCreate(t, s, "A")

	require.NoError(t, s.SetCompleted(ctx, id, true))
	once, err := s.Snapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, s.SetCompleted(ctx, id, true), "repeating the same value succeeds")
	twice, err := s.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestSetCompleted_NotFound(t *testing.T) {
	s := createTestStore(t)
	err := s.SetCompleted(context.Background(), "missing", true)
	require.Error(t, err)
	assert.True(t, todo.IsNotFound(err))
}

func TestClearCompleted(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "A")
	mustCreate(t, s, "B")
	c := mustCreate(t, s, "C")
	mustCreate(t, s, "D")

	require.NoError(t, s.SetCompleted(ctx, a, true))
	require.NoError(t, s.SetCompleted(ctx, c, true))
	activeBefore := ids(t, s, todo.FilterActive)

	deleted, err := s.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{a, c}, deleted)

	assert.Empty(t, ids(t, s, todo.FilterCompleted))
	assert.Equal(t, activeBefore, ids(t, s, todo.FilterActive))
}

func TestClearCompleted_NothingToClear(t *testing.T) {
	s := createTestStore(t)
	mustCreate(t, s, "A")

	deleted, err := s.ClearCompleted(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, deleted)
	assert.Empty(t, deleted)
	assert.Equal(t, []string{"A"}, titles(t, s, todo.FilterAll))
}

func TestUpdatePositions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "A")
	b := mustCreate(t, s, "B")
	c := mustCreate(t, s, "C")

	err := s.UpdatePositions(ctx, []todo.PositionUpdate{
		{ID: c, Position: 0},
		{ID: a, Position: 1},
		{ID: b, Position: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, titles(t, s, todo.FilterAll))
}

func TestUpdatePositions_AllOrNothing(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "A")
	b := mustCreate(t, s, "B")
	before, err := s.Snapshot(ctx)
	require.NoError(t, err)

	err = s.UpdatePositions(ctx, []todo.PositionUpdate{
		{ID: b, Position: 0},
		{ID: "missing", Position: 1},
		{ID: a, Position: 2},
	})
	require.Error(t, err)
	assert.True(t, todo.IsNotFound(err))

	after, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed batch must not change any record")
}

func TestUpdatePositions_Invalid(t *testing.T) {
	s := createTestStore(t)
	a := mustCreate(t, s, "A")

	err := s.UpdatePositions(context.Background(), []todo.PositionUpdate{
		{ID: a, Position: 0},
		{ID: a, Position: 1},
	})
	require.Error(t, err)
	assert.True(t, todo.IsValidation(err))
}

func TestReorder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "A")
	b := mustCreate(t, s, "B")
	c := mustCreate(t, s, "C")

	res, err := s.Reorder(ctx, []string{c, a, b})
	require.NoError(t, err)
	assert.Equal(t, ordering.StrategyDense, res.Strategy)
	assert.Equal(t, []string{"C", "A", "B"}, titles(t, s, todo.FilterAll))

	again, err := s.Reorder(ctx, []string{c, a, b})
	require.NoError(t, err)
	assert.Empty(t, again.Updates, "reorder is idempotent")
	assert.Equal(t, []string{"C", "A", "B"}, titles(t, s, todo.FilterAll))
}

func TestReorder_FilteredSubsetKeepsOthers(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "A")
	x := mustCreate(t, s, "X")
	b := mustCreate(t, s, "B")
	y := mustCreate(t, s, "Y")
	c := mustCreate(t, s, "C")
	require.NoError(t, s.SetCompleted(ctx, x, true))
	require.NoError(t, s.SetCompleted(ctx, y, true))

	_, err := s.Reorder(ctx, []string{c, b, a})
	require.NoError(t, err)

	assert.Equal(t, []string{"C", "B", "A"}, titles(t, s, todo.FilterActive))
	assert.Equal(t, []string{"X", "Y"}, titles(t, s, todo.FilterCompleted))
	assert.Equal(t, []string{"C", "X", "B", "Y", "A"}, titles(t, s, todo.FilterAll))
}

func TestReorder_UnknownIDRollsBack(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	a := mustCreate(t, s, "A")
	b := mustCreate(t, s, "B")

	_, err := s.Reorder(ctx, []string{b, "gone", a})
	require.Error(t, err)
	assert.True(t, todo.IsNotFound(err))
	assert.Equal(t, []string{"A", "B"}, titles(t, s, todo.FilterAll))
}

func TestConcurrentMutations(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var created []string
	for i := 0; i < 20; i++ {
		created = append(created, mustCreate(t, s, fmt.Sprintf("T%02d", i)))
	}

	var wg sync.WaitGroup
	for i, id := range created {
		wg.Add(2)
		go func(id string, done bool) {
			defer wg.Done()
			assert.NoError(t, s.SetCompleted(ctx, id, done))
		}(id, i%2 == 0)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, s.SetCompleted(ctx, id, true))
		}(id)
	}
	wg.Wait()

	all, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, all, 20)
	// Odd rows received both "false" and "true"; either may commit last.
	for i, td := range all {
		if i%2 == 0 {
			assert.True(t, td.IsCompleted, "todo %s", td.Title)
		}
	}
}
