package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todosync/internal/query"
	"github.com/roach88/todosync/internal/todo"
)

func TestCompileSelect(t *testing.T) {
	tests := []struct {
		name   string
		pred   predicate
		sql    string
		params []any
	}{
		{
			name: "no filter",
			sql:  "SELECT " + todoColumns + " FROM todos ORDER BY " + orderBy,
		},
		{
			name:   "equals",
			pred:   equals{Column: "is_completed", Value: 1},
			sql:    "SELECT " + todoColumns + " FROM todos WHERE is_completed = ? ORDER BY " + orderBy,
			params: []any{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := compileSelect(tt.pred)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestCompileSelect_RejectsUnknownColumn(t *testing.T) {
	_, _, err := compileSelect(equals{Column: "1=1; DROP TABLE todos; --", Value: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown column")
}

func TestFilterPredicate_UnknownFilter(t *testing.T) {
	_, err := filterPredicate(todo.Filter("someday"))
	require.Error(t, err)
	assert.True(t, todo.IsValidation(err))
}

func TestList_MatchesProjection(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	var created []string
	for _, title := range []string{"A", "B", "C", "D", "E"} {
		created = append(created, mustCreate(t, s, title))
	}
	require.NoError(t, s.SetCompleted(ctx, created[1], true))
	require.NoError(t, s.SetCompleted(ctx, created[3], true))
	require.NoError(t, s.UpdatePositions(ctx, []todo.PositionUpdate{
		{ID: created[4], Position: -5},
		{ID: created[0], Position: 1e15},
	}))

	all, err := s.Snapshot(ctx)
	require.NoError(t, err)

	for _, f := range todo.Filters {
		got, err := s.List(ctx, f)
		require.NoError(t, err)
		want := query.Project(all, f)
		assert.Equal(t, query.IDs(want), query.IDs(got), "filter %s", f)
		assert.True(t, query.Equal(want, got), "filter %s", f)
	}
}
