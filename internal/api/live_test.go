package api

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todosync/internal/todo"
)

var errDone = errors.New("done")

func TestLiveURL(t *testing.T) {
	tests := []struct {
		server string
		want   string
	}{
		{"http://localhost:8080", "ws://localhost:8080/api/todos/live?filter=active"},
		{"https://example.com/", "wss://example.com/api/todos/live?filter=active"},
		{"ws://h:1/base", "ws://h:1/base/api/todos/live?filter=active"},
	}
	for _, tt := range tests {
		got, err := LiveURL(tt.server, todo.FilterActive)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := LiveURL("ftp://x", todo.FilterAll)
	assert.Error(t, err)
}

func TestWatch_LoadingThenViews(t *testing.T) {
	f := newFixture(t, false)
	ts := httptest.NewServer(f.server.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	msgs := make(chan LiveMessage, 16)
	errc := make(chan error, 1)
	go func() {
		errc <- Watch(ctx, ts.URL, todo.FilterActive, func(m LiveMessage) error {
			msgs <- m
			if m.View != nil && len(m.View.Todos) == 1 {
				return errDone
			}
			return nil
		})
	}()

	// The loop is not running yet, so the first frame is loading.
	first := <-msgs
	assert.Equal(t, MessageLoading, first.Type)
	assert.Equal(t, todo.FilterActive, first.Filter)
	assert.Nil(t, first.View)

	f.run(t)

	primed := <-msgs
	require.Equal(t, MessageView, primed.Type)
	require.NotNil(t, primed.View)
	assert.Empty(t, primed.View.Todos, "empty result is distinct from loading")

	_, err := f.engine.CreateTodo(ctx, "A", todo.None[string]())
	require.NoError(t, err)

	pushed := <-msgs
	require.NotNil(t, pushed.View)
	assert.Equal(t, "A", pushed.View.Todos[0].Title)
	assert.Equal(t, int64(1), pushed.View.Revision)

	assert.ErrorIs(t, <-errc, errDone)
}

func TestWatch_ContextCancelReturnsNil(t *testing.T) {
	f := newFixture(t, true)
	ts := httptest.NewServer(f.server.Router())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan struct{}, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- Watch(ctx, ts.URL, todo.FilterAll, func(m LiveMessage) error {
			if m.Type == MessageView {
				select {
				case got <- struct{}{}:
				default:
				}
			}
			return nil
		})
	}()

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("no view received")
	}
	cancel()
	assert.NoError(t, <-errc)

	require.Eventually(t, func() bool {
		return f.engine.Hub().Len() == 0
	}, 5*time.Second, 10*time.Millisecond, "server closes the subscription")
}

func TestWatch_DialFailureIsTransient(t *testing.T) {
	ts := httptest.NewServer(nil)
	url := ts.URL
	ts.Close()

	err := Watch(context.Background(), url, todo.FilterAll, func(LiveMessage) error { return nil })
	require.Error(t, err)
	assert.True(t, todo.IsTransient(err))
}
