package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/roach88/todosync/internal/todo"
)

// LiveURL returns the WebSocket URL of the live view on server for f.
// server may use http, https, ws or wss.
func LiveURL(server string, f todo.Filter) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/api/todos/live"
	u.RawQuery = url.Values{"filter": {string(f)}}.Encode()
	return u.String(), nil
}

// Watch connects to the live view of f on server and calls fn for every
// message until ctx ends, the server closes the stream or fn returns an
// error. A context cancellation returns nil.
func Watch(ctx context.Context, server string, f todo.Filter, fn func(LiveMessage) error) error {
	target, err := LiveURL(server, f)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return todo.NewTransientError("watch", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	for {
		var msg LiveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				return nil
			}
			return fmt.Errorf("watch: read: %w", err)
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
}
