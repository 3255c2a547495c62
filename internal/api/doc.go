// Package api exposes the engine over HTTP.
//
// Commands and one-shot queries are JSON endpoints under /api/todos. Live
// views are pushed over a WebSocket at /api/todos/live; Watch is the matching
// client. Client sends commands and queries to a running server so they
// commit on its engine. /metrics serves Prometheus metrics and /healthz
// checks the store.
package api
