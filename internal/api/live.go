package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/roach88/todosync/internal/engine"
	"github.com/roach88/todosync/internal/todo"
)

// Live message types.
const (
	MessageLoading = "loading"
	MessageView    = "view"
)

// LiveMessage is one frame on the live WebSocket.
// A loading frame carries no view.
type LiveMessage struct {
	Type   string       `json:"type"`
	Filter todo.Filter  `json:"filter"`
	View   *engine.View `json:"view,omitempty"`
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
}

// handleLive streams the views of one filter until the client goes away.
func (s *Server) handleLive(c *gin.Context) {
	f, err := todo.ParseFilter(c.Query("filter"))
	if err != nil {
		writeError(c, err)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("failed to upgrade the websocket", "error", err)
		return
	}
	defer ws.Close()

	sub := s.svc.Subscribe(f)
	defer sub.Close()
	slog.Info("live view opened", "filter", f, "remote", c.Request.RemoteAddr)

	if _, ok := sub.Current(); !ok {
		if err := writeMessage(ws, LiveMessage{Type: MessageLoading, Filter: f}); err != nil {
			return
		}
	}

	gone := readUntilClosed(ws)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case v, ok := <-sub.Updates():
			if !ok {
				return
			}
			if err := writeMessage(ws, LiveMessage{Type: MessageView, Filter: f, View: &v}); err != nil {
				return
			}

		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}

		case <-gone:
			slog.Info("live view closed", "filter", f)
			return

		case <-c.Request.Context().Done():
			return
		}
	}
}

func writeMessage(ws *websocket.Conn, msg LiveMessage) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := ws.WriteJSON(msg); err != nil {
		slog.Warn("failed to write websocket message", "error", err)
		return err
	}
	return nil
}

// readUntilClosed consumes client frames so control messages are handled.
// The returned channel closes when the connection fails or is closed.
func readUntilClosed(ws *websocket.Conn) <-chan struct{} {
	gone := make(chan struct{})
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(gone)
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()
	return gone
}
