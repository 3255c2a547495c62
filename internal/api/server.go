package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/todosync/internal/engine"
	"github.com/roach88/todosync/internal/ordering"
	"github.com/roach88/todosync/internal/todo"
)

// Service is the command and query surface the API drives.
// *engine.Engine implements it.
type Service interface {
	CreateTodo(ctx context.Context, title string, description todo.Option[string]) (string, error)
	ToggleTodo(ctx context.Context, id string, completed bool) error
	DeleteTodo(ctx context.Context, id string) error
	UpdateTodoPositions(ctx context.Context, updates []todo.PositionUpdate) error
	Reorder(ctx context.Context, ids []string) (ordering.Result, error)
	ClearCompletedTodos(ctx context.Context) ([]string, error)
	GetTodos(ctx context.Context, f todo.Filter) ([]todo.Todo, error)
	Subscribe(f todo.Filter) *engine.Subscription
}

// Server holds the routes and their dependencies.
type Server struct {
	svc    Service
	health func(context.Context) error
	router *gin.Engine
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithHealthCheck sets the check behind /healthz.
func WithHealthCheck(fn func(context.Context) error) ServerOption {
	return func(s *Server) {
		s.health = fn
	}
}

// NewServer builds the router for svc.
func NewServer(svc Service, opts ...ServerOption) *Server {
	s := &Server{svc: svc}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	s.setupRoutes(router)
	s.router = router
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes(router *gin.Engine) {
	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	todos := router.Group("/api/todos")
	{
		todos.GET("", s.handleList)
		todos.POST("", s.handleCreate)
		todos.GET("/live", s.handleLive)
		todos.POST("/positions", s.handlePositions)
		todos.POST("/reorder", s.handleReorder)
		todos.POST("/clear-completed", s.handleClearCompleted)
		todos.PATCH("/:id", s.handleToggle)
		todos.DELETE("/:id", s.handleDelete)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.health != nil {
		if err := s.health(c.Request.Context()); err != nil {
			slog.Warn("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestLogger logs each request with slog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
