package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/todosync/internal/ordering"
	"github.com/roach88/todosync/internal/todo"
)

// CreateRequest is the body of POST /api/todos.
type CreateRequest struct {
	Title       string              `json:"title"`
	Description todo.Option[string] `json:"description"`
}

// CreateResponse carries the new todo's ID.
type CreateResponse struct {
	ID string `json:"id"`
}

// ToggleRequest is the body of PATCH /api/todos/:id.
type ToggleRequest struct {
	IsCompleted *bool `json:"isCompleted" binding:"required"`
}

// PositionsRequest is the body of POST /api/todos/positions.
type PositionsRequest struct {
	Updates []todo.PositionUpdate `json:"updates" binding:"required"`
}

// ReorderRequest is the body of POST /api/todos/reorder.
type ReorderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// ReorderResponse reports how the order was applied.
type ReorderResponse struct {
	Strategy ordering.Strategy     `json:"strategy"`
	Updates  []todo.PositionUpdate `json:"updates"`
}

// ListResponse is the body of GET /api/todos.
type ListResponse struct {
	Filter todo.Filter `json:"filter"`
	Todos  []todo.Todo `json:"todos"`
}

// ClearResponse reports what clear-completed removed.
type ClearResponse struct {
	Deleted int      `json:"deleted"`
	IDs     []string `json:"ids"`
}

func (s *Server) handleList(c *gin.Context) {
	f, err := todo.ParseFilter(c.Query("filter"))
	if err != nil {
		writeError(c, err)
		return
	}
	todos, err := s.svc.GetTodos(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Filter: f, Todos: todos})
}

func (s *Server) handleCreate(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	id, err := s.svc.CreateTodo(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateResponse{ID: id})
}

func (s *Server) handleToggle(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := s.svc.ToggleTodo(c.Request.Context(), c.Param("id"), *req.IsCompleted); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.svc.DeleteTodo(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handlePositions(c *gin.Context) {
	var req PositionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := s.svc.UpdateTodoPositions(c.Request.Context(), req.Updates); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleReorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	plan, err := s.svc.Reorder(c.Request.Context(), req.IDs)
	if err != nil {
		writeError(c, err)
		return
	}
	updates := plan.Updates
	if updates == nil {
		updates = []todo.PositionUpdate{}
	}
	c.JSON(http.StatusOK, ReorderResponse{Strategy: plan.Strategy, Updates: updates})
}

func (s *Server) handleClearCompleted(c *gin.Context) {
	ids, err := s.svc.ClearCompletedTodos(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ClearResponse{Deleted: len(ids), IDs: ids})
}
