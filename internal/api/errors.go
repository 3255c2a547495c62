package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roach88/todosync/internal/todo"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ErrCodeInternal is reported for errors outside the todo taxonomy.
const ErrCodeInternal = "INTERNAL"

// statusFor maps an error code to an HTTP status.
func statusFor(code todo.ErrorCode) int {
	switch code {
	case todo.ErrCodeValidation:
		return http.StatusBadRequest
	case todo.ErrCodeNotFound:
		return http.StatusNotFound
	case todo.ErrCodeTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	code := todo.CodeOf(err)
	status := statusFor(code)
	resp := ErrorResponse{Error: err.Error(), Code: string(code)}
	if code == "" {
		resp.Code = ErrCodeInternal
		slog.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, resp)
}

// writeBindError reports a malformed request body.
func writeBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error: "invalid request body: " + err.Error(),
		Code:  string(todo.ErrCodeValidation),
	})
}
