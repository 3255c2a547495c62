package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/todosync/internal/todo"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	require.NoError(t, formatter.Success(Created{ID: "todo-0001"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"id": "todo-0001"}, resp.Data)
}

func TestOutputFormatter_TextSuccessUsesStringer(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(Cleared{Deleted: 2}))
	assert.Equal(t, "Cleared 2 completed todo(s)\n", buf.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	require.NoError(t, formatter.Error(ErrCodeValidation, "title must not be empty", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E002", resp.Error.Code)
	assert.Equal(t, "title must not be empty", resp.Error.Message)
}

func TestOutputFormatter_TextErrorGoesToErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut}

	require.NoError(t, formatter.Error(ErrCodeNotFound, "gone", nil))
	assert.Empty(t, out.String())
	assert.Equal(t, "Error [E003]: gone\n", errOut.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	quiet := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut}
	quiet.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	loud := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}
	loud.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", errOut.String())
	assert.Empty(t, out.String(), "verbose output never corrupts JSON on stdout")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "inner", errors.New("cause")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Equal(t, "outer: inner: cause", wrapped.Error())
}

func TestCLICode(t *testing.T) {
	tests := []struct {
		err  error
		code string
		exit int
	}{
		{todo.NewValidationError("create", "blank"), ErrCodeValidation, ExitCommandError},
		{todo.NewNotFoundError("reorder", "x"), ErrCodeNotFound, ExitFailure},
		{todo.NewTransientError("toggle", errors.New("locked")), ErrCodeUnavailable, ExitFailure},
		{errors.New("boom"), ErrCodeGeneric, ExitFailure},
	}
	for _, tt := range tests {
		code, exit := cliCode(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Equal(t, tt.exit, exit, tt.err.Error())
	}
}

func TestTodoListString(t *testing.T) {
	assert.Equal(t, "No active todos.", TodoList{Filter: todo.FilterActive}.String())

	l := TodoList{Filter: todo.FilterAll, Todos: []todo.Todo{
		{ID: "todo-0001", Title: "A", IsCompleted: true},
		{ID: "todo-0002", Title: "B", Description: todo.Some("details")},
	}}
	assert.Equal(t, "[x] A  (todo-0001)\n[ ] B  (todo-0002)\n      details", l.String())
}

func TestParsePositions(t *testing.T) {
	updates, err := parsePositions([]string{"a=0", "b=1.5", "c=-2"})
	require.NoError(t, err)
	assert.Equal(t, []todo.PositionUpdate{
		{ID: "a", Position: 0},
		{ID: "b", Position: 1.5},
		{ID: "c", Position: -2},
	}, updates)

	for _, bad := range []string{"a", "=1", "a=x"} {
		_, err := parsePositions([]string{bad})
		assert.Error(t, err, bad)
	}
}
