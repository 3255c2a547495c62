package engine

import (
	"github.com/roach88/todosync/internal/ordering"
	"github.com/roach88/todosync/internal/todo"
)

// CommandKind identifies a mutation.
type CommandKind string

const (
	CommandCreate          CommandKind = "create"
	CommandToggle          CommandKind = "toggle"
	CommandDelete          CommandKind = "delete"
	CommandUpdatePositions CommandKind = "update_positions"
	CommandReorder         CommandKind = "reorder"
	CommandClearCompleted  CommandKind = "clear_completed"
)

// Command is a mutation submitted to the engine.
// Only the fields relevant to Kind are read.
type Command struct {
	Kind CommandKind

	// Create
	Title       string
	Description todo.Option[string]

	// Toggle, Delete
	ID        string
	Completed bool

	// UpdatePositions
	Updates []todo.PositionUpdate

	// Reorder
	IDs []string
}

// Result is the outcome of a committed command.
type Result struct {
	// Revision is the revision the command committed at.
	Revision int64

	// Todo is the created record (create only).
	Todo todo.Todo

	// Deleted lists the removed IDs (clear completed only).
	Deleted []string

	// Plan is the applied reorder plan (reorder only).
	Plan ordering.Result
}
