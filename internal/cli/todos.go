package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/todosync/internal/ordering"
	"github.com/roach88/todosync/internal/todo"
)

// TodoList is the output of list.
type TodoList struct {
	Filter todo.Filter `json:"filter"`
	Todos  []todo.Todo `json:"todos"`
}

func (l TodoList) String() string {
	if len(l.Todos) == 0 {
		return fmt.Sprintf("No %s todos.", l.Filter)
	}
	var b strings.Builder
	for i, t := range l.Todos {
		if i > 0 {
			b.WriteByte('\n')
		}
		mark := " "
		if t.IsCompleted {
			mark = "x"
		}
		fmt.Fprintf(&b, "[%s] %s  (%s)", mark, t.Title, t.ID)
		if d, ok := t.Description.Get(); ok {
			fmt.Fprintf(&b, "\n      %s", d)
		}
	}
	return b.String()
}

// Created is the output of add.
type Created struct {
	ID string `json:"id"`
}

func (c Created) String() string { return c.ID }

// Message is a plain confirmation.
type Message struct {
	Message string `json:"message"`
}

func (m Message) String() string { return m.Message }

// Reordered is the output of reorder.
type Reordered struct {
	Strategy ordering.Strategy     `json:"strategy"`
	Updates  []todo.PositionUpdate `json:"updates"`
}

func (r Reordered) String() string {
	return fmt.Sprintf("Reordered (%s, %d position(s) changed)", r.Strategy, len(r.Updates))
}

// Cleared is the output of clear.
type Cleared struct {
	Deleted int      `json:"deleted"`
	IDs     []string `json:"ids"`
}

func (c Cleared) String() string {
	return fmt.Sprintf("Cleared %d completed todo(s)", c.Deleted)
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a todo",
		Long: `Create a todo and print its ID.

The title is trimmed; a blank title is rejected (exit code 2).

Example:
  todosync add "Buy milk" --description "two litres"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := todo.None[string]()
			if cmd.Flags().Changed("description") {
				desc = todo.Some(description)
			}
			return withSession(cmd, rootOpts, func(s *session, f *OutputFormatter) error {
				id, err := s.svc.CreateTodo(cmd.Context(), args[0], desc)
				if err != nil {
					return reportError(f, "add", err)
				}
				return f.Success(Created{ID: id})
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "optional description")
	addServerFlag(cmd, rootOpts)
	return cmd
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List todos in display order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := todo.ParseFilter(filter)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid filter", err)
			}
			return withSession(cmd, rootOpts, func(s *session, out *OutputFormatter) error {
				todos, err := s.svc.GetTodos(cmd.Context(), f)
				if err != nil {
					return reportError(out, "list", err)
				}
				return out.Success(TodoList{Filter: f, Todos: todos})
			})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "all", "filter (all|active|completed)")
	addServerFlag(cmd, rootOpts)
	return cmd
}

// NewToggleCommand creates the toggle command.
func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	var completed bool

	cmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a todo completed or active",
		Long: `Set a todo's completed flag.

A todo that no longer exists is reported as a warning.

Examples:
  todosync toggle 0190f6a2-...
  todosync toggle 0190f6a2-... --completed=false`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session, f *OutputFormatter) error {
				if err := s.svc.ToggleTodo(cmd.Context(), args[0], completed); err != nil {
					return reportMissing(f, "toggle", err)
				}
				state := "active"
				if completed {
					state = "completed"
				}
				return f.Success(Message{Message: fmt.Sprintf("%s marked %s", args[0], state)})
			})
		},
	}

	cmd.Flags().BoolVar(&completed, "completed", true, "completed state to set")
	addServerFlag(cmd, rootOpts)
	return cmd
}

// NewRemoveCommand creates the rm command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "rm <id>",
		Short:         "Delete a todo",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session, f *OutputFormatter) error {
				if err := s.svc.DeleteTodo(cmd.Context(), args[0]); err != nil {
					return reportMissing(f, "rm", err)
				}
				return f.Success(Message{Message: "deleted " + args[0]})
			})
		},
	}
	addServerFlag(cmd, rootOpts)
	return cmd
}

// NewReorderCommand creates the reorder command.
func NewReorderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reorder <id>...",
		Short: "Put todos in the given order",
		Long: `Reorder todos as one atomic batch.

Passing every todo renumbers them 0..N-1. Passing a subset (for example the
active todos) reorders them among the positions they already occupy, so
todos outside the subset keep their place.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session, f *OutputFormatter) error {
				plan, err := s.svc.Reorder(cmd.Context(), args)
				if err != nil {
					return reportError(f, "reorder", err)
				}
				updates := plan.Updates
				if updates == nil {
					updates = []todo.PositionUpdate{}
				}
				return f.Success(Reordered{Strategy: plan.Strategy, Updates: updates})
			})
		},
	}
	addServerFlag(cmd, rootOpts)
	return cmd
}

// NewPositionsCommand creates the positions command.
func NewPositionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions <id=position>...",
		Short: "Set explicit positions",
		Long: `Apply explicit positions as one atomic batch.

Example:
  todosync positions a1=0 b2=1.5 c3=-2`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parsePositions(args)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid positions", err)
			}
			return withSession(cmd, rootOpts, func(s *session, f *OutputFormatter) error {
				if err := s.svc.UpdateTodoPositions(cmd.Context(), updates); err != nil {
					return reportError(f, "positions", err)
				}
				return f.Success(Message{Message: fmt.Sprintf("updated %d position(s)", len(updates))})
			})
		},
	}
	addServerFlag(cmd, rootOpts)
	return cmd
}

// parsePositions parses id=position pairs.
func parsePositions(args []string) ([]todo.PositionUpdate, error) {
	updates := make([]todo.PositionUpdate, 0, len(args))
	for _, arg := range args {
		id, raw, ok := strings.Cut(arg, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("%q: expected id=position", arg)
		}
		pos, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: invalid position: %w", arg, err)
		}
		updates = append(updates, todo.PositionUpdate{ID: id, Position: pos})
	}
	return updates, nil
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Delete every completed todo",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(s *session, f *OutputFormatter) error {
				ids, err := s.svc.ClearCompletedTodos(cmd.Context())
				if err != nil {
					return reportError(f, "clear", err)
				}
				return f.Success(Cleared{Deleted: len(ids), IDs: ids})
			})
		},
	}
	addServerFlag(cmd, rootOpts)
	return cmd
}

// addServerFlag registers --server on a todo command.
func addServerFlag(cmd *cobra.Command, opts *RootOptions) {
	cmd.Flags().StringVar(&opts.Server, "server", "",
		"send the command to a running todosync server (overrides config)")
}

// withSession loads settings, opens a session and runs fn.
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(*session, *OutputFormatter) error) error {
	cfg, err := opts.settings(cmd)
	if err != nil {
		return err
	}
	s, err := openSession(cmd.Context(), cfg, opts.serverURL(cfg), opts.StoreOptions...)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s, opts.formatter(cmd))
}
