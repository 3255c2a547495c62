package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/todosync/internal/api"
	"github.com/roach88/todosync/internal/todo"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Filter string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print every pushed view from a running server",
		Long: `Subscribe to a live view on a todosync server and print each update.

With --format json every message is printed as one JSON line.

Example:
  todosync watch --server http://127.0.0.1:8080 --filter active`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Server, "server", "", "server URL (default: config server, then http://<config listen>)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "all", "filter (all|active|completed)")
	return cmd
}

func runWatch(opts *WatchOptions, cmd *cobra.Command) error {
	f, err := todo.ParseFilter(opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid filter", err)
	}
	cfg, err := opts.settings(cmd)
	if err != nil {
		return err
	}
	server := opts.serverURL(cfg)
	if server == "" {
		server = "http://" + cfg.Listen
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := cmd.OutOrStdout()
	err = api.Watch(ctx, server, f, func(msg api.LiveMessage) error {
		if opts.Format == "json" {
			return json.NewEncoder(w).Encode(msg)
		}
		if msg.View == nil {
			_, err := fmt.Fprintf(w, "-- %s: loading\n", msg.Filter)
			return err
		}
		fmt.Fprintf(w, "-- %s @ revision %d\n", msg.Filter, msg.View.Revision)
		_, err := fmt.Fprintln(w, TodoList{Filter: msg.Filter, Todos: msg.View.Todos})
		return err
	})
	if err != nil {
		_, exit := cliCode(err)
		return WrapExitError(exit, "watch failed", err)
	}
	return nil
}
