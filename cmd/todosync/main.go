// Command todosync runs the todo store CLI and server.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/todosync/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "todosync:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
