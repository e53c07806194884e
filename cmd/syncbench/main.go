// Command syncbench runs the synchronization benchmark scenarios.
//
//	syncbench list
//	syncbench prodcons 500 --queue lockfree --termination close
//	syncbench threadpool --metrics --log-level debug
//
// Exit status is 0 on success, 1 for unusable input, and 2 when a run
// breaks an invariant: an oracle mismatch, a panicking job, or a poisoned
// lock.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/tahsin716/syncbench/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, cli.IsTerminal(os.Stdin)))
}

// run executes the command line and returns the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer, interactive bool) int {
	a := &app{
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		interactive: interactive,
	}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "syncbench: %v\n", err)
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}
