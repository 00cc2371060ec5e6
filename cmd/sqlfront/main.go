// Package main implements the sqlfront CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return runEnv(ctx, args, env{
		stdin:      os.Stdin,
		stdout:     stdout,
		stderr:     stderr,
		lineReader: newReadline,
	})
}

func runEnv(ctx context.Context, args []string, e env) int {
	root := newRootCmd(&e)
	root.SetArgs(args)
	root.SetOut(e.stdout)
	root.SetErr(e.stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			_, _ = fmt.Fprintln(e.stderr, "error:", err)
		}
		return 1
	}
	return 0
}

// errReported marks a failure whose details were already printed.
var errReported = errors.New("errors reported")

// env carries the process streams so tests can replace them.
type env struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	lineReader func(prompt string, in io.Reader, out, errOut io.Writer) (lineReader, error)
}
