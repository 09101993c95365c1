// Package main provides the holocron CLI: it loads, verifies, browses and
// exports the Star Wars sample dataset.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Version metadata injected via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// errExit signals a non-zero exit after the command has already reported
// the problem itself.
var errExit = errors.New("exit")

// run executes the CLI with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		if errors.Is(err, errExit) {
			return exitUserError
		}
		fmt.Fprintf(stderr, "holocron: %v\n", err)
		return exitCode(err)
	}
	return exitSuccess
}
