// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parser

import (
	"context"
	"io"
	"os/exec"
)

// command describes one process invocation.
type command struct {
	name  string
	args  []string
	dir   string
	env   []string // nil inherits the current environment
	stdin io.Reader
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, c command, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(ctx context.Context, c command, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, c.name, c.args...)
	cmd.Dir = c.dir
	cmd.Env = c.env
	cmd.Stdin = c.stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// runSilent runs a command and reports only whether it succeeded.
func runSilent(ctx context.Context, ex executor, name string, args ...string) error {
	return ex.Run(ctx, command{name: name, args: args}, io.Discard, io.Discard)
}
