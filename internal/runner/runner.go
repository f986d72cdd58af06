// Package runner is the seam between devdash and the external tools it
// leans on. Everything that forks a process for its output (git for
// discovery and status, lsof and netstat for port owners) takes a
// Runner, so tests substitute canned transcripts for the host system.
package runner

import (
	"context"
	"io"
	"os/exec"
	"strings"
)

// Runner runs one command to completion and hands back its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// Real forks the actual binary.
type Real struct{}

// Run executes the command. Stderr is discarded; it must not bleed
// into the full-screen TUI, and none of the parsers read it.
func (r *Real) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = io.Discard
	return cmd.Output()
}

// Mock answers every invocation with the same canned result, recording
// each command line it was asked to run.
type Mock struct {
	Output []byte
	Err    error
	Calls  []string
}

func (m *Mock) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, commandLine(name, args))
	return m.Output, m.Err
}

// MultiMock answers per command. Keys are the command as typed, e.g.
// "git -C /tmp/repo status --porcelain". A command with no entry gets
// empty output and no error.
type MultiMock struct {
	Responses map[string]Response
	Calls     []string
}

// Response is one canned result.
type Response struct {
	Output []byte
	Err    error
}

func (m *MultiMock) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := commandLine(name, args)
	m.Calls = append(m.Calls, key)
	resp := m.Responses[key]
	return resp.Output, resp.Err
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
