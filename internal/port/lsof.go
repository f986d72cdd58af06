package port

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lu-zhengda/devdash/internal/runner"
)

// LsofResolver resolves port owners on macOS by shelling out to lsof
// and parsing its columnar output.
type LsofResolver struct {
	Runner runner.Runner
}

// Resolve lists listening TCP sockets via lsof and picks the line
// bound to port. A zero Owner with nil error means nothing matched.
func (r *LsofResolver) Resolve(ctx context.Context, port int) (Owner, error) {
	out, err := r.Runner.Run(ctx, "lsof", "-iTCP", "-sTCP:LISTEN", "-P", "-n")
	if err != nil {
		return Owner{}, fmt.Errorf("%w: lsof: %v", ErrUnavailable, err)
	}
	return findLsofOwner(string(out), port), nil
}

// findLsofOwner scans lsof output for a listener on port. Lines after
// the header have fields: COMMAND PID USER FD TYPE DEVICE SIZE/OFF
// NODE NAME, with NAME like "*:8080" or "127.0.0.1:8080".
func findLsofOwner(output string, port int) Owner {
	lines := strings.Split(output, "\n")
	if len(lines) < 2 {
		return Owner{}
	}

	for _, line := range lines[1:] {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) < 9 {
			continue
		}

		if lsofNamePort(fields[8]) != port {
			continue
		}

		pid, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		return Owner{PID: pid, Name: fields[0]}
	}
	return Owner{}
}

// lsofNamePort extracts the local port from an lsof NAME field, or -1
// if the field has no parseable port (e.g. a "*" wildcard).
func lsofNamePort(name string) int {
	// Drop a trailing "(LISTEN)" style annotation if present.
	if idx := strings.LastIndex(name, "("); idx != -1 {
		name = strings.TrimSpace(name[:idx])
	}

	idx := strings.LastIndex(name, ":")
	if idx == -1 {
		return -1
	}
	port, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return -1
	}
	return port
}
