package port

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lu-zhengda/devdash/internal/runner"
)

// NetstatResolver resolves port owners on Windows via netstat -ano.
// netstat reports the owning pid but not the process name, so Name is
// always empty.
type NetstatResolver struct {
	Runner runner.Runner
}

// Resolve scans netstat output for a LISTENING socket on port.
func (r *NetstatResolver) Resolve(ctx context.Context, port int) (Owner, error) {
	out, err := r.Runner.Run(ctx, "netstat", "-ano")
	if err != nil {
		return Owner{}, fmt.Errorf("%w: netstat: %v", ErrUnavailable, err)
	}
	return findNetstatOwner(string(out), port), nil
}

// findNetstatOwner parses netstat -ano output. Listening lines look
// like: "TCP  0.0.0.0:3000  0.0.0.0:0  LISTENING  1234".
func findNetstatOwner(output string, port int) Owner {
	suffix := ":" + strconv.Itoa(port)

	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "LISTENING") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		if !strings.HasSuffix(fields[1], suffix) {
			continue
		}

		pid, err := strconv.Atoi(fields[4])
		if err != nil || pid <= 0 {
			continue
		}
		return Owner{PID: pid}
	}
	return Owner{}
}
