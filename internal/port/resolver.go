// Package port checks which of a fixed set of candidate ports are
// bound and resolves which process owns each one. Liveness uses a
// plain connect probe because it works the same everywhere; only owner
// resolution is platform-specific.
package port

import (
	"context"
	"errors"

	"github.com/lu-zhengda/devdash/internal/runner"
)

// ErrUnavailable means no owner-resolution backend exists for this
// platform, or the backend's tool is missing. Scans still report the
// bare port when resolution fails.
var ErrUnavailable = errors.New("port owner resolution unavailable")

// Owner identifies the process bound to a port.
type Owner struct {
	PID  int
	Name string
}

// OwnerResolver resolves which process owns a listening port.
type OwnerResolver interface {
	Resolve(ctx context.Context, port int) (Owner, error)
}

// ResolverFor picks the owner-resolution backend for the given GOOS.
// Call it once at startup with runtime.GOOS.
func ResolverFor(goos string, r runner.Runner) OwnerResolver {
	switch goos {
	case "linux":
		return &ProcTableResolver{Root: "/proc"}
	case "darwin":
		return &LsofResolver{Runner: r}
	case "windows":
		return &NetstatResolver{Runner: r}
	default:
		return UnsupportedResolver{}
	}
}

// UnsupportedResolver is the fallback for platforms without a backend.
type UnsupportedResolver struct{}

// Resolve always reports the owner as unresolvable.
func (UnsupportedResolver) Resolve(_ context.Context, _ int) (Owner, error) {
	return Owner{}, ErrUnavailable
}
