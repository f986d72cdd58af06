// Package gitstat summarizes a checkout's git state for display:
// branch, working-tree counts, and ahead/behind against upstream.
package gitstat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lu-zhengda/devdash/internal/runner"
)

// Status is the summary for one checkout.
type Status struct {
	Branch    string
	Staged    int
	Modified  int
	Untracked int
	Ahead     int
	Behind    int
}

// Dirty reports whether the working tree has uncommitted changes.
func (s *Status) Dirty() bool {
	return s.Staged > 0 || s.Modified > 0 || s.Untracked > 0
}

// Summary renders a compact one-line form for the dashboard, e.g.
// "main +2 ~1 ?3 ↑1".
func (s *Status) Summary() string {
	parts := []string{s.Branch}
	if s.Staged > 0 {
		parts = append(parts, fmt.Sprintf("+%d", s.Staged))
	}
	if s.Modified > 0 {
		parts = append(parts, fmt.Sprintf("~%d", s.Modified))
	}
	if s.Untracked > 0 {
		parts = append(parts, fmt.Sprintf("?%d", s.Untracked))
	}
	if s.Ahead > 0 {
		parts = append(parts, fmt.Sprintf("↑%d", s.Ahead))
	}
	if s.Behind > 0 {
		parts = append(parts, fmt.Sprintf("↓%d", s.Behind))
	}
	return strings.Join(parts, " ")
}

// Get computes the status for the checkout at dir.
func Get(ctx context.Context, r runner.Runner, dir string) (*Status, error) {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return nil, fmt.Errorf("not a git repository: %s", dir)
	}

	status := &Status{}

	out, err := r.Run(ctx, "git", "-C", dir, "branch", "--show-current")
	if err != nil {
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	status.Branch = strings.TrimSpace(string(out))
	if status.Branch == "" {
		status.Branch = "HEAD"
	}

	out, err = r.Run(ctx, "git", "-C", dir, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	status.Staged, status.Modified, status.Untracked = parsePorcelain(string(out))

	// Ahead/behind needs an upstream; failure just leaves the counts
	// at zero.
	out, err = r.Run(ctx, "git", "-C", dir, "rev-list", "--left-right", "--count", "@{u}...HEAD")
	if err == nil {
		status.Behind, status.Ahead = parseLeftRight(string(out))
	}

	return status, nil
}

// parsePorcelain counts entries in git status --porcelain output. The
// first column is the index state, the second the worktree state.
func parsePorcelain(out string) (staged, modified, untracked int) {
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 2 {
			continue
		}
		index := line[0]
		worktree := line[1]

		if index != ' ' && index != '?' {
			staged++
		}
		if worktree == 'M' || worktree == 'D' {
			modified++
		}
		if index == '?' {
			untracked++
		}
	}
	return staged, modified, untracked
}

// parseLeftRight parses "N M" from rev-list --left-right --count.
func parseLeftRight(out string) (left, right int) {
	parts := strings.Fields(out)
	if len(parts) != 2 {
		return 0, 0
	}
	fmt.Sscanf(parts[0], "%d", &left)
	fmt.Sscanf(parts[1], "%d", &right)
	return left, right
}
