package gitstat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lu-zhengda/devdash/internal/runner"
)

func TestParsePorcelain(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		staged    int
		modified  int
		untracked int
	}{
		{"empty", "", 0, 0, 0},
		{"staged add", "A  new.go\n", 1, 0, 0},
		{"worktree modified", " M main.go\n", 0, 1, 0},
		{"staged and modified", "MM main.go\n", 1, 1, 0},
		{"untracked", "?? scratch.txt\n", 0, 0, 1},
		{"worktree deleted", " D gone.go\n", 0, 1, 0},
		{
			"mixed",
			"A  new.go\n M main.go\nMM both.go\n?? one.txt\n?? two.txt\n",
			2, 2, 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staged, modified, untracked := parsePorcelain(tt.input)
			if staged != tt.staged {
				t.Errorf("staged: got %d, want %d", staged, tt.staged)
			}
			if modified != tt.modified {
				t.Errorf("modified: got %d, want %d", modified, tt.modified)
			}
			if untracked != tt.untracked {
				t.Errorf("untracked: got %d, want %d", untracked, tt.untracked)
			}
		})
	}
}

func TestParseLeftRight(t *testing.T) {
	tests := []struct {
		input string
		left  int
		right int
	}{
		{"2\t3\n", 2, 3},
		{"0\t0\n", 0, 0},
		{"garbage", 0, 0},
		{"", 0, 0},
	}

	for _, tt := range tests {
		left, right := parseLeftRight(tt.input)
		if left != tt.left || right != tt.right {
			t.Errorf("%q: got (%d, %d), want (%d, %d)", tt.input, left, right, tt.left, tt.right)
		}
	}
}

func TestGet(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	r := &runner.MultiMock{Responses: map[string]runner.Response{
		"git -C " + dir + " branch --show-current": {Output: []byte("main\n")},
		"git -C " + dir + " status --porcelain":    {Output: []byte("A  new.go\n?? x.txt\n")},
		"git -C " + dir + " rev-list --left-right --count @{u}...HEAD": {
			Output: []byte("1\t4\n"),
		},
	}}

	status, err := Get(context.Background(), r, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Branch != "main" {
		t.Errorf("branch: got %q, want main", status.Branch)
	}
	if status.Staged != 1 || status.Untracked != 1 {
		t.Errorf("counts: got %+v", status)
	}
	if status.Behind != 1 || status.Ahead != 4 {
		t.Errorf("ahead/behind: got ahead=%d behind=%d, want 4/1", status.Ahead, status.Behind)
	}
	if !status.Dirty() {
		t.Error("expected dirty tree")
	}
}

func TestGet_DetachedHead(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	// Empty branch output means detached HEAD.
	r := &runner.MultiMock{Responses: map[string]runner.Response{
		"git -C " + dir + " branch --show-current": {Output: []byte("\n")},
	}}

	status, err := Get(context.Background(), r, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Branch != "HEAD" {
		t.Errorf("branch: got %q, want HEAD", status.Branch)
	}
	if status.Dirty() {
		t.Error("expected clean tree")
	}
}

func TestGet_NotARepo(t *testing.T) {
	if _, err := Get(context.Background(), &runner.Mock{}, t.TempDir()); err == nil {
		t.Fatal("expected error for non-repo directory")
	}
}

func TestSummary(t *testing.T) {
	s := &Status{Branch: "main", Staged: 2, Modified: 1, Untracked: 3, Ahead: 1}
	if got := s.Summary(); got != "main +2 ~1 ?3 ↑1" {
		t.Errorf("summary: got %q", got)
	}

	clean := &Status{Branch: "main"}
	if got := clean.Summary(); got != "main" {
		t.Errorf("clean summary: got %q", got)
	}
}
