// Package discover finds importable git checkouts in the directories
// developers usually keep them in.
package discover

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lu-zhengda/devdash/internal/runner"
)

// Repo is a git checkout found during a scan.
type Repo struct {
	Path      string
	Name      string
	RemoteURL string // empty when the repo has no origin remote
}

// searchDirs lists the home-relative directories scanned by Scan.
var searchDirs = []string{
	"projects",
	"Projects",
	"dev",
	"Dev",
	"code",
	"Code",
	"src",
	filepath.Join("Documents", "Projects"),
	filepath.Join("Documents", "projects"),
}

// Scan walks the common project directories under the home directory
// and returns every git repo found, deduplicated by path.
func Scan(ctx context.Context, r runner.Runner) []Repo {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	var results []Repo
	for _, dir := range searchDirs {
		repos, err := ScanDir(ctx, r, filepath.Join(home, dir))
		if err != nil {
			continue
		}
		results = append(results, repos...)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	deduped := results[:0]
	for i, repo := range results {
		if i > 0 && repo.Path == results[i-1].Path {
			continue
		}
		deduped = append(deduped, repo)
	}
	return deduped
}

// ScanDir returns the git repos that are direct children of dir.
// Hidden directories are skipped.
func ScanDir(ctx context.Context, r runner.Runner, dir string) ([]Repo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var repos []Repo
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(path, ".git")); err != nil {
			continue
		}

		repos = append(repos, Repo{
			Path:      path,
			Name:      entry.Name(),
			RemoteURL: originURL(ctx, r, path),
		})
	}
	return repos, nil
}

// originURL asks git for the origin remote, or "" if there is none.
func originURL(ctx context.Context, r runner.Runner, path string) string {
	out, err := r.Run(ctx, "git", "-C", path, "remote", "get-url", "origin")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
