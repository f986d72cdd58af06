// Package detect guesses how to run a project from the files in its
// checkout: lockfiles pick the JS package manager, well-known project
// files pick the toolchain for everything else.
package detect

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ProjectType classifies a checkout by toolchain.
type ProjectType string

const (
	JavaScript ProjectType = "javascript"
	Rust       ProjectType = "rust"
	Go         ProjectType = "go"
	Python     ProjectType = "python"
	Unknown    ProjectType = "unknown"
)

// Detection is the outcome for one directory. RunCommand is empty when
// no runnable entry point was found.
type Detection struct {
	PackageManager string
	RunCommand     string
	Type           ProjectType
}

// scriptPreference is the order in which package.json scripts are
// considered for the run command.
var scriptPreference = []string{"dev", "start", "serve", "watch"}

// Detect inspects dir and returns the detected project type, package
// manager, and run command.
func Detect(dir string) (Detection, error) {
	if exists(filepath.Join(dir, "package.json")) {
		return detectJS(dir)
	}

	if exists(filepath.Join(dir, "Cargo.toml")) {
		return Detection{PackageManager: "cargo", RunCommand: "cargo run", Type: Rust}, nil
	}
	if exists(filepath.Join(dir, "go.mod")) {
		return Detection{PackageManager: "go", RunCommand: "go run .", Type: Go}, nil
	}
	if exists(filepath.Join(dir, "manage.py")) {
		return Detection{PackageManager: "python", RunCommand: "python manage.py runserver", Type: Python}, nil
	}
	if exists(filepath.Join(dir, "main.py")) {
		return Detection{PackageManager: "python", RunCommand: "python main.py", Type: Python}, nil
	}

	return Detection{Type: Unknown}, nil
}

// detectJS picks the package manager from the lockfile and the run
// command from package.json scripts.
func detectJS(dir string) (Detection, error) {
	pm := "npm"
	switch {
	case exists(filepath.Join(dir, "pnpm-lock.yaml")):
		pm = "pnpm"
	case exists(filepath.Join(dir, "yarn.lock")):
		pm = "yarn"
	case exists(filepath.Join(dir, "bun.lockb")):
		pm = "bun"
	}

	det := Detection{PackageManager: pm, Type: JavaScript}

	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return Detection{}, fmt.Errorf("failed to read package.json: %w", err)
	}

	var pkg struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return Detection{}, fmt.Errorf("failed to parse package.json: %w", err)
	}

	for _, script := range scriptPreference {
		if _, ok := pkg.Scripts[script]; ok {
			det.RunCommand = pm + " run " + script
			break
		}
	}
	return det, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
