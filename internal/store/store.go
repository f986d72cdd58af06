// Package store persists the project list in a local SQLite database.
// Projects are machine-independent; each machine records its own
// checkout location and run command against a project.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Project is a tracked project. Name is unique (case-sensitive at the
// schema level) and doubles as the process-registry key, so it must
// stay stable regardless of how the list is displayed or sorted.
type Project struct {
	ID      int64
	Name    string
	RepoURL string
}

// Location is one machine's checkout of a project. RunCommand is empty
// when none has been configured.
type Location struct {
	ID         int64
	ProjectID  int64
	MachineID  string
	Path       string
	RunCommand string
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// migrations run in order on every open; each statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id INTEGER PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		repo_url TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS machine_locations (
		id INTEGER PRIMARY KEY,
		project_id INTEGER REFERENCES projects(id) ON DELETE CASCADE,
		machine_id TEXT NOT NULL,
		path TEXT NOT NULL,
		run_command TEXT,
		UNIQUE(project_id, machine_id)
	)`,
}

// Open opens (creating if needed) the database at path and applies the
// schema. Parent directories are created as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection so the per-connection pragmas below apply to
	// every statement.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure database: %w", err)
		}
	}

	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DefaultPath returns the default database location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "devdash", "devdash.db")
}

// AddProject inserts a project and returns its id. Duplicate names are
// rejected by the UNIQUE constraint.
func (s *Store) AddProject(ctx context.Context, name, repoURL string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (name, repo_url) VALUES (?, ?)", name, repoURL)
	if err != nil {
		return 0, fmt.Errorf("failed to add project %q: %w", name, err)
	}
	return res.LastInsertId()
}

// DeleteProject removes a project; its machine locations cascade.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete project %d: %w", id, err)
	}
	return nil
}

// ListProjects returns all projects ordered by name.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, repo_url FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.RepoURL); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ProjectByName looks a project up by its name. Returns nil when not
// found.
func (s *Store) ProjectByName(ctx context.Context, name string) (*Project, error) {
	var p Project
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, repo_url FROM projects WHERE name = ?", name).
		Scan(&p.ID, &p.Name, &p.RepoURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up project %q: %w", name, err)
	}
	return &p, nil
}

// SetLocation records (or replaces) this machine's checkout path for a
// project.
func (s *Store) SetLocation(ctx context.Context, projectID int64, machineID, path string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO machine_locations (project_id, machine_id, path)
		 VALUES (?, ?, ?)`, projectID, machineID, path)
	if err != nil {
		return fmt.Errorf("failed to set location: %w", err)
	}
	return nil
}

// SetRunCommand updates the run command for a project on one machine.
// An empty command clears it.
func (s *Store) SetRunCommand(ctx context.Context, projectID int64, machineID, cmd string) error {
	var value any
	if cmd != "" {
		value = cmd
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE machine_locations SET run_command = ?
		 WHERE project_id = ? AND machine_id = ?`, value, projectID, machineID)
	if err != nil {
		return fmt.Errorf("failed to set run command: %w", err)
	}
	return nil
}

// Location returns this machine's checkout of a project, or nil if the
// project has never been placed on this machine.
func (s *Store) Location(ctx context.Context, projectID int64, machineID string) (*Location, error) {
	var loc Location
	var runCmd sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, machine_id, path, run_command
		 FROM machine_locations WHERE project_id = ? AND machine_id = ?`,
		projectID, machineID).
		Scan(&loc.ID, &loc.ProjectID, &loc.MachineID, &loc.Path, &runCmd)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}
	loc.RunCommand = runCmd.String
	return &loc, nil
}

// Locations returns every machine's checkout of a project.
func (s *Store) Locations(ctx context.Context, projectID int64) ([]Location, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, machine_id, path, run_command
		 FROM machine_locations WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locs []Location
	for rows.Next() {
		var loc Location
		var runCmd sql.NullString
		if err := rows.Scan(&loc.ID, &loc.ProjectID, &loc.MachineID, &loc.Path, &runCmd); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		loc.RunCommand = runCmd.String
		locs = append(locs, loc)
	}
	return locs, rows.Err()
}
