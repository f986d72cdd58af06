package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "devdash.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_AddListDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.AddProject(ctx, "webapp", "https://github.com/user/webapp")
	if err != nil {
		t.Fatalf("unexpected add error: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	projects, err := s.ListProjects(ctx)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if projects[0].Name != "webapp" {
		t.Errorf("name: got %q, want %q", projects[0].Name, "webapp")
	}

	if err := s.DeleteProject(ctx, id); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	projects, err = s.ListProjects(ctx)
	if err != nil {
		t.Fatalf("unexpected list error: %v", err)
	}
	if len(projects) != 0 {
		t.Errorf("expected no projects after delete, got %d", len(projects))
	}
}

func TestStore_DuplicateNameRejected(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := s.AddProject(ctx, "webapp", "url-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.AddProject(ctx, "webapp", "url-b"); err == nil {
		t.Fatal("expected unique constraint violation for duplicate name")
	}
}

func TestStore_ListOrderedByName(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := s.AddProject(ctx, name, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	projects, err := s.ListProjects(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(projects) != len(want) {
		t.Fatalf("expected %d projects, got %d", len(want), len(projects))
	}
	for i := range want {
		if projects[i].Name != want[i] {
			t.Errorf("project %d: got %q, want %q", i, projects[i].Name, want[i])
		}
	}
}

func TestStore_ProjectByName(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := s.AddProject(ctx, "webapp", "url"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := s.ProjectByName(ctx, "webapp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil || p.Name != "webapp" {
		t.Fatalf("expected webapp, got %+v", p)
	}

	missing, err := s.ProjectByName(ctx, "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown project, got %+v", missing)
	}
}

func TestStore_Locations(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.AddProject(ctx, "webapp", "url")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.SetLocation(ctx, id, "laptop-abc", "/home/user/webapp"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loc, err := s.Location(ctx, id, "laptop-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc == nil {
		t.Fatal("expected a location")
	}
	if loc.Path != "/home/user/webapp" {
		t.Errorf("path: got %q, want %q", loc.Path, "/home/user/webapp")
	}
	if loc.RunCommand != "" {
		t.Errorf("run command: got %q, want empty", loc.RunCommand)
	}

	if err := s.SetRunCommand(ctx, id, "laptop-abc", "npm run dev"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loc, err = s.Location(ctx, id, "laptop-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.RunCommand != "npm run dev" {
		t.Errorf("run command: got %q, want %q", loc.RunCommand, "npm run dev")
	}

	// Unknown machine yields nil, not an error.
	other, err := s.Location(ctx, id, "desktop-xyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other != nil {
		t.Errorf("expected nil location for unknown machine, got %+v", other)
	}
}

func TestStore_SetLocationReplaces(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.AddProject(ctx, "webapp", "url")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.SetLocation(ctx, id, "laptop-abc", "/old/path"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetLocation(ctx, id, "laptop-abc", "/new/path"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	locs, err := s.Locations(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locs) != 1 {
		t.Fatalf("expected 1 location after replace, got %d", len(locs))
	}
	if locs[0].Path != "/new/path" {
		t.Errorf("path: got %q, want %q", locs[0].Path, "/new/path")
	}
}

func TestStore_DeleteCascadesLocations(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.AddProject(ctx, "webapp", "url")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetLocation(ctx, id, "laptop-abc", "/home/user/webapp"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.DeleteProject(ctx, id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	locs, err := s.Locations(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(locs) != 0 {
		t.Errorf("expected locations to cascade on delete, got %v", locs)
	}
}

func TestEnsureMachineID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "machine_id")

	id, err := EnsureMachineID(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected a non-empty machine id")
	}

	// Second call returns the persisted id.
	again, err := EnsureMachineID(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != id {
		t.Errorf("machine id not stable: got %q, then %q", id, again)
	}
}
