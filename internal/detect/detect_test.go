package detect

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestDetect_JSWithPnpm(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"pnpm-lock.yaml": "",
		"package.json":   `{"scripts": {"dev": "vite"}}`,
	})

	det, err := Detect(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if det.PackageManager != "pnpm" {
		t.Errorf("package manager: got %q, want pnpm", det.PackageManager)
	}
	if det.RunCommand != "pnpm run dev" {
		t.Errorf("run command: got %q, want %q", det.RunCommand, "pnpm run dev")
	}
	if det.Type != JavaScript {
		t.Errorf("type: got %q, want %q", det.Type, JavaScript)
	}
}

func TestDetect_JSScriptPreference(t *testing.T) {
	// No dev script, so start wins over serve and watch.
	dir := writeFiles(t, map[string]string{
		"yarn.lock":    "",
		"package.json": `{"scripts": {"watch": "w", "serve": "s", "start": "node ."}}`,
	})

	det, err := Detect(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if det.RunCommand != "yarn run start" {
		t.Errorf("run command: got %q, want %q", det.RunCommand, "yarn run start")
	}
}

func TestDetect_JSNoScripts(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"package.json": `{"name": "thing"}`,
	})

	det, err := Detect(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if det.PackageManager != "npm" {
		t.Errorf("package manager: got %q, want npm", det.PackageManager)
	}
	if det.RunCommand != "" {
		t.Errorf("run command: got %q, want empty", det.RunCommand)
	}
}

func TestDetect_JSBadPackageJSON(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"package.json": "{not json",
	})

	if _, err := Detect(dir); err == nil {
		t.Fatal("expected error for malformed package.json")
	}
}

func TestDetect_Rust(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"Cargo.toml": "[package]\nname = \"test\"",
	})

	det, err := Detect(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if det.RunCommand != "cargo run" || det.Type != Rust {
		t.Errorf("got %+v, want cargo run / rust", det)
	}
}

func TestDetect_Go(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"go.mod": "module example.com/test\n",
	})

	det, err := Detect(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if det.RunCommand != "go run ." || det.Type != Go {
		t.Errorf("got %+v, want go run . / go", det)
	}
}

func TestDetect_Django(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"manage.py": "",
		"main.py":   "",
	})

	det, err := Detect(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// manage.py takes precedence over main.py.
	if det.RunCommand != "python manage.py runserver" {
		t.Errorf("run command: got %q, want runserver", det.RunCommand)
	}
}

func TestDetect_Unknown(t *testing.T) {
	det, err := Detect(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if det.Type != Unknown {
		t.Errorf("type: got %q, want %q", det.Type, Unknown)
	}
	if det.RunCommand != "" || det.PackageManager != "" {
		t.Errorf("expected empty detection, got %+v", det)
	}
}
