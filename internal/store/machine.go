package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureMachineID reads the machine id from path, creating and
// persisting one on first run. The id is hostname-prefixed with a
// random suffix so two machines with the same hostname stay distinct.
func EnsureMachineID(path string) (string, error) {
	if data, err := os.ReadFile(path); err == nil {
		id := strings.TrimSpace(string(data))
		if id != "" {
			return id, nil
		}
	}

	id, err := newMachineID()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create machine id directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("failed to write machine id: %w", err)
	}
	return id, nil
}

// DefaultMachineIDPath returns the default machine id file location,
// next to the database.
func DefaultMachineIDPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "devdash", "machine_id")
}

func newMachineID() (string, error) {
	host, err := os.Hostname()
	if err != nil {
		host = "machine"
	}

	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate machine id: %w", err)
	}
	return host + "-" + hex.EncodeToString(buf), nil
}
