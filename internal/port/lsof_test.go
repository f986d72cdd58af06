package port

import (
	"context"
	"testing"

	"github.com/lu-zhengda/devdash/internal/runner"
)

const sampleLsof = `COMMAND     PID      USER   FD   TYPE             DEVICE SIZE/OFF NODE NAME
nginx      1234      root    6u  IPv4 0x1234567890      0t0  TCP *:80 (LISTEN)
node       5678   zhengda    8u  IPv6 0x1234567892      0t0  TCP *:3000 (LISTEN)
postgres   9012 _postgres    9u  IPv4 0x1234567893      0t0  TCP 127.0.0.1:5432 (LISTEN)
`

func TestFindLsofOwner(t *testing.T) {
	tests := []struct {
		name     string
		port     int
		wantPID  int
		wantName string
	}{
		{"wildcard bind", 3000, 5678, "node"},
		{"localhost bind", 5432, 9012, "postgres"},
		{"first column match", 80, 1234, "nginx"},
		{"no listener", 9999, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := findLsofOwner(sampleLsof, tt.port)
			if owner.PID != tt.wantPID {
				t.Errorf("pid: got %d, want %d", owner.PID, tt.wantPID)
			}
			if owner.Name != tt.wantName {
				t.Errorf("name: got %q, want %q", owner.Name, tt.wantName)
			}
		})
	}
}

func TestFindLsofOwner_EmptyAndHeaderOnly(t *testing.T) {
	if owner := findLsofOwner("", 80); owner != (Owner{}) {
		t.Errorf("expected zero owner for empty input, got %+v", owner)
	}
	headerOnly := "COMMAND     PID      USER   FD   TYPE             DEVICE SIZE/OFF NODE NAME\n"
	if owner := findLsofOwner(headerOnly, 80); owner != (Owner{}) {
		t.Errorf("expected zero owner for header-only input, got %+v", owner)
	}
}

func TestLsofNamePort(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"wildcard", "*:8080", 8080},
		{"localhost", "127.0.0.1:3000", 3000},
		{"with state", "*:443 (LISTEN)", 443},
		{"star port", "*:*", -1},
		{"no colon", "garbage", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lsofNamePort(tt.input); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLsofResolver_Resolve(t *testing.T) {
	r := &LsofResolver{Runner: &runner.Mock{Output: []byte(sampleLsof)}}

	owner, err := r.Resolve(context.Background(), 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owner.PID != 5678 || owner.Name != "node" {
		t.Errorf("got %+v, want PID 5678 name node", owner)
	}
}

func TestLsofResolver_ToolMissing(t *testing.T) {
	r := &LsofResolver{Runner: &runner.Mock{Err: context.DeadlineExceeded}}

	_, err := r.Resolve(context.Background(), 3000)
	if err == nil {
		t.Fatal("expected error when lsof fails")
	}
}
