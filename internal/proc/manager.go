// Package proc starts and supervises dev-server processes: one OS
// process per project key, with both output streams captured into a
// bounded buffer that the dashboard reads on every render tick.
package proc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultGracePeriod is how long Stop waits after a graceful
// termination request before escalating to a forced kill.
const DefaultGracePeriod = 500 * time.Millisecond

// StderrPrefix tags captured stderr lines so both streams can share one
// buffer without losing their origin.
const StderrPrefix = "[stderr] "

// ErrEmptyCommand is returned (wrapped in a *SpawnError) when a run
// command tokenizes to nothing.
var ErrEmptyCommand = errors.New("empty command")

// SpawnError reports a failed start: empty command, missing binary,
// bad working directory, or permission denied. It is never fatal to
// the manager and no process is registered when it is returned.
type SpawnError struct {
	Key string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %q: %v", e.Key, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// terminator is the per-OS termination capability, selected once at
// construction via newTerminator.
type terminator interface {
	terminate(p *os.Process) error
	kill(p *os.Process) error
}

// Handle is the ownership record for one spawned process.
type Handle struct {
	Key       string
	PID       int
	Dir       string
	StartedAt time.Time
	Port      int // PORT env passed to the child, 0 if none

	cmd *exec.Cmd
	buf *Buffer

	// exited is closed once both capture loops have drained their
	// pipes and the process has been reaped.
	exited chan struct{}
}

func (h *Handle) done() bool {
	select {
	case <-h.exited:
		return true
	default:
		return false
	}
}

// Manager owns the key -> Handle registry. At most one live process
// exists per key. All state is in-memory and lost on exit.
type Manager struct {
	mu    sync.Mutex
	procs map[string]*Handle
	term  terminator
	grace time.Duration
}

// NewManager creates a Manager. A non-positive grace period falls back
// to DefaultGracePeriod.
func NewManager(grace time.Duration) *Manager {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	return &Manager{
		procs: make(map[string]*Handle),
		term:  newTerminator(),
		grace: grace,
	}
}

// Start spawns the command in dir and begins capturing its output.
// If key already has a live process this is a no-op: the first start
// wins and the running process is left untouched.
func (m *Manager) Start(key, dir, command string) error {
	return m.StartWithPort(key, dir, command, 0)
}

// StartWithPort is Start with PORT=<port> added to the child
// environment, for dev servers that honor it.
func (m *Manager) StartWithPort(key, dir, command string, port int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.procs[key]; ok {
		if !h.done() {
			return nil
		}
		delete(m.procs, key)
	}

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return &SpawnError{Key: key, Err: ErrEmptyCommand}
	}

	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Dir = dir
	// Lead a fresh process group so Stop can signal shell wrappers and
	// their children, not just the direct process.
	cmd.SysProcAttr = sysProcAttr()
	if port > 0 {
		cmd.Env = append(os.Environ(), "PORT="+strconv.Itoa(port))
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &SpawnError{Key: key, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &SpawnError{Key: key, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return &SpawnError{Key: key, Err: err}
	}

	h := &Handle{
		Key:       key,
		PID:       cmd.Process.Pid,
		Dir:       dir,
		StartedAt: time.Now(),
		Port:      port,
		cmd:       cmd,
		buf:       NewBuffer(DefaultBufferCap),
		exited:    make(chan struct{}),
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go capture(stdout, h.buf, "", &wg)
	go capture(stderr, h.buf, StderrPrefix, &wg)

	// Wait must not run before the capture loops have drained the
	// pipes, or it would close them mid-read.
	go func() {
		wg.Wait()
		_ = cmd.Wait()
		close(h.exited)
	}()

	m.procs[key] = h
	return nil
}

// capture reads one stream line by line into the shared buffer until
// the pipe closes, which happens when the process exits or is killed.
func capture(r io.Reader, buf *Buffer, prefix string, wg *sync.WaitGroup) {
	defer wg.Done()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		buf.Append(prefix + sc.Text())
	}
}

// Stop terminates the process for key and removes it from the registry.
// It sends a graceful termination request to the process group, waits
// up to the grace period, force-kills the group if needed, and returns
// only once the process has been reaped and both capture loops have
// finished. Unknown keys are a no-op.
func (m *Manager) Stop(key string) {
	m.mu.Lock()
	h, ok := m.procs[key]
	if ok {
		delete(m.procs, key)
	}
	m.mu.Unlock()

	if !ok {
		return
	}
	if h.done() {
		return
	}

	_ = m.term.terminate(h.cmd.Process)

	select {
	case <-h.exited:
	case <-time.After(m.grace):
		_ = m.term.kill(h.cmd.Process)
		<-h.exited
	}
}

// StopAll stops every managed process. Called at dashboard shutdown.
func (m *Manager) StopAll() {
	for _, key := range m.RunningKeys() {
		m.Stop(key)
	}
}

// IsRunning reports whether key has a live process. Processes that have
// exited on their own are reaped here and their entries dropped.
func (m *Manager) IsRunning(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.procs[key]
	if !ok {
		return false
	}
	if h.done() {
		delete(m.procs, key)
		return false
	}
	return true
}

// Output returns a snapshot of the captured output for key, or nil if
// the key is unknown. It never blocks behind an in-progress capture
// write beyond the buffer lock.
func (m *Manager) Output(key string) []string {
	m.mu.Lock()
	h, ok := m.procs[key]
	m.mu.Unlock()

	if !ok {
		return nil
	}
	return h.buf.Snapshot()
}

// TailOutput returns the lines appended for key since cursor, the
// cursor to pass next time, and whether the process is still live.
// Once the process is done the returned tail is complete, since exited
// closes only after both pipes hit EOF, and the entry is dropped.
func (m *Manager) TailOutput(key string, cursor int) ([]string, int, bool) {
	m.mu.Lock()
	h, ok := m.procs[key]
	m.mu.Unlock()

	if !ok {
		return nil, cursor, false
	}

	lines, next := h.buf.TailSince(cursor)
	if h.done() {
		m.mu.Lock()
		if cur, ok := m.procs[key]; ok && cur == h {
			delete(m.procs, key)
		}
		m.mu.Unlock()
		return lines, next, false
	}
	return lines, next, true
}

// Port returns the PORT assigned at start, or 0.
func (m *Manager) Port(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.procs[key]; ok {
		return h.Port
	}
	return 0
}

// PID returns the process id for key, or 0 if not running.
func (m *Manager) PID(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.procs[key]; ok && !h.done() {
		return h.PID
	}
	return 0
}

// RunningKeys returns the keys with live processes, sorted, after
// reaping any that have silently exited.
func (m *Manager) RunningKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.procs))
	for key, h := range m.procs {
		if h.done() {
			delete(m.procs, key)
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
