//go:build !windows

package proc

import (
	"os"
	"syscall"
)

// posixTerminator signals the child's process group: SIGTERM to request
// a graceful shutdown, SIGKILL to force it. Children are spawned as
// group leaders (see sysProcAttr), so the negative pgid reaches the
// whole tree. Descendants hold the output pipes; if a signal missed
// them the pipes would never close and Stop would block past its grace
// period.
type posixTerminator struct{}

func newTerminator() terminator {
	return posixTerminator{}
}

func (posixTerminator) terminate(p *os.Process) error {
	if err := syscall.Kill(-p.Pid, syscall.SIGTERM); err == nil {
		return nil
	}
	return p.Signal(syscall.SIGTERM)
}

func (posixTerminator) kill(p *os.Process) error {
	if err := syscall.Kill(-p.Pid, syscall.SIGKILL); err == nil {
		return nil
	}
	return p.Kill()
}

// sysProcAttr makes the spawned command a process-group leader, so the
// terminator can signal the command and its descendants in one call.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
