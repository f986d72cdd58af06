//go:build windows

package proc

import (
	"os"
	"syscall"
)

// windowsTerminator has no graceful signal to send; both phases use
// TerminateProcess via Process.Kill.
type windowsTerminator struct{}

func newTerminator() terminator {
	return windowsTerminator{}
}

func (windowsTerminator) terminate(p *os.Process) error {
	return p.Kill()
}

func (windowsTerminator) kill(p *os.Process) error {
	return p.Kill()
}

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
