package port

import (
	"fmt"
	"time"
)

// Record is the result of one scan for one currently-bound candidate
// port. PID 0 and an empty Process mean the owner could not be
// resolved; the port is still reported.
type Record struct {
	Port     int
	PID      int
	Process  string
	Observed time.Time
}

// OwnerKnown reports whether owner resolution succeeded for this port.
func (r Record) OwnerKnown() bool {
	return r.PID > 0
}

// String returns a human-readable representation of the record.
func (r Record) String() string {
	if !r.OwnerKnown() {
		return fmt.Sprintf("%d (owner unknown)", r.Port)
	}
	if r.Process == "" {
		return fmt.Sprintf("%d (PID %d)", r.Port, r.PID)
	}
	return fmt.Sprintf("%d (PID %d, %s)", r.Port, r.PID, r.Process)
}
