package port

import (
	"context"
	"net"
	"sort"
	"strconv"
	"time"
)

// DefaultProbeTimeout bounds each per-port connection attempt. Total
// scan latency is at worst candidates x timeout, which is fine at the
// intended cadence of one scan every tens of seconds.
const DefaultProbeTimeout = 50 * time.Millisecond

// Scanner probes candidate ports and annotates the bound ones with
// owner info where the platform backend can resolve it.
type Scanner struct {
	resolver OwnerResolver
	timeout  time.Duration
	host     string
}

// NewScanner creates a Scanner using the given owner-resolution
// backend. A non-positive timeout falls back to DefaultProbeTimeout.
func NewScanner(resolver OwnerResolver, timeout time.Duration) *Scanner {
	if resolver == nil {
		resolver = UnsupportedResolver{}
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &Scanner{
		resolver: resolver,
		timeout:  timeout,
		host:     "127.0.0.1",
	}
}

// Scan probes every candidate port sequentially and returns a Record
// for each one found bound, in ascending port order. Owner resolution
// failures never drop a record and never fail the scan.
func (s *Scanner) Scan(ctx context.Context, candidates []int) []Record {
	ports := make([]int, len(candidates))
	copy(ports, candidates)
	sort.Ints(ports)

	var records []Record
	for _, p := range ports {
		if ctx.Err() != nil {
			break
		}
		if !s.probe(p) {
			continue
		}

		rec := Record{Port: p, Observed: time.Now()}
		if owner, err := s.resolver.Resolve(ctx, p); err == nil {
			rec.PID = owner.PID
			rec.Process = owner.Name
		}
		records = append(records, rec)
	}
	return records
}

// probe reports whether something accepts connections on the port.
func (s *Scanner) probe(port int) bool {
	addr := net.JoinHostPort(s.host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, s.timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
