package proc

import "sync"

// DefaultBufferCap is the number of output lines retained per process.
const DefaultBufferCap = 1000

// Buffer is a bounded, ordered store of output lines shared between the
// two capture goroutines (writers) and the manager (reader). When full,
// the oldest line is evicted before a new one is appended, so the
// retained lines always keep their original relative order.
type Buffer struct {
	mu    sync.Mutex
	lines []string
	max   int
	total int // every line ever appended, including evicted ones
}

// NewBuffer creates a Buffer holding at most max lines. A non-positive
// max falls back to DefaultBufferCap.
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = DefaultBufferCap
	}
	return &Buffer{max: max}
}

// Append adds a line, evicting the oldest line if the buffer is full.
func (b *Buffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total++
	if len(b.lines) == b.max {
		copy(b.lines, b.lines[1:])
		b.lines[len(b.lines)-1] = line
		return
	}
	b.lines = append(b.lines, line)
}

// TailSince returns the lines appended after cursor and the cursor to
// pass on the next call. Cursors count every line ever appended, so a
// reader that falls behind skips the evicted lines instead of
// re-reading or missing retained ones. A zero cursor starts from the
// oldest retained line.
func (b *Buffer) TailSince(cursor int) ([]string, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	oldest := b.total - len(b.lines)
	if cursor < oldest {
		cursor = oldest
	}
	if cursor > b.total {
		cursor = b.total
	}

	out := make([]string, b.total-cursor)
	copy(out, b.lines[len(b.lines)-(b.total-cursor):])
	return out, b.total
}

// Snapshot returns an independent copy of the current contents. A line
// appended concurrently either appears in the snapshot or not, never
// partially.
func (b *Buffer) Snapshot() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len returns the current number of retained lines.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}
