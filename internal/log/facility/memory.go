package facility

import (
	"sync"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/display"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/format"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

// MemoryWriter keeps the most recent rendered lines in a ring buffer.
// It backs the administrative tail endpoint and the history replayed
// to new SSE subscribers.
type MemoryWriter struct {
	mu    sync.RWMutex
	lines []string
	head  int
	count int
}

// NewMemoryWriter returns a writer retaining the last size lines.
func NewMemoryWriter(size int) *MemoryWriter {
	return &MemoryWriter{lines: make([]string, size)}
}

// Write stores the requested view, overwriting the oldest line when
// the ring is full.
func (w *MemoryWriter) Write(verb format.Verbosity, l level.Level, b *display.Buffer, v Views) error {
	var start int
	switch verb {
	case format.VerbNone:
		start = v.MsgStart
	case format.VerbComponent:
		start = v.CompStart
	default:
		start = 0
	}
	line := string(b.Bytes()[start:])

	w.mu.Lock()
	w.lines[w.head] = line
	w.head = (w.head + 1) % len(w.lines)
	if w.count < len(w.lines) {
		w.count++
	}
	w.mu.Unlock()
	return nil
}

// Lines returns the retained lines in chronological order.
func (w *MemoryWriter) Lines() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.count == 0 {
		return nil
	}
	out := make([]string, 0, w.count)
	if w.count < len(w.lines) {
		out = append(out, w.lines[:w.count]...)
	} else {
		out = append(out, w.lines[w.head:]...)
		out = append(out, w.lines[:w.head]...)
	}
	return out
}

// Count returns the number of retained lines.
func (w *MemoryWriter) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.count
}
