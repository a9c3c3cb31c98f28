package facility

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/display"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/format"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

// StreamWriter appends log lines to a byte stream, normally one of the
// two standard streams. Writes are serialized so lines from concurrent
// logging threads never interleave.
type StreamWriter struct {
	mu   sync.Mutex
	dst  io.Writer
	name string
}

// NewStreamWriter wraps dst. name is reported as the destination and
// is "stdout" or "stderr" for the standard streams.
func NewStreamWriter(dst io.Writer, name string) *StreamWriter {
	return &StreamWriter{dst: dst, name: name}
}

func (w *StreamWriter) target() string { return w.name }

// SetTarget re-points the writer to one of the two standard streams.
func (w *StreamWriter) SetTarget(dest string) error {
	var dst io.Writer
	switch {
	case strings.EqualFold(dest, "stdout"):
		dst = os.Stdout
	case strings.EqualFold(dest, "stderr"):
		dst = os.Stderr
	default:
		return fmt.Errorf("%w: expected stdout or stderr, not %q", ErrInvalid, dest)
	}
	w.mu.Lock()
	w.dst = dst
	w.name = strings.ToLower(dest)
	w.mu.Unlock()
	return nil
}

// Write emits the requested view with a trailing newline in a single
// write, then restores the buffer's un-terminated state.
func (w *StreamWriter) Write(verb format.Verbosity, l level.Level, b *display.Buffer, v Views) error {
	b.AppendNewline()
	defer b.TrimNewline()

	var start int
	switch verb {
	case format.VerbNone:
		start = v.MsgStart
	case format.VerbComponent:
		start = v.CompStart
	default:
		start = 0
	}
	line := b.Bytes()[start:]

	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.dst.Write(line)
	if err != nil {
		return err
	}
	if n < len(line) {
		return io.ErrShortWrite
	}
	return nil
}
