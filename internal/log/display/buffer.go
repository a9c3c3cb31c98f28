// Package display provides the fixed-capacity scratch buffer log
// messages are composed into. One buffer belongs to one logging thread
// at a time; the buffer never allocates on the message path.
package display

import "fmt"

// DefaultSize is the capacity of a message buffer. It must hold the
// rendered header, the message body and a trailing newline.
const DefaultSize = 4096

// Buffer is a fixed-capacity byte buffer with explicit overflow
// accounting. Appends past the capacity are truncated; Remaining
// reaching zero signals the overflow to the caller.
type Buffer struct {
	data []byte
	// one spare byte beyond the append limit, reserved for the
	// trailing newline writers add and remove
	limit int
}

// New returns a buffer able to hold size bytes plus a trailing newline.
func New(size int) *Buffer {
	return &Buffer{
		data:  make([]byte, 0, size+1),
		limit: size,
	}
}

// Reset discards all content.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}

// Len returns the number of bytes currently in the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Remaining returns the writable space left before the newline reserve.
func (b *Buffer) Remaining() int {
	return b.limit - len(b.data)
}

// Truncate shortens the buffer to n bytes.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > len(b.data) {
		return
	}
	b.data = b.data[:n]
}

// Append adds s, truncating at capacity. It returns the remaining
// space; zero means the buffer is full and the content incomplete.
func (b *Buffer) Append(s string) int {
	if n := b.Remaining(); len(s) > n {
		s = s[:n]
	}
	b.data = append(b.data, s...)
	return b.Remaining()
}

// Appendf formats into the buffer, truncating at capacity.
func (b *Buffer) Appendf(format string, args ...any) int {
	return b.Append(fmt.Sprintf(format, args...))
}

// Bytes returns the buffer content. The slice aliases the buffer and is
// only valid until the next mutation.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// String returns a copy of the buffer content.
func (b *Buffer) String() string {
	return string(b.data)
}

// AppendNewline adds the trailing newline writers emit. It uses the
// reserved byte, so it succeeds even when the buffer is full.
func (b *Buffer) AppendNewline() {
	b.data = append(b.data, '\n')
}

// TrimNewline undoes AppendNewline, restoring the un-terminated state.
func (b *Buffer) TrimNewline() {
	if n := len(b.data); n > 0 && b.data[n-1] == '\n' {
		b.data = b.data[:n-1]
	}
}
