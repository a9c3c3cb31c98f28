package facility

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/display"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/format"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

const logFileMode = 0o644

// FileWriter appends log lines to a file, opening it in
// append+create+sync mode on every write so external rotation is never
// disturbed.
type FileWriter struct {
	path string
	// fallback stream for reporting write failures
	errOut io.Writer
}

// NewFileWriter validates that path's parent directory is writable and
// returns a writer for it.
func NewFileWriter(path string) (*FileWriter, error) {
	if err := checkLogPath(path); err != nil {
		return nil, err
	}
	return &FileWriter{path: path, errOut: os.Stderr}, nil
}

// checkLogPath verifies the containing directory accepts new files.
func checkLogPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty log file path", ErrInvalid)
	}
	dir := filepath.Dir(path)
	if err := unix.Access(dir, unix.W_OK); err != nil {
		return fmt.Errorf("log directory %s not writable: %w", dir, err)
	}
	return nil
}

// Path returns the current destination path.
func (w *FileWriter) Path() string { return w.path }

// SetPath rewrites the destination, replacing the old path only after
// the new parent directory validates.
func (w *FileWriter) SetPath(path string) error {
	if err := checkLogPath(path); err != nil {
		return err
	}
	w.path = path
	return nil
}

// Write appends the full rendered line. Open or short-write failures
// are reported best-effort on the fallback error stream; the buffer is
// restored regardless of outcome.
func (w *FileWriter) Write(verb format.Verbosity, l level.Level, b *display.Buffer, v Views) error {
	b.AppendNewline()
	defer b.TrimNewline()

	line := b.Bytes()

	fd, err := os.OpenFile(w.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE|os.O_SYNC, logFileMode)
	if err == nil {
		var n int
		n, err = fd.Write(line)
		if err == nil && n < len(line) {
			err = io.ErrShortWrite
		}
		if cerr := fd.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		fmt.Fprintf(w.errOut,
			"Error: couldn't complete write to the log file %s (%v), message was:\n%s",
			w.path, err, line)
		return err
	}
	return nil
}
