package facility

import (
	"sync"

	"github.com/coreos/go-systemd/v22/journal"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/display"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/format"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

// JournalWriter sends log lines to the systemd journal. Availability
// is probed lazily exactly once per process; delivery after that is
// fire-and-forget, matching syslog semantics.
type JournalWriter struct {
	identifier string

	probe     sync.Once
	available bool
}

// NewJournalWriter tags entries with the given syslog identifier,
// normally the program name.
func NewJournalWriter(identifier string) *JournalWriter {
	return &JournalWriter{identifier: identifier}
}

// Write maps the severity to a journal priority and sends the
// requested view. Unavailability and delivery failures are not
// surfaced.
func (w *JournalWriter) Write(verb format.Verbosity, l level.Level, b *display.Buffer, v Views) error {
	w.probe.Do(func() {
		w.available = journal.Enabled()
	})
	if !w.available {
		return nil
	}

	var start int
	switch verb {
	case format.VerbNone:
		start = v.MsgStart
	case format.VerbComponent:
		start = v.CompStart
	default:
		start = 0
	}

	_ = journal.Send(string(b.Bytes()[start:]), l.Priority(), map[string]string{
		"SYSLOG_IDENTIFIER": w.identifier,
	})
	return nil
}
