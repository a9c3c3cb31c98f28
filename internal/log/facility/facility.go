// Package facility implements the output side of the logging runtime:
// named destinations with their own severity threshold and header
// verbosity, the registry tracking which of them are active, and the
// dispatcher fanning a rendered message out to all of them.
package facility

import (
	"errors"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/display"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/format"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

// Kind tags the writer capability of a facility.
type Kind int

const (
	// KindNull marks a placeholder created when configuration names
	// a facility before its real registration.
	KindNull Kind = iota
	KindStream
	KindFile
	KindJournal
	KindCustom
)

// String returns the config token for k.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindStream:
		return "stream"
	case KindFile:
		return "file"
	case KindJournal:
		return "journal"
	case KindCustom:
		return "custom"
	}
	return "invalid"
}

// Views locates the two pre-computed sub-views inside a rendered
// buffer: the component-block-onward substring and the raw
// message-onward substring.
type Views struct {
	CompStart int
	MsgStart  int
}

// Writer delivers one rendered message to a destination. The buffer is
// shared across facilities for the duration of the dispatch; a writer
// may append a trailing newline but must restore the buffer before
// returning.
type Writer interface {
	Write(verb format.Verbosity, l level.Level, b *display.Buffer, v Views) error
}

// Typed outcomes of registry mutations.
var (
	ErrNotFound        = errors.New("no such log facility")
	ErrExists          = errors.New("log facility already exists")
	ErrInvalid         = errors.New("invalid argument")
	ErrDefault         = errors.New("operation not permitted on the default log facility")
	ErrAlreadyEnabled  = errors.New("log facility is already enabled")
	ErrAlreadyDisabled = errors.New("log facility is already disabled")
)

// Facility is one named output destination. All fields are guarded by
// the owning registry's lock; facilities are never shared between
// registries.
type Facility struct {
	name     string
	kind     Kind
	writer   Writer // nil for placeholders
	maxLevel level.Level
	verb     format.Verbosity

	active bool
}

// New constructs an unregistered facility.
func New(name string, kind Kind, w Writer, maxLevel level.Level, verb format.Verbosity) *Facility {
	return &Facility{
		name:     name,
		kind:     kind,
		writer:   w,
		maxLevel: maxLevel,
		verb:     verb,
	}
}

// Name returns the unique, case-insensitive facility name.
func (f *Facility) Name() string { return f.name }

// Kind returns the writer capability tag.
func (f *Facility) Kind() Kind { return f.kind }

// placeholder reports whether f was created as a null facility.
func (f *Facility) placeholder() bool { return f.writer == nil }

// Info is a read-only snapshot of one facility for inspection.
type Info struct {
	Name        string
	Kind        Kind
	MaxLevel    level.Level
	Verbosity   format.Verbosity
	Destination string
	Active      bool
	Default     bool
}

// destination describes where the facility writes, for Info only.
func (f *Facility) destination() string {
	switch w := f.writer.(type) {
	case *StreamWriter:
		return w.target()
	case *FileWriter:
		return w.Path()
	case *JournalWriter:
		return "journal"
	case nil:
		return ""
	}
	return "custom"
}
