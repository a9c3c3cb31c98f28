// Package format composes the structured header in front of every log
// message: a constant prefix describing the process (rebuilt only on
// reconfiguration) and a per-message block with timestamp, thread tag,
// source location, component and level.
package format

import (
	"errors"
	"time"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/display"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

// Verbosity is how much of the composed header a facility wants.
type Verbosity int

const (
	// VerbNone delivers only the caller's raw message.
	VerbNone Verbosity = iota
	// VerbComponent delivers the component/level block and message.
	VerbComponent
	// VerbFull delivers the entire header and message.
	VerbFull

	VerbCount
)

// String returns the config token for v.
func (v Verbosity) String() string {
	switch v {
	case VerbNone:
		return "none"
	case VerbComponent:
		return "component"
	case VerbFull:
		return "all"
	}
	return "invalid"
}

// ParseVerbosity resolves a header verbosity config token.
func ParseVerbosity(s string) (Verbosity, bool) {
	switch s {
	case "none":
		return VerbNone, true
	case "component":
		return VerbComponent, true
	case "all":
		return VerbFull, true
	}
	return 0, false
}

// TimeDateMode selects a date or time rendering style.
type TimeDateMode int

const (
	TDNone TimeDateMode = iota
	// TDLegacy is the historical server format (day/month/year).
	TDLegacy
	TDLocal
	TDISO8601
	TDSyslog
	// TDSyslogUsec is the syslog style with microseconds and zone.
	TDSyslogUsec
	// TDUser renders with a caller-supplied Go time layout.
	TDUser
)

// ParseTimeDateMode resolves a date/time format config token.
func ParseTimeDateMode(s string) (TimeDateMode, bool) {
	switch s {
	case "ganesha", "true":
		return TDLegacy, true
	case "local":
		return TDLocal, true
	case "8601", "ISO-8601", "ISO 8601", "ISO":
		return TDISO8601, true
	case "syslog":
		return TDSyslog, true
	case "syslog_usec":
		return TDSyslogUsec, true
	case "none", "false":
		return TDNone, true
	case "user_defined":
		return TDUser, true
	}
	return 0, false
}

// Fields selects which header fields are rendered. The zero value
// renders nothing; use DefaultFields for the startup defaults.
type Fields struct {
	Epoch      bool `toml:"epoch"`
	Host       bool `toml:"hostname"`
	Program    bool `toml:"progname"`
	PID        bool `toml:"pid"`
	ThreadName bool `toml:"thread_name"`
	FileName   bool `toml:"file_name"`
	LineNum    bool `toml:"line_num"`
	Function   bool `toml:"function_name"`
	Component  bool `toml:"component"`
	Level      bool `toml:"level"`

	DateFormat TimeDateMode `toml:"-"`
	TimeFormat TimeDateMode `toml:"-"`
	// Go reference layouts, required iff the matching mode is TDUser.
	UserDateFormat string `toml:"user_date_format"`
	UserTimeFormat string `toml:"user_time_format"`
}

// DefaultFields returns the baked-in startup format: everything but
// source location, legacy date and time.
func DefaultFields() Fields {
	return Fields{
		Epoch:      true,
		Host:       true,
		Program:    true,
		PID:        true,
		ThreadName: true,
		Function:   true,
		Component:  true,
		Level:      true,
		DateFormat: TDLegacy,
		TimeFormat: TDLegacy,
	}
}

// ErrUserFormat reports a user date/time mode without a pattern, or a
// pattern without the matching user mode.
var ErrUserFormat = errors.New("user date/time format and pattern must be set together")

// Validate checks the user-mode/pattern pairing invariants.
func (f Fields) Validate() error {
	if (f.DateFormat == TDUser) != (f.UserDateFormat != "") {
		return ErrUserFormat
	}
	if (f.TimeFormat == TDUser) != (f.UserTimeFormat != "") {
		return ErrUserFormat
	}
	return nil
}

// Format renders message headers for one fields configuration. The
// constant prefix and time layout are precomputed; Format itself is
// immutable and safe for concurrent use. Reconfiguration installs a
// new Format rather than mutating the old one.
type Format struct {
	fields     Fields
	timeLayout string
	constPre   string
}

// New compiles a fields configuration against the process identity.
func New(fields Fields, host, program string, pid int, epoch uint32) (*Format, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	f := &Format{fields: fields}
	f.timeLayout = buildTimeLayout(fields)
	f.constPre = buildConstPrefix(fields, host, program, pid, epoch)
	return f, nil
}

// Fields returns the configuration this format was compiled from.
func (f *Format) Fields() Fields {
	return f.fields
}

// ConstPrefix returns the precomputed process-identity prefix.
func (f *Format) ConstPrefix() string {
	return f.constPre
}

func buildConstPrefix(fields Fields, host, program string, pid int, epoch uint32) string {
	b := display.New(display.DefaultSize)

	if fields.Epoch {
		b.Appendf(": epoch %08x ", epoch)
	}
	if fields.Host {
		b.Appendf(": %s ", host)
	}
	if fields.Program {
		b.Appendf(": %s", program)
	}
	if fields.Program && fields.PID {
		b.Append("-")
	}
	if fields.PID {
		b.Appendf("%d", pid)
	}
	if (fields.Program || fields.PID) && !fields.ThreadName {
		b.Append(" ")
	}
	return b.String()
}

// buildTimeLayout assembles one Go time layout covering both the date
// and the time portion of the header.
func buildTimeLayout(fields Fields) string {
	if fields.DateFormat == TDLocal && fields.TimeFormat == TDLocal {
		return "Mon Jan _2 15:04:05 2006 "
	}

	var layout string
	switch fields.DateFormat {
	case TDLegacy:
		layout = "02/01/2006 "
	case TDISO8601:
		layout = "2006-01-02 "
	case TDLocal:
		layout = "01/02/06 "
	case TDSyslog:
		layout = "Jan _2 "
	case TDSyslogUsec:
		// joined to the time portion with a T, syslog style
		if fields.TimeFormat == TDSyslogUsec {
			layout = "2006-01-02"
		} else {
			layout = "2006-01-02 "
		}
	case TDUser:
		layout = fields.UserDateFormat + " "
	}

	switch fields.TimeFormat {
	case TDLegacy:
		layout += "15:04:05 "
	case TDSyslog, TDISO8601, TDLocal:
		layout += "15:04:05 "
	case TDSyslogUsec:
		layout += "T15:04:05.000000Z0700 "
	case TDUser:
		layout += fields.UserTimeFormat + " "
	}

	return layout
}

// RenderHeader writes the timestamp and constant prefix, the part of
// the header only facilities with full verbosity see. On overflow the
// whole header is abandoned so the message starts at position zero.
func (f *Format) RenderHeader(b *display.Buffer, now time.Time, maxVerb Verbosity) {
	if maxVerb < VerbFull {
		return
	}

	if f.timeLayout != "" {
		b.Append(now.Format(f.timeLayout))
	}
	if f.constPre != "" {
		b.Append(f.constPre)
	}
	// if no thread tag follows, close the prefix with a separator
	if !f.fields.ThreadName {
		b.Append(": ")
	}

	if b.Remaining() == 0 {
		b.Reset()
	}
}

// RenderComponent writes the thread tag, source location, component
// tag and level short name, the part facilities with component-or-more
// verbosity see. Overflow abandons the header as in RenderHeader.
func (f *Format) RenderComponent(b *display.Buffer, threadTag, file string, line int, function, compTag string, l level.Level, maxVerb Verbosity) {
	if maxVerb < VerbComponent {
		return
	}

	if f.fields.ThreadName {
		b.Appendf("[%s] ", threadTag)
	}
	if f.fields.FileName {
		if f.fields.LineNum {
			b.Appendf("%s:", file)
		} else {
			b.Appendf("%s :", file)
		}
	}
	if f.fields.LineNum {
		b.Appendf("%d :", line)
	}
	if f.fields.Function {
		b.Appendf("%s :", function)
	}
	if f.fields.Component {
		b.Appendf("%s :", compTag)
	}
	if f.fields.Level {
		b.Appendf("%s :", l.Short())
	}

	if b.Remaining() == 0 {
		b.Reset()
	}
}
