// Package level defines the ordered severity levels used to admit or
// suppress log messages. Levels ascend numerically from Null (always
// emitted) to FullDebug (most verbose); a message is admitted by a
// facility iff its level is <= the facility's maximum level.
package level

import (
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

// Level is a message severity.
type Level int

const (
	Null Level = iota
	Fatal
	Major
	Crit
	Warn
	Event
	Info
	Debug
	MidDebug
	FullDebug

	// Count is one past the highest valid level.
	Count
)

type levelInfo struct {
	name     string
	short    string
	priority journal.Priority
}

var table = [Count]levelInfo{
	Null:      {"NIV_NULL", "NULL", journal.PriNotice},
	Fatal:     {"NIV_FATAL", "FATAL", journal.PriCrit},
	Major:     {"NIV_MAJ", "MAJ", journal.PriCrit},
	Crit:      {"NIV_CRIT", "CRIT", journal.PriErr},
	Warn:      {"NIV_WARN", "WARN", journal.PriWarning},
	Event:     {"NIV_EVENT", "EVENT", journal.PriNotice},
	Info:      {"NIV_INFO", "INFO", journal.PriInfo},
	Debug:     {"NIV_DEBUG", "DEBUG", journal.PriDebug},
	MidDebug:  {"NIV_MID_DEBUG", "M_DBG", journal.PriDebug},
	FullDebug: {"NIV_FULL_DEBUG", "F_DBG", journal.PriDebug},
}

// Valid reports whether l is inside the defined range.
func (l Level) Valid() bool {
	return l >= Null && l < Count
}

// String returns the long name, e.g. "NIV_WARN".
func (l Level) String() string {
	if !l.Valid() {
		return fmt.Sprintf("NIV_INVALID(%d)", int(l))
	}
	return table[l].name
}

// Short returns the abbreviated name used in message headers, e.g. "WARN".
func (l Level) Short() string {
	if !l.Valid() {
		return "?????"
	}
	return table[l].short
}

// Priority maps the level onto a systemd journal priority.
func (l Level) Priority() journal.Priority {
	if !l.Valid() {
		return journal.PriNotice
	}
	return table[l].priority
}

// Clamp forces l into the valid range.
func Clamp(l Level) Level {
	if l < Null {
		return Null
	}
	if l >= Count {
		return Count - 1
	}
	return l
}

// Parse resolves a level keyword, accepting the long form ("NIV_WARN"),
// the long form without its prefix ("WARN"), or the short header form
// ("M_DBG"), case-insensitively.
func Parse(s string) (Level, bool) {
	for l, info := range table {
		if strings.EqualFold(s, info.name) ||
			strings.EqualFold(s, strings.TrimPrefix(info.name, "NIV_")) ||
			strings.EqualFold(s, info.short) {
			return Level(l), true
		}
	}
	return 0, false
}
