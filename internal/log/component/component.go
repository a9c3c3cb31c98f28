// Package component defines the logical subsystem tags messages are
// scoped by, and the table mapping each tag to the minimum severity it
// emits at.
package component

import (
	"strings"
	"sync"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

// Component identifies a logical subsystem.
type Component int

// The ALL sentinel is not a real subsystem: setting its level
// broadcasts to every component.
const (
	All Component = iota
	Log
	LogEmerg
	MemLeaks
	Config
	Init
	Main
	Dispatch
	Thread
	RPC
	Export
	FileHandle
	State
	ClientID
	Sessions
	NFSProto
	NFSv4
	NFSReaddir
	FSAL
	IDMapper

	Count
)

type info struct {
	name string // full name, also the environment variable
	tag  string // short tag printed in message headers
}

var table = [Count]info{
	All:        {"COMPONENT_ALL", ""},
	Log:        {"COMPONENT_LOG", "LOG"},
	LogEmerg:   {"COMPONENT_LOG_EMERG", "LOG_EMERG"},
	MemLeaks:   {"COMPONENT_MEMLEAKS", "LEAKS"},
	Config:     {"COMPONENT_CONFIG", "CONFIG"},
	Init:       {"COMPONENT_INIT", "NFS STARTUP"},
	Main:       {"COMPONENT_MAIN", "MAIN"},
	Dispatch:   {"COMPONENT_DISPATCH", "DISP"},
	Thread:     {"COMPONENT_THREAD", "THREAD"},
	RPC:        {"COMPONENT_RPC", "RPC"},
	Export:     {"COMPONENT_EXPORT", "EXPORT"},
	FileHandle: {"COMPONENT_FILEHANDLE", "FH"},
	State:      {"COMPONENT_STATE", "STATE"},
	ClientID:   {"COMPONENT_CLIENTID", "CLIENT ID"},
	Sessions:   {"COMPONENT_SESSIONS", "SESSIONS"},
	NFSProto:   {"COMPONENT_NFSPROTO", "NFS3"},
	NFSv4:      {"COMPONENT_NFS_V4", "NFS4"},
	NFSReaddir: {"COMPONENT_NFS_READDIR", "NFS READDIR"},
	FSAL:       {"COMPONENT_FSAL", "FSAL"},
	IDMapper:   {"COMPONENT_IDMAPPER", "ID MAPPER"},
}

// Valid reports whether c is a defined component.
func (c Component) Valid() bool {
	return c >= All && c < Count
}

// String returns the full component name, e.g. "COMPONENT_NFSPROTO".
func (c Component) String() string {
	if !c.Valid() {
		return "COMPONENT_INVALID"
	}
	return table[c].name
}

// Tag returns the short header tag, e.g. "NFS3".
func (c Component) Tag() string {
	if !c.Valid() {
		return "?"
	}
	return table[c].tag
}

// Parse resolves a component by its full name or by the name without
// the "COMPONENT_" prefix, case-insensitively.
func Parse(s string) (Component, bool) {
	for c := All; c < Count; c++ {
		if strings.EqualFold(s, table[c].name) ||
			strings.EqualFold(s, strings.TrimPrefix(table[c].name, "COMPONENT_")) {
			return c, true
		}
	}
	return 0, false
}

// SetOutcome reports what Table.Set did with a requested change.
type SetOutcome int

const (
	// Applied means the level changed.
	Applied SetOutcome = iota
	// Unchanged means the component was already at the level.
	Unchanged
	// Pinned means an environment override holds the entry and the
	// change was rejected.
	Pinned
)

// Table maps every component to the minimum severity it emits at.
// The zero value is not usable; call NewTable.
type Table struct {
	mu     sync.RWMutex
	levels [Count]level.Level
	pinned [Count]bool
}

// NewTable returns a table with the startup defaults: every component
// at Event, the ALL sentinel at Null.
func NewTable() *Table {
	t := &Table{}
	for c := All; c < Count; c++ {
		t.levels[c] = level.Event
	}
	t.levels[All] = level.Null
	return t
}

// Level returns the current minimum severity for c.
func (t *Table) Level(c Component) level.Level {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.levels[c]
}

// Enabled reports whether a message at l for component c should be
// composed at all.
func (t *Table) Enabled(c Component, l level.Level) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return l <= t.levels[c]
}

// Set applies a clamped level change to one component. Changes to
// entries pinned by an environment override are rejected. Setting the
// ALL sentinel broadcasts to every entry, overriding pins.
func (t *Table) Set(c Component, l level.Level) (SetOutcome, level.Level) {
	l = level.Clamp(l)

	t.mu.Lock()
	defer t.mu.Unlock()

	if c == All {
		for i := range t.levels {
			t.levels[i] = l
		}
		return Applied, l
	}
	old := t.levels[c]
	if t.pinned[c] {
		return Pinned, old
	}
	if old == l {
		return Unchanged, old
	}
	t.levels[c] = l
	return Applied, old
}

// Pin sets c to l and marks the entry as held by an environment
// override, rejecting later configuration-driven changes.
func (t *Table) Pin(c Component, l level.Level) level.Level {
	t.mu.Lock()
	defer t.mu.Unlock()
	old := t.levels[c]
	t.levels[c] = level.Clamp(l)
	t.pinned[c] = true
	return old
}

// ClearPins drops all environment overrides, as done before a config
// file is re-read.
func (t *Table) ClearPins() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.pinned {
		t.pinned[i] = false
	}
}

// Replace installs a freshly built level array wholesale.
func (t *Table) Replace(levels [Count]level.Level) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.levels = levels
}

// Snapshot returns a copy of the current levels.
func (t *Table) Snapshot() [Count]level.Level {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.levels
}

// Raise increments the ALL level by one step, clamped at FullDebug.
// Returns the new ALL level.
func (t *Table) Raise() level.Level {
	return t.step(1)
}

// Lower decrements the ALL level by one step, clamped at Null.
func (t *Table) Lower() level.Level {
	return t.step(-1)
}

func (t *Table) step(delta int) level.Level {
	t.mu.Lock()
	defer t.mu.Unlock()
	l := level.Clamp(t.levels[All] + level.Level(delta))
	for i := range t.levels {
		t.levels[i] = l
	}
	return l
}
