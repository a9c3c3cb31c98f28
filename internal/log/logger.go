// Package log is the process-wide logging runtime: leveled,
// componentized messages fanned out to a set of concurrently active
// facilities, each with its own severity threshold and header
// verbosity. Log calls from many goroutines share only the registry's
// read lock; reconfiguration takes the write lock and is rare.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/zhanghaozz/nfs-ganesha/internal/events"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/component"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/facility"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/format"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

// fatalStatus is the exit code after a fatal-severity message.
const fatalStatus = 2

// Logger owns the facility registry, the component/level table, the
// compiled header format, and the pool of per-thread scratch contexts.
// Construct one per process with New.
type Logger struct {
	registry   *facility.Registry
	components *component.Table

	fmtMu sync.RWMutex
	fmt   *format.Format

	host    string
	program string
	pid     int
	epoch   uint32

	pool sync.Pool

	// shared fallback context for paths that must not touch the pool
	emergMu sync.Mutex
	emerg   *threadContext

	cleanupMu sync.Mutex
	cleanups  []func()

	bus  *events.Bus
	exit func(int)
}

// New builds a logger with the default component levels and header
// format. No facility exists yet; call Init or the facility operations
// before the first message needs a destination. bus and metrics may be
// nil.
func New(program string, epoch uint32, bus *events.Bus, metrics *facility.Metrics) *Logger {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	l := &Logger{
		registry:   facility.NewRegistry(metrics),
		components: component.NewTable(),
		host:       host,
		program:    program,
		pid:        os.Getpid(),
		epoch:      epoch,
		emerg:      newThreadContext(),
		bus:        bus,
		exit:       os.Exit,
	}
	l.pool.New = func() any { return newThreadContext() }

	// DefaultFields always validates
	l.fmt, _ = format.New(format.DefaultFields(), host, program, l.pid, epoch)
	return l
}

// Registry exposes the facility registry for inspection.
func (l *Logger) Registry() *facility.Registry { return l.registry }

// Components exposes the component/level table.
func (l *Logger) Components() *component.Table { return l.components }

// Program returns the program name baked into headers.
func (l *Logger) Program() string { return l.program }

// Epoch returns the server epoch baked into headers.
func (l *Logger) Epoch() uint32 { return l.epoch }

// SetExitFunc overrides process termination on fatal messages, for
// tests.
func (l *Logger) SetExitFunc(fn func(int)) { l.exit = fn }

// SetFormat recompiles the header format from a new fields
// configuration and swaps it in atomically. In-flight log calls keep
// the format they started with.
func (l *Logger) SetFormat(fields format.Fields) error {
	f, err := format.New(fields, l.host, l.program, l.pid, l.epoch)
	if err != nil {
		return err
	}
	l.fmtMu.Lock()
	l.fmt = f
	l.fmtMu.Unlock()
	return nil
}

// Format returns the current compiled header format.
func (l *Logger) Format() *format.Format {
	l.fmtMu.RLock()
	defer l.fmtMu.RUnlock()
	return l.fmt
}

// Init builds the startup facilities the way the server boots: STDERR
// first so configuration processing can already log, then STDOUT and
// JOURNAL. A non-empty logPath adds a FILE facility and makes it the
// default; otherwise JOURNAL becomes the default. A valid debugLevel
// pre-sets every component before environment overrides are applied.
func (l *Logger) Init(logPath string, debugLevel level.Level) error {
	if err := l.CreateStreamFacility("STDERR", "stderr", level.FullDebug, format.VerbFull); err != nil {
		return fmt.Errorf("create STDERR log facility: %w", err)
	}
	if err := l.SetDefaultFacility("STDERR"); err != nil {
		return fmt.Errorf("enable STDERR log facility: %w", err)
	}
	if err := l.CreateStreamFacility("STDOUT", "stdout", level.FullDebug, format.VerbFull); err != nil {
		return fmt.Errorf("create STDOUT log facility: %w", err)
	}
	if err := l.CreateJournalFacility("JOURNAL", level.FullDebug, format.VerbComponent); err != nil {
		return fmt.Errorf("create JOURNAL log facility: %w", err)
	}
	if logPath != "" {
		if err := l.CreateFileFacility("FILE", logPath, level.FullDebug, format.VerbFull); err != nil {
			return fmt.Errorf("create FILE (%s) log facility: %w", logPath, err)
		}
		if err := l.SetDefaultFacility("FILE"); err != nil {
			return fmt.Errorf("enable FILE (%s) log facility: %w", logPath, err)
		}
	} else {
		if err := l.SetDefaultFacility("JOURNAL"); err != nil {
			return fmt.Errorf("enable JOURNAL log facility: %w", err)
		}
	}
	if debugLevel.Valid() {
		l.SetComponentLevel(component.All, debugLevel, "init")
	}
	l.SeedFromEnv()
	return nil
}

// Logf renders and dispatches one message using a pooled context.
func (l *Logger) Logf(c component.Component, lv level.Level, msgFormat string, args ...any) {
	l.logf(3, c, lv, msgFormat, args...)
}

// Fatalf logs at fatal severity, runs the cleanup chain and terminates
// the process. It does not return.
func (l *Logger) Fatalf(c component.Component, msgFormat string, args ...any) {
	l.logf(3, c, level.Fatal, msgFormat, args...)
}

// Critf logs at critical severity.
func (l *Logger) Critf(c component.Component, msgFormat string, args ...any) {
	l.logf(3, c, level.Crit, msgFormat, args...)
}

// Warnf logs at warning severity.
func (l *Logger) Warnf(c component.Component, msgFormat string, args ...any) {
	l.logf(3, c, level.Warn, msgFormat, args...)
}

// Eventf logs at event severity, the default admission level.
func (l *Logger) Eventf(c component.Component, msgFormat string, args ...any) {
	l.logf(3, c, level.Event, msgFormat, args...)
}

// Infof logs at info severity.
func (l *Logger) Infof(c component.Component, msgFormat string, args ...any) {
	l.logf(3, c, level.Info, msgFormat, args...)
}

// Debugf logs at debug severity.
func (l *Logger) Debugf(c component.Component, msgFormat string, args ...any) {
	l.logf(3, c, level.Debug, msgFormat, args...)
}

// LogEmergency renders through the shared emergency context,
// serialized by its own mutex. Used where a pooled context must not be
// acquired, such as reporting logging failures themselves.
func (l *Logger) LogEmergency(c component.Component, lv level.Level, msgFormat string, args ...any) {
	if !l.components.Enabled(c, lv) {
		return
	}
	l.emergMu.Lock()
	l.deliver(l.emerg, 2, c, lv, fmt.Sprintf(msgFormat, args...))
	l.emergMu.Unlock()
	if lv == level.Fatal {
		l.fatal()
	}
}

// logf is the shared admission + context acquisition path. callerSkip
// is the runtime.Caller depth of the originating call site as seen
// from deliver.
func (l *Logger) logf(callerSkip int, c component.Component, lv level.Level, msgFormat string, args ...any) {
	if !l.components.Enabled(c, lv) {
		return
	}
	ctx := l.pool.Get().(*threadContext)
	l.deliver(ctx, callerSkip, c, lv, fmt.Sprintf(msgFormat, args...))
	l.pool.Put(ctx)
	if lv == level.Fatal {
		l.fatal()
	}
}

// deliver composes the header and message into ctx's buffer and fans
// it out. Header phases are skipped entirely when no active facility
// wants them; a header that would overflow the buffer is abandoned so
// the message always fits.
func (l *Logger) deliver(ctx *threadContext, callerSkip int, c component.Component, lv level.Level, msg string) {
	maxVerb := l.registry.MaxVerbosity()
	f := l.Format()
	b := ctx.buf
	b.Reset()

	f.RenderHeader(b, time.Now(), maxVerb)
	compStart := b.Len()

	var file, function string
	var line int
	fields := f.Fields()
	if maxVerb >= format.VerbComponent && (fields.FileName || fields.LineNum || fields.Function) {
		if pc, callerFile, callerLine, ok := runtime.Caller(callerSkip); ok {
			file = filepath.Base(callerFile)
			line = callerLine
			if fn := runtime.FuncForPC(pc); fn != nil {
				function = shortFuncName(fn.Name())
			}
		}
	}
	f.RenderComponent(b, ctx.name, file, line, function, c.Tag(), lv, maxVerb)
	msgStart := b.Len()
	if compStart > msgStart {
		// component phase overflowed and abandoned the header
		compStart = 0
	}
	b.Append(msg)

	l.registry.Dispatch(lv, b, facility.Views{CompStart: compStart, MsgStart: msgStart})
}

// shortFuncName strips the package path from a runtime function name.
func shortFuncName(name string) string {
	name = name[strings.LastIndexByte(name, '/')+1:]
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// RegisterCleanup pushes fn onto the chain run before a fatal exit.
func (l *Logger) RegisterCleanup(fn func()) {
	l.cleanupMu.Lock()
	l.cleanups = append(l.cleanups, fn)
	l.cleanupMu.Unlock()
}

// Cleanup runs the cleanup chain, most recently registered first.
func (l *Logger) Cleanup() {
	l.cleanupMu.Lock()
	fns := make([]func(), len(l.cleanups))
	copy(fns, l.cleanups)
	l.cleanupMu.Unlock()

	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}

func (l *Logger) fatal() {
	l.Cleanup()
	l.exit(fatalStatus)
}

// logChanges makes level changes themselves auditable: when the LOG
// component runs at full debug, every change emits an always-admitted
// line.
func (l *Logger) logChanges(msgFormat string, args ...any) {
	if l.components.Level(component.Log) == level.FullDebug {
		l.logf(4, component.Log, level.Null, "LOG: "+msgFormat, args...)
	}
}

// SetComponentLevel applies a clamped level change. The ALL sentinel
// broadcasts to every component. A change to an entry pinned by an
// environment override is rejected with a warning, not an error. The
// final level of the component is returned.
func (l *Logger) SetComponentLevel(c component.Component, lv level.Level, source string) level.Level {
	lv = level.Clamp(lv)

	if c == component.All {
		l.components.Set(component.All, lv)
		l.logChanges("Setting log level for all components to %s", lv)
		l.publishLevel(c, level.Null, lv, source)
		return lv
	}

	outcome, old := l.components.Set(c, lv)
	switch outcome {
	case component.Pinned:
		l.Warnf(component.Config,
			"LOG %s level %s from config is ignored because %s was set in environment",
			c, lv, old)
		return old
	case component.Applied:
		l.logChanges("Changing log level of %s from %s to %s", c, old, lv)
		l.publishLevel(c, old, lv, source)
		return lv
	}
	return old
}

// RaiseAll steps every component one level more verbose, clamped at
// the top of the range. Triggered by SIGUSR1.
func (l *Logger) RaiseAll() level.Level {
	lv := l.components.Raise()
	l.logChanges("SIGUSR1 Increasing log level for all components to %s", lv)
	l.publishLevel(component.All, level.Null, lv, "signal")
	return lv
}

// LowerAll steps every component one level less verbose, clamped at
// the bottom of the range. Triggered by SIGUSR2.
func (l *Logger) LowerAll() level.Level {
	lv := l.components.Lower()
	l.logChanges("SIGUSR2 Decreasing log level for all components to %s", lv)
	l.publishLevel(component.All, level.Null, lv, "signal")
	return lv
}

// SeedFromEnv applies level overrides from per-component environment
// variables and pins the entries against later configuration changes.
// The full component name and the name without its prefix are both
// accepted; invalid values are reported and ignored.
func (l *Logger) SeedFromEnv() {
	for c := component.All; c < component.Count; c++ {
		val, ok := os.LookupEnv(c.String())
		if !ok {
			val, ok = os.LookupEnv(strings.TrimPrefix(c.String(), "COMPONENT_"))
		}
		if !ok || val == "" {
			continue
		}
		lv, valid := level.Parse(val)
		if !valid {
			l.Critf(component.Log,
				"Environment variable %s exists, but the value %s is not a valid log level.",
				c, val)
			continue
		}
		old := l.components.Pin(c, lv)
		l.logChanges("Using environment variable to switch log level for %s from %s to %s",
			c, old, lv)
		l.publishLevel(c, old, lv, "env")
	}
}

func (l *Logger) publishLevel(c component.Component, old, lv level.Level, source string) {
	if l.bus == nil {
		return
	}
	l.bus.Publish(events.LevelChangedEvent{
		Component: c.String(),
		Old:       old.String(),
		New:       lv.String(),
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (l *Logger) publishFacility(name, action, detail string) {
	if l.bus == nil {
		return
	}
	l.bus.Publish(events.FacilityChangedEvent{
		Facility:  name,
		Action:    action,
		Detail:    detail,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// newStream resolves the two standard stream targets.
func newStream(target string) (*facility.StreamWriter, error) {
	switch {
	case strings.EqualFold(target, "stdout"):
		return facility.NewStreamWriter(os.Stdout, "stdout"), nil
	case strings.EqualFold(target, "stderr"):
		return facility.NewStreamWriter(os.Stderr, "stderr"), nil
	}
	return nil, fmt.Errorf("%w: expected stdout or stderr, not %q", facility.ErrInvalid, target)
}

// CreateStreamFacility registers an inactive facility writing to one
// of the two standard streams.
func (l *Logger) CreateStreamFacility(name, target string, max level.Level, verb format.Verbosity) error {
	w, err := newStream(target)
	if err != nil {
		return err
	}
	if err := l.registry.Create(name, facility.KindStream, w, max, verb); err != nil {
		return err
	}
	l.publishFacility(name, "registered", target)
	return nil
}

// CreateFileFacility registers an inactive facility appending to path.
func (l *Logger) CreateFileFacility(name, path string, max level.Level, verb format.Verbosity) error {
	w, err := facility.NewFileWriter(path)
	if err != nil {
		return err
	}
	if err := l.registry.Create(name, facility.KindFile, w, max, verb); err != nil {
		return err
	}
	l.publishFacility(name, "registered", path)
	return nil
}

// CreateJournalFacility registers an inactive facility sending to the
// systemd journal under the program's syslog identifier.
func (l *Logger) CreateJournalFacility(name string, max level.Level, verb format.Verbosity) error {
	w := facility.NewJournalWriter(l.program)
	if err := l.registry.Create(name, facility.KindJournal, w, max, verb); err != nil {
		return err
	}
	l.publishFacility(name, "registered", "journal")
	return nil
}

// CreateMemoryFacility registers an inactive facility retaining the
// last size rendered lines, and returns its writer for tailing.
func (l *Logger) CreateMemoryFacility(name string, size int, max level.Level, verb format.Verbosity) (*facility.MemoryWriter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: memory facility size %d", facility.ErrInvalid, size)
	}
	w := facility.NewMemoryWriter(size)
	if err := l.registry.Create(name, facility.KindCustom, w, max, verb); err != nil {
		return nil, err
	}
	l.publishFacility(name, "registered", fmt.Sprintf("memory:%d", size))
	return w, nil
}

// ReleaseFacility removes a facility. Releasing the default is
// rejected.
func (l *Logger) ReleaseFacility(name string) error {
	if err := l.registry.Release(name); err != nil {
		return err
	}
	l.publishFacility(name, "released", "")
	return nil
}

// EnableFacility adds a facility to the active set.
func (l *Logger) EnableFacility(name string) error {
	if err := l.registry.Enable(name); err != nil {
		return err
	}
	l.publishFacility(name, "enabled", "")
	return nil
}

// DisableFacility removes a facility from the active set. Disabling
// the default is rejected.
func (l *Logger) DisableFacility(name string) error {
	if err := l.registry.Disable(name); err != nil {
		return err
	}
	l.publishFacility(name, "disabled", "")
	return nil
}

// SetDefaultFacility promotes a facility to default, activating it.
func (l *Logger) SetDefaultFacility(name string) error {
	if err := l.registry.SetDefault(name); err != nil {
		return err
	}
	l.publishFacility(name, "default", "")
	return nil
}

// SetFacilityLevel updates a facility's maximum accepted severity.
func (l *Logger) SetFacilityLevel(name string, max level.Level) error {
	if err := l.registry.SetLevel(name, max); err != nil {
		return err
	}
	l.publishFacility(name, "level", max.String())
	return nil
}

// SetFacilityDestination re-points a stream or file facility.
func (l *Logger) SetFacilityDestination(name, dest string) error {
	if err := l.registry.SetDestination(name, dest); err != nil {
		return err
	}
	l.publishFacility(name, "destination", dest)
	return nil
}
