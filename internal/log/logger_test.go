package log

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/component"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/display"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/facility"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/format"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

// testWriter records the requested view of every delivered line.
type testWriter struct {
	mu    sync.Mutex
	lines []string
}

func (w *testWriter) Write(verb format.Verbosity, l level.Level, b *display.Buffer, v facility.Views) error {
	var start int
	switch verb {
	case format.VerbNone:
		start = v.MsgStart
	case format.VerbComponent:
		start = v.CompStart
	}
	line := string(b.Bytes()[start:])

	w.mu.Lock()
	w.lines = append(w.lines, line)
	w.mu.Unlock()
	return nil
}

func (w *testWriter) Lines() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.lines))
	copy(out, w.lines)
	return out
}

func newTestLogger(t *testing.T) *Logger {
	t.Helper()
	l := New("testprog", 0x42, nil, nil)
	l.SetExitFunc(func(int) {
		t.Fatal("unexpected process termination")
	})
	return l
}

// addCapture registers and activates a capturing facility.
func addCapture(t *testing.T, l *Logger, name string, max level.Level, verb format.Verbosity) *testWriter {
	t.Helper()
	w := &testWriter{}
	if err := l.Registry().Create(name, facility.KindCustom, w, max, verb); err != nil {
		t.Fatal(err)
	}
	if err := l.EnableFacility(name); err != nil {
		t.Fatal(err)
	}
	return w
}

func TestFileScenario(t *testing.T) {
	// A file facility at INFO with full headers: DEBUG is suppressed,
	// WARN is delivered, and the file holds exactly one line.
	l := newTestLogger(t)
	// raise levels before any facility is active
	l.SetComponentLevel(component.All, level.FullDebug, "test")

	path := filepath.Join(t.TempDir(), "scenario.log")
	if err := l.CreateFileFacility("F", path, level.Info, format.VerbFull); err != nil {
		t.Fatal(err)
	}
	if err := l.SetDefaultFacility("F"); err != nil {
		t.Fatal(err)
	}

	l.Debugf(component.Main, "debug message %d", 1)
	l.Warnf(component.Main, "warn message %d", 2)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("file has %d lines %q, want 1", len(lines), lines)
	}
	if !strings.Contains(lines[0], "warn message 2") {
		t.Errorf("line %q does not carry the WARN message", lines[0])
	}
	if strings.Contains(string(data), "debug message") {
		t.Error("suppressed DEBUG message reached the file")
	}
	if !strings.Contains(lines[0], ": epoch 00000042 : ") {
		t.Errorf("line %q is missing the constant prefix", lines[0])
	}
	if !strings.Contains(lines[0], "WARN") {
		t.Errorf("line %q is missing the level short name", lines[0])
	}
}

func TestEnvPinScenario(t *testing.T) {
	t.Setenv("COMPONENT_NFSPROTO", "CRIT")

	l := newTestLogger(t)
	addCapture(t, l, "CAP", level.FullDebug, format.VerbNone)
	l.SeedFromEnv()

	if got := l.Components().Level(component.NFSProto); got != level.Crit {
		t.Fatalf("NFSPROTO after env seed = %v, want NIV_CRIT", got)
	}

	// A configuration attempt to change the pinned entry is rejected.
	final := l.SetComponentLevel(component.NFSProto, level.Debug, "config")
	if final != level.Crit {
		t.Errorf("pinned level changed to %v", final)
	}
	if got := l.Components().Level(component.NFSProto); got != level.Crit {
		t.Errorf("NFSPROTO = %v after rejected change, want NIV_CRIT", got)
	}
}

func TestEnvBareNameAndInvalidValue(t *testing.T) {
	t.Setenv("FSAL", "M_DBG")
	t.Setenv("COMPONENT_RPC", "NOT_A_LEVEL")

	l := newTestLogger(t)
	w := addCapture(t, l, "CAP", level.FullDebug, format.VerbNone)
	l.SeedFromEnv()

	if got := l.Components().Level(component.FSAL); got != level.MidDebug {
		t.Errorf("FSAL from bare env name = %v, want NIV_MID_DEBUG", got)
	}
	if got := l.Components().Level(component.RPC); got != level.Event {
		t.Errorf("RPC changed by invalid env value: %v", got)
	}
	found := false
	for _, line := range w.Lines() {
		if strings.Contains(line, "NOT_A_LEVEL") {
			found = true
		}
	}
	if !found {
		t.Error("invalid env value was not reported")
	}
}

func TestChangeAudit(t *testing.T) {
	l := newTestLogger(t)
	w := addCapture(t, l, "CAP", level.FullDebug, format.VerbNone)

	// Audit lines only appear while LOG runs at full debug.
	l.SetComponentLevel(component.FSAL, level.Debug, "test")
	for _, line := range w.Lines() {
		if strings.Contains(line, "Changing log level") {
			t.Fatalf("audit line %q emitted without LOG at full debug", line)
		}
	}

	l.SetComponentLevel(component.Log, level.FullDebug, "test")
	l.SetComponentLevel(component.FSAL, level.Info, "test")

	found := false
	for _, line := range w.Lines() {
		if strings.Contains(line, "LOG: Changing log level of COMPONENT_FSAL from NIV_DEBUG to NIV_INFO") {
			found = true
		}
	}
	if !found {
		t.Errorf("audit line missing from %q", w.Lines())
	}
}

func TestThreadTag(t *testing.T) {
	l := newTestLogger(t)
	w := addCapture(t, l, "CAP", level.FullDebug, format.VerbComponent)

	worker := l.NewThread("worker_7")
	worker.Logf(component.Dispatch, level.Event, "hello from %s", worker.Name())

	lines := w.Lines()
	if len(lines) != 1 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.HasPrefix(lines[0], "[worker_7] ") {
		t.Errorf("line %q does not start with the thread tag", lines[0])
	}
	if !strings.Contains(lines[0], "DISP :EVENT :hello from worker_7") {
		t.Errorf("line %q is missing component block or message", lines[0])
	}
}

func TestAnonymousThreadTag(t *testing.T) {
	l := newTestLogger(t)
	w := addCapture(t, l, "CAP", level.FullDebug, format.VerbComponent)

	l.Eventf(component.Main, "anonymous")

	lines := w.Lines()
	if len(lines) != 1 || !strings.HasPrefix(lines[0], "[* log emergency *] ") {
		t.Errorf("lines = %q, want the sentinel thread tag", lines)
	}
}

func TestFatalRunsCleanupChain(t *testing.T) {
	l := New("testprog", 0, nil, nil)
	var order []string
	exitCode := -1
	l.SetExitFunc(func(code int) { exitCode = code })
	l.RegisterCleanup(func() { order = append(order, "first") })
	l.RegisterCleanup(func() { order = append(order, "second") })

	addCapture(t, l, "CAP", level.FullDebug, format.VerbNone)
	l.Fatalf(component.Main, "going down")

	if exitCode != 2 {
		t.Errorf("exit code = %d, want 2", exitCode)
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("cleanup order = %v, want most recent first", order)
	}
}

func TestEmergencyContext(t *testing.T) {
	l := newTestLogger(t)
	w := addCapture(t, l, "CAP", level.FullDebug, format.VerbNone)

	l.LogEmergency(component.LogEmerg, level.Crit, "allocation trouble")

	lines := w.Lines()
	if len(lines) != 1 || lines[0] != "allocation trouble" {
		t.Errorf("lines = %q", lines)
	}
}

func TestConcurrentLoggingWithToggling(t *testing.T) {
	const perThread = 10000

	l := newTestLogger(t)
	l.SetComponentLevel(component.All, level.FullDebug, "test")
	w := addCapture(t, l, "STREAM", level.Info, format.VerbNone)
	if err := l.Registry().Create("TOGGLE", facility.KindCustom, &testWriter{}, level.FullDebug, format.VerbNone); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for _, name := range []string{"t1", "t2"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			th := l.NewThread(name)
			for i := 0; i < perThread; i++ {
				lv := level.Info
				if i%2 == 1 {
					lv = level.Debug // above the STREAM threshold
				}
				th.Logf(component.Dispatch, lv, "%s-%d", name, i)
			}
		}(name)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if err := l.EnableFacility("TOGGLE"); err != nil {
				t.Errorf("enable: %v", err)
			}
			if err := l.DisableFacility("TOGGLE"); err != nil {
				t.Errorf("disable: %v", err)
			}
		}
	}()
	wg.Wait()

	lines := w.Lines()
	if len(lines) != perThread {
		t.Fatalf("delivered %d lines, want %d", len(lines), perThread)
	}
	// Every line is complete: the exact text of an admitted message.
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(line, "-", 2)
		if len(parts) != 2 || (parts[0] != "t1" && parts[0] != "t2") {
			t.Fatalf("malformed line %q", line)
		}
		if seen[line] {
			t.Fatalf("duplicate line %q", line)
		}
		seen[line] = true
	}
}

func TestMemoryFacilityTail(t *testing.T) {
	l := newTestLogger(t)
	tail, err := l.CreateMemoryFacility("MEMORY", 2, level.FullDebug, format.VerbNone)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.EnableFacility("MEMORY"); err != nil {
		t.Fatal(err)
	}

	l.Eventf(component.Main, "one")
	l.Eventf(component.Main, "two")
	l.Eventf(component.Main, "three")

	got := tail.Lines()
	if len(got) != 2 || got[0] != "two" || got[1] != "three" {
		t.Errorf("tail = %q, want [two three]", got)
	}
}
