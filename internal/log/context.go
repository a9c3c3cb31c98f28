package log

import (
	"fmt"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/component"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/display"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

// emergencyThreadName tags the shared emergency context and any thread
// that never named itself.
const emergencyThreadName = "* log emergency *"

// threadContext is the per-thread scratch state: a reusable display
// buffer and the thread tag printed in headers. A context is owned by
// exactly one goroutine for the duration of a log call, so it needs no
// lock of its own.
type threadContext struct {
	name string
	buf  *display.Buffer
}

func newThreadContext() *threadContext {
	return &threadContext{
		name: emergencyThreadName,
		buf:  display.New(display.DefaultSize),
	}
}

// Thread is a named logging handle for one goroutine. It carries a
// private context, so messages logged through it render with a stable
// thread tag instead of the anonymous sentinel.
type Thread struct {
	l   *Logger
	ctx *threadContext
}

// NewThread returns a handle whose messages carry the given thread tag.
// The handle must not be shared between goroutines.
func (l *Logger) NewThread(name string) *Thread {
	return &Thread{
		l:   l,
		ctx: &threadContext{name: name, buf: display.New(display.DefaultSize)},
	}
}

// Name returns the thread tag.
func (t *Thread) Name() string { return t.ctx.name }

// SetName rewrites the thread tag.
func (t *Thread) SetName(name string) { t.ctx.name = name }

// Logf renders and dispatches one message through the thread's own
// context.
func (t *Thread) Logf(c component.Component, lv level.Level, msgFormat string, args ...any) {
	if !t.l.components.Enabled(c, lv) {
		return
	}
	t.l.deliver(t.ctx, 2, c, lv, fmt.Sprintf(msgFormat, args...))
	if lv == level.Fatal {
		t.l.fatal()
	}
}
