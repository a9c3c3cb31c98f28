package facility

import (
	"fmt"
	"strings"
	"sync"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/display"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/format"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

// Registry owns every facility in the process. Log calls walk the
// active list under the read lock; structural changes (registration,
// enable/disable, default switch, reconfiguration) take the write lock
// and are rare. The registry maintains two invariants: the active set
// is a subset of the registered set, and once a default is set there
// is exactly one and it is active.
type Registry struct {
	mu         sync.RWMutex
	registered []*Facility // insertion order
	active     []*Facility // activation order
	def        *Facility
	maxVerb    format.Verbosity

	metrics *Metrics
}

// NewRegistry returns an empty registry. metrics may be nil.
func NewRegistry(metrics *Metrics) *Registry {
	return &Registry{metrics: metrics}
}

// find locates a facility by case-insensitive name. Caller holds mu.
func (r *Registry) find(name string) *Facility {
	for _, f := range r.registered {
		if strings.EqualFold(f.name, name) {
			return f
		}
	}
	return nil
}

// recomputeMaxVerb rescans the active list. Caller holds mu for write.
func (r *Registry) recomputeMaxVerb() {
	max := format.VerbNone
	for _, f := range r.active {
		if f.verb > max {
			max = f.verb
		}
	}
	r.maxVerb = max
}

// activate appends f to the active list. Caller holds mu for write.
func (r *Registry) activate(f *Facility) {
	if f.active {
		return
	}
	f.active = true
	r.active = append(r.active, f)
	if f.verb > r.maxVerb {
		r.maxVerb = f.verb
	}
	if r.metrics != nil {
		r.metrics.activeGauge.Inc()
	}
}

// deactivate removes f from the active list. Caller holds mu for write.
func (r *Registry) deactivate(f *Facility) {
	if !f.active {
		return
	}
	f.active = false
	for i, a := range r.active {
		if a == f {
			r.active = append(r.active[:i], r.active[i+1:]...)
			break
		}
	}
	if f.verb == r.maxVerb {
		r.recomputeMaxVerb()
	}
	if r.metrics != nil {
		r.metrics.activeGauge.Dec()
	}
}

// MaxVerbosity returns the highest header verbosity any active
// facility needs; the formatter skips header work above it.
func (r *Registry) MaxVerbosity() format.Verbosity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.maxVerb
}

// Create builds and registers a new facility. It fails with ErrInvalid
// on an empty name or out-of-range level and with ErrExists if the
// name is taken, placeholder or not. File-path validation belongs to
// NewFileWriter, before the facility is constructed.
func (r *Registry) Create(name string, kind Kind, w Writer, maxLevel level.Level, verb format.Verbosity) error {
	if name == "" {
		return fmt.Errorf("%w: empty facility name", ErrInvalid)
	}
	if !maxLevel.Valid() {
		return fmt.Errorf("%w: level %d out of range", ErrInvalid, int(maxLevel))
	}
	if verb < format.VerbNone || verb >= format.VerbCount {
		return fmt.Errorf("%w: header verbosity %d out of range", ErrInvalid, int(verb))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.find(name) != nil {
		return fmt.Errorf("%w: %s", ErrExists, name)
	}
	r.registered = append(r.registered, New(name, kind, w, maxLevel, verb))
	return nil
}

// CreatePlaceholder registers a null facility for a name the
// configuration referenced before the real destination exists. It is
// a no-op if the name is already registered.
func (r *Registry) CreatePlaceholder(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty facility name", ErrInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.find(name) != nil {
		return nil
	}
	r.registered = append(r.registered, New(name, KindNull, nil, level.FullDebug, format.VerbFull))
	return nil
}

// Register adds an externally constructed facility. A same-named
// placeholder is discarded; the new facility inherits its severity
// threshold and its active and default state. A same-named real
// facility is a duplicate registration.
func (r *Registry) Register(f *Facility) error {
	if f == nil || f.name == "" {
		return fmt.Errorf("%w: nil or unnamed facility", ErrInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.find(f.name)
	if existing != nil {
		if !existing.placeholder() {
			return fmt.Errorf("%w: %s", ErrExists, existing.name)
		}
		f.maxLevel = existing.maxLevel
		wasActive := existing.active
		wasDefault := r.def == existing
		r.deactivate(existing)
		r.remove(existing)
		if wasActive {
			r.activate(f)
		}
		if wasDefault {
			r.def = f
		}
	}
	r.registered = append(r.registered, f)
	return nil
}

// remove drops f from the registered list. Caller holds mu for write.
func (r *Registry) remove(f *Facility) {
	for i, g := range r.registered {
		if g == f {
			r.registered = append(r.registered[:i], r.registered[i+1:]...)
			return
		}
	}
}

// Release removes the named facility from both sets. Releasing the
// default is rejected: that could leave the process with no usable
// output.
func (r *Registry) Release(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.find(name)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if f == r.def {
		return fmt.Errorf("%w: release %s", ErrDefault, name)
	}
	r.deactivate(f)
	r.remove(f)
	return nil
}

// Enable adds the named facility to the active set.
func (r *Registry) Enable(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty facility name", ErrInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.find(name)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if f.active {
		return fmt.Errorf("%w: %s", ErrAlreadyEnabled, name)
	}
	r.activate(f)
	return nil
}

// Disable removes the named facility from the active set. Disabling
// the default is rejected.
func (r *Registry) Disable(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty facility name", ErrInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.find(name)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if !f.active {
		return fmt.Errorf("%w: %s", ErrAlreadyDisabled, name)
	}
	if f == r.def {
		return fmt.Errorf("%w: disable %s", ErrDefault, name)
	}
	r.deactivate(f)
	return nil
}

// SetDefault promotes the named facility to default, activating it if
// necessary. The previous default leaves the active set. The switch is
// atomic under the write lock: no dispatch observes zero defaults.
func (r *Registry) SetDefault(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty facility name", ErrInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.find(name)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if f == r.def {
		return nil
	}
	r.activate(f)
	if r.def != nil {
		r.deactivate(r.def)
	}
	r.def = f
	return nil
}

// Default returns the current default facility name, or "".
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.def == nil {
		return ""
	}
	return r.def.name
}

// SetLevel updates the named facility's maximum accepted severity.
func (r *Registry) SetLevel(name string, max level.Level) error {
	if name == "" {
		return fmt.Errorf("%w: empty facility name", ErrInvalid)
	}
	if !max.Valid() {
		return fmt.Errorf("%w: level %d out of range", ErrInvalid, int(max))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.find(name)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	f.maxLevel = max
	return nil
}

// Level returns the named facility's maximum accepted severity.
func (r *Registry) Level(name string) (level.Level, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f := r.find(name)
	if f == nil {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return f.maxLevel, nil
}

// SetDestination re-points a stream facility to "stdout"/"stderr" or
// rewrites a file facility's path. Other kinds are rejected. The old
// path is replaced only after the new one validates.
func (r *Registry) SetDestination(name, dest string) error {
	if name == "" || dest == "" {
		return fmt.Errorf("%w: empty facility name or destination", ErrInvalid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f := r.find(name)
	if f == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	switch f.kind {
	case KindStream:
		return f.writer.(*StreamWriter).SetTarget(dest)
	case KindFile:
		return f.writer.(*FileWriter).SetPath(dest)
	}
	return fmt.Errorf("%w: destination of %s facility %s is not changeable", ErrInvalid, f.kind, name)
}

// Dispatch walks the active list in insertion order and hands the
// rendered buffer to every facility whose threshold admits the
// message. Writer calls run under the read lock; a slow destination
// slows logging, by choice, instead of copying the message.
func (r *Registry) Dispatch(l level.Level, b *display.Buffer, v Views) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.active {
		// placeholders have nowhere to write; they don't suppress
		if f.writer == nil {
			continue
		}
		if l > f.maxLevel {
			if r.metrics != nil {
				r.metrics.suppressed.WithLabelValues(f.name).Inc()
			}
			continue
		}
		if err := f.writer.Write(f.verb, l, b, v); err != nil {
			if r.metrics != nil {
				r.metrics.writeErrors.WithLabelValues(f.name).Inc()
			}
			continue
		}
		if r.metrics != nil {
			r.metrics.dispatched.WithLabelValues(f.name).Inc()
		}
	}
}

// List snapshots every registered facility in insertion order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.registered))
	for _, f := range r.registered {
		infos = append(infos, Info{
			Name:        f.name,
			Kind:        f.kind,
			MaxLevel:    f.maxLevel,
			Verbosity:   f.verb,
			Destination: f.destination(),
			Active:      f.active,
			Default:     f == r.def,
		})
	}
	return infos
}

// Lookup snapshots one facility by name.
func (r *Registry) Lookup(name string) (Info, error) {
	for _, info := range r.List() {
		if strings.EqualFold(info.Name, name) {
			return info, nil
		}
	}
	return Info{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}
