package config

import (
	"sort"
	"strings"

	"github.com/zhanghaozz/nfs-ganesha/internal/log"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/component"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/format"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

func parseComponentName(name string) (component.Component, bool) {
	return component.Parse(name)
}

// Binder commits parsed configuration blocks against a live logger.
type Binder struct {
	logger *log.Logger
}

// NewBinder returns a binder for l.
func NewBinder(l *log.Logger) *Binder {
	return &Binder{logger: l}
}

// Apply commits cfg. Facility commit is best-effort: a failing
// facility is reported and counted, and once any facility has failed,
// the remaining ones are skipped and the format and component
// sub-blocks are discarded. After a clean facility commit, a bad
// format sub-block is counted and discarded on its own; the component
// levels are still installed. The returned count is the number of
// errors encountered.
func (b *Binder) Apply(cfg *Config) int {
	l := b.logger
	errCnt := 0

	for _, spec := range cfg.Log.Facilities {
		if errCnt > 0 {
			l.Eventf(component.Config, "Skipping facility (%s) due to errors", spec.Name)
			continue
		}
		if !b.applyFacility(spec) {
			errCnt++
		}
	}

	if errCnt > 0 {
		l.Critf(component.Config,
			"Error count (%d) while processing LOG config, new format and level settings discarded",
			errCnt)
		return errCnt
	}

	if cfg.Log.Format != nil {
		if fields, err := cfg.Log.Format.resolveFields(); err != nil {
			l.Critf(component.Config, "Invalid log format config: %v", err)
			errCnt++
		} else {
			l.Eventf(component.Config, "Changing definition of log fields")
			if err := l.SetFormat(fields); err != nil {
				l.Critf(component.Config, "Could not apply log format: %v", err)
				errCnt++
			}
		}
	}

	b.applyLevels(cfg)
	return errCnt
}

// applyFacility commits one facility specification. It reports success.
func (b *Binder) applyFacility(spec FacilitySpec) bool {
	l := b.logger

	if spec.Name == "" {
		l.Critf(component.Config, "Facility with empty name in LOG config")
		return false
	}

	maxLevel := level.Count // sentinel: not set
	if spec.MaxLevel != "" {
		lv, ok := level.Parse(spec.MaxLevel)
		if !ok {
			l.Critf(component.Config, "Facility (%s) has invalid max_level (%s)",
				spec.Name, spec.MaxLevel)
			return false
		}
		maxLevel = lv
	}
	verb := format.VerbFull
	if spec.Headers != "" {
		v, ok := format.ParseVerbosity(spec.Headers)
		if !ok {
			l.Critf(component.Config, "Facility (%s) has invalid headers (%s)",
				spec.Name, spec.Headers)
			return false
		}
		verb = v
	}

	_, err := l.Registry().Lookup(spec.Name)
	exists := err == nil

	if !exists {
		if spec.Destination == "" {
			// named before its real registration; remember its settings
			if err := l.Registry().CreatePlaceholder(spec.Name); err != nil {
				l.Critf(component.Config, "Failed to create facility (%s), (%v)", spec.Name, err)
				return false
			}
			if maxLevel != level.Count {
				if err := l.SetFacilityLevel(spec.Name, maxLevel); err != nil {
					l.Critf(component.Log, "Could not set severity level for (%s) because (%v)",
						spec.Name, err)
					return false
				}
			}
		} else if err := b.createFacility(spec.Name, spec.Destination, maxLevel, verb); err != nil {
			l.Critf(component.Config, "Failed to create facility (%s), (%v)", spec.Name, err)
			return false
		}
	}

	failed := false
	if exists && spec.Destination != "" {
		if err := l.SetFacilityDestination(spec.Name, spec.Destination); err != nil {
			l.Critf(component.Log, "Could not set destination for (%s) because (%v)",
				spec.Name, err)
			failed = true
		}
	}
	if !failed && exists && maxLevel != level.Count {
		if err := l.SetFacilityLevel(spec.Name, maxLevel); err != nil {
			l.Critf(component.Log, "Could not set severity level for (%s) because (%v)",
				spec.Name, err)
			failed = true
		}
	}
	if !failed {
		switch spec.Enable {
		case StateActive:
			if err := l.EnableFacility(spec.Name); err != nil {
				l.Critf(component.Config, "Could not enable (%s) because (%v)", spec.Name, err)
				failed = true
			}
		case StateDefault:
			oldDefault := l.Registry().Default()
			if err := l.SetDefaultFacility(spec.Name); err != nil {
				l.Critf(component.Config, "Could not make (%s) the default because (%v)",
					spec.Name, err)
				failed = true
			} else if !strings.EqualFold(oldDefault, spec.Name) {
				l.Eventf(component.Config, "Switched default logger from %s to %s",
					oldDefault, spec.Name)
			}
		}
	}

	if failed && !exists {
		l.Critf(component.Config, "Releasing new logger (%s) because of errors", spec.Name)
		if err := l.ReleaseFacility(spec.Name); err != nil {
			l.Critf(component.Config, "Could not release (%s) because (%v)", spec.Name, err)
		}
	}
	return !failed
}

// createFacility resolves the destination string: the two standard
// streams and the journal by keyword, anything else as a file path.
func (b *Binder) createFacility(name, dest string, maxLevel level.Level, verb format.Verbosity) error {
	l := b.logger
	if maxLevel == level.Count {
		maxLevel = level.FullDebug
	}
	switch {
	case strings.EqualFold(dest, "stdout") || strings.EqualFold(dest, "stderr"):
		return l.CreateStreamFacility(name, dest, maxLevel, verb)
	case strings.EqualFold(dest, "syslog") || strings.EqualFold(dest, "journal"):
		return l.CreateJournalFacility(name, maxLevel, verb)
	}
	return l.CreateFileFacility(name, dest, maxLevel, verb)
}

// applyLevels installs the default level and per-component overrides
// after a clean facility commit. Environment-pinned entries keep their
// level; the logger reports the rejection.
func (b *Binder) applyLevels(cfg *Config) {
	l := b.logger

	if cfg.Log.DefaultLevel != "" {
		lv, ok := level.Parse(cfg.Log.DefaultLevel)
		if ok {
			l.Eventf(component.Config, "Switching to new component log levels")
			l.SetComponentLevel(component.All, lv, "config")
		} else {
			l.Critf(component.Config, "Invalid default_level (%s)", cfg.Log.DefaultLevel)
		}
	}

	// deterministic application order for reproducible audit lines
	names := make([]string, 0, len(cfg.Log.Components))
	for name := range cfg.Log.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c, ok := parseComponentName(name)
		if !ok {
			l.Critf(component.Config, "Unknown component (%s) in LOG config", name)
			continue
		}
		lv, ok := level.Parse(cfg.Log.Components[name])
		if !ok {
			l.Critf(component.Config, "Component (%s) has invalid level (%s)",
				name, cfg.Log.Components[name])
			continue
		}
		l.SetComponentLevel(c, lv, "config")
	}
}
