// Package config translates the TOML configuration file into logging
// runtime operations. Parsing is separated from binding: Load produces
// the typed block, Binder.Apply commits it against a live logger.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/zhanghaozz/nfs-ganesha/internal/log/format"
	"github.com/zhanghaozz/nfs-ganesha/internal/log/level"
)

// Facility lifecycle states a specification can request.
const (
	StateIdle    = "idle"
	StateActive  = "active"
	StateDefault = "default"
)

// FacilitySpec describes one destination in the configuration file.
type FacilitySpec struct {
	Name        string `toml:"name"`
	Destination string `toml:"destination"`
	MaxLevel    string `toml:"max_level"`
	Headers     string `toml:"headers"`
	Enable      string `toml:"enable"`
}

// FormatSpec is the header-format sub-block. The boolean field toggles
// and user patterns come from format.Fields; the date and time modes
// are config tokens resolved at bind time.
type FormatSpec struct {
	format.Fields
	DateFormat string `toml:"date_format"`
	TimeFormat string `toml:"time_format"`
}

// LogConfig is the [log] block.
type LogConfig struct {
	DefaultLevel string            `toml:"default_level"`
	Facilities   []FacilitySpec    `toml:"facility"`
	Format       *FormatSpec       `toml:"format"`
	Components   map[string]string `toml:"components"`
}

// Config is the root of the configuration file.
type Config struct {
	Log LogConfig `toml:"log"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// resolveFields compiles a format sub-block into format.Fields,
// resolving the mode tokens.
func (s *FormatSpec) resolveFields() (format.Fields, error) {
	fields := s.Fields
	if s.DateFormat != "" {
		mode, ok := format.ParseTimeDateMode(s.DateFormat)
		if !ok {
			return fields, fmt.Errorf("unknown date format %q", s.DateFormat)
		}
		fields.DateFormat = mode
	}
	if s.TimeFormat != "" {
		mode, ok := format.ParseTimeDateMode(s.TimeFormat)
		if !ok {
			return fields, fmt.Errorf("unknown time format %q", s.TimeFormat)
		}
		fields.TimeFormat = mode
	}
	if err := fields.Validate(); err != nil {
		return fields, err
	}
	return fields, nil
}

// Validate checks the configuration without touching a logger: level
// keywords, header tokens, state tokens, format modes and component
// names must all resolve. It returns every problem found.
func (c *Config) Validate() []error {
	var errs []error

	if c.Log.DefaultLevel != "" {
		if _, ok := level.Parse(c.Log.DefaultLevel); !ok {
			errs = append(errs, fmt.Errorf("unknown default_level %q", c.Log.DefaultLevel))
		}
	}
	for _, spec := range c.Log.Facilities {
		if spec.Name == "" {
			errs = append(errs, fmt.Errorf("facility with empty name"))
			continue
		}
		if spec.MaxLevel != "" {
			if _, ok := level.Parse(spec.MaxLevel); !ok {
				errs = append(errs, fmt.Errorf("facility %s: unknown max_level %q", spec.Name, spec.MaxLevel))
			}
		}
		if spec.Headers != "" {
			if _, ok := format.ParseVerbosity(spec.Headers); !ok {
				errs = append(errs, fmt.Errorf("facility %s: unknown headers %q", spec.Name, spec.Headers))
			}
		}
		switch spec.Enable {
		case "", StateIdle, StateActive, StateDefault:
		default:
			errs = append(errs, fmt.Errorf("facility %s: unknown enable state %q", spec.Name, spec.Enable))
		}
	}
	if c.Log.Format != nil {
		if _, err := c.Log.Format.resolveFields(); err != nil {
			errs = append(errs, fmt.Errorf("format: %w", err))
		}
	}
	for name, lvl := range c.Log.Components {
		if _, ok := parseComponentName(name); !ok {
			errs = append(errs, fmt.Errorf("unknown component %q", name))
		}
		if _, ok := level.Parse(lvl); !ok {
			errs = append(errs, fmt.Errorf("component %s: unknown level %q", name, lvl))
		}
	}
	return errs
}
