package events

// Event type constants for kelindar/event.
const (
	TypeLevelChanged uint32 = iota + 1
	TypeFacilityChanged
	TypeConfigReloaded
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// LevelChangedEvent is published when a component's severity level
// changes, whether from configuration, an administrative request, or a
// signal.
type LevelChangedEvent struct {
	Component string `json:"component" example:"COMPONENT_NFSPROTO" doc:"Component whose level changed"`
	Old       string `json:"old" example:"NIV_EVENT" doc:"Previous severity level"`
	New       string `json:"new" example:"NIV_FULL_DEBUG" doc:"New severity level"`
	Source    string `json:"source" example:"config" doc:"Origin of the change: config, api, env, signal"`
	Timestamp string `json:"timestamp" example:"2026-08-24T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for LevelChangedEvent.
func (e LevelChangedEvent) Type() uint32 { return TypeLevelChanged }

// FacilityChangedEvent is published on any facility lifecycle change:
// registration, release, enable, disable, default switch, or a level
// or destination update.
type FacilityChangedEvent struct {
	Facility  string `json:"facility" example:"FILE" doc:"Facility name"`
	Action    string `json:"action" example:"enabled" doc:"Action: registered, released, enabled, disabled, default, level, destination"`
	Detail    string `json:"detail,omitempty" example:"/var/log/ganesha.log" doc:"Action-specific detail such as a new level or destination"`
	Timestamp string `json:"timestamp" example:"2026-08-24T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for FacilityChangedEvent.
func (e FacilityChangedEvent) Type() uint32 { return TypeFacilityChanged }

// ConfigReloadedEvent is published after a configuration file reload
// has been applied, successfully or not.
type ConfigReloadedEvent struct {
	Path      string `json:"path" example:"/etc/ganesha/log.toml" doc:"Configuration file path"`
	Errors    int    `json:"errors" example:"0" doc:"Number of facility blocks that failed to apply"`
	Timestamp string `json:"timestamp" example:"2026-08-24T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ConfigReloadedEvent.
func (e ConfigReloadedEvent) Type() uint32 { return TypeConfigReloaded }
