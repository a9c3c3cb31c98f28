package api

// HealthData is the health check payload.
type HealthData struct {
	Status string `json:"status" example:"ok" doc:"Health status"`
}

// HealthResponse wraps the health check payload.
type HealthResponse struct {
	Body HealthData
}

// VersionData is the version payload.
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" doc:"Git commit hash"`
	BuildDate string `json:"build_date" doc:"Build timestamp"`
	GoVersion string `json:"go_version" doc:"Go toolchain version"`
	Platform  string `json:"platform" example:"linux/amd64" doc:"Build platform"`
}

// VersionResponse wraps the version payload.
type VersionResponse struct {
	Body VersionData
}

// ComponentLevel is one component's current minimum severity.
type ComponentLevel struct {
	Component string `json:"component" example:"COMPONENT_NFSPROTO" doc:"Full component name"`
	Level     string `json:"level" example:"NIV_EVENT" doc:"Minimum severity emitted"`
}

// ComponentListResponse lists every component's level.
type ComponentListResponse struct {
	Body struct {
		Components []ComponentLevel `json:"components" doc:"All components and their levels"`
	}
}

// ComponentResponse wraps one component's level.
type ComponentResponse struct {
	Body ComponentLevel
}

// SetLevelBody carries a level keyword.
type SetLevelBody struct {
	Level string `json:"level" example:"FULL_DEBUG" doc:"Level keyword, long or short form, case-insensitive"`
}

// FacilityData is a facility snapshot.
type FacilityData struct {
	Name        string `json:"name" example:"FILE" doc:"Unique facility name"`
	Kind        string `json:"kind" example:"file" doc:"Writer kind"`
	MaxLevel    string `json:"max_level" example:"NIV_FULL_DEBUG" doc:"Maximum severity accepted"`
	Headers     string `json:"headers" example:"all" doc:"Header verbosity"`
	Destination string `json:"destination,omitempty" example:"/var/log/ganesha.log" doc:"Where the facility writes"`
	Active      bool   `json:"active" doc:"Whether the facility receives messages"`
	Default     bool   `json:"default" doc:"Whether the facility is the default"`
}

// FacilityListResponse lists every registered facility.
type FacilityListResponse struct {
	Body struct {
		Facilities []FacilityData `json:"facilities" doc:"All registered facilities in registration order"`
	}
}

// FacilityResponse wraps one facility snapshot.
type FacilityResponse struct {
	Body FacilityData
}

// CreateFacilityBody describes a facility to create.
type CreateFacilityBody struct {
	Name        string `json:"name" example:"AUDIT" doc:"Unique facility name"`
	Destination string `json:"destination" example:"/var/log/audit.log" doc:"stdout, stderr, journal, or a file path"`
	MaxLevel    string `json:"max_level,omitempty" example:"INFO" doc:"Maximum severity accepted, defaults to NIV_FULL_DEBUG"`
	Headers     string `json:"headers,omitempty" example:"all" doc:"Header verbosity: none, component, or all"`
}

// SetDestinationBody carries a new destination.
type SetDestinationBody struct {
	Destination string `json:"destination" example:"/var/log/other.log" doc:"stdout, stderr, or a file path"`
}

// TailResponse returns the most recent rendered lines.
type TailResponse struct {
	Body struct {
		Lines []string `json:"lines" doc:"Retained lines, oldest first"`
	}
}
