package types

type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "UP"
	HealthStatusDown     HealthStatus = "DOWN"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	// HealthStatusDisabled marks an optional dependency this deployment runs without.
	HealthStatusDisabled HealthStatus = "DISABLED"
)

// Component names used in HealthCheck.Components.
const (
	HealthComponentDatabase      = "database"
	HealthComponentRosterCache   = "rosterCache"
	HealthComponentExportStorage = "exportStorage"
	HealthComponentEmail         = "email"
)

// HealthComponent reports one dependency. Only a required component that is
// down takes the whole service down; optional ones degrade it.
type HealthComponent struct {
	Status    HealthStatus `json:"status"`
	Required  bool         `json:"required"`
	Details   string       `json:"details,omitempty"`
	LatencyMS int64        `json:"latencyMs"`
}

// HealthCheck is the body of /health and /health/readiness. Capabilities
// names the form variant the deployment serves.
type HealthCheck struct {
	Status       HealthStatus               `json:"status"`
	Components   map[string]HealthComponent `json:"components"`
	Capabilities Capabilities               `json:"capabilities"`
	Version      string                     `json:"version"`
	Timestamp    string                     `json:"timestamp"`
	Uptime       string                     `json:"uptime"`
}
