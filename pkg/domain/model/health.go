package model

const (
	HealthStatusHealthy     = "healthy"
	HealthStatusUnavailable = "unavailable"
)

// HealthStatus is the body of the index server health endpoint
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
