package obs

import "context"

// HealthStatus reports the overall health of the tensorstore subsystem.
type HealthStatus struct {
	Status string
	Checks map[string]*CheckResult
}

// CheckResult is one named health probe's outcome.
type CheckResult struct {
	Healthy bool
	Message string
}

// HealthChecker reports whether this package's metrics are available; it
// does not inspect open-file or mmap counts. Adapted from the teacher's
// internal/obs/health.go, narrowed to the one thing a tensorstore-backed
// process can meaningfully self-check: that metrics registration succeeded.
type HealthChecker struct {
	metrics *Metrics
}

// NewHealthChecker creates a health checker bound to the process metrics.
func NewHealthChecker(metrics *Metrics) *HealthChecker {
	return &HealthChecker{metrics: metrics}
}

// Check performs the health check.
func (hc *HealthChecker) Check(ctx context.Context) (*HealthStatus, error) {
	healthy := hc.metrics != nil
	status, msg := "degraded", "metrics not initialized"
	if healthy {
		status, msg = "healthy", "metrics registered"
	}
	return &HealthStatus{
		Status: status,
		Checks: map[string]*CheckResult{
			"metrics": {Healthy: healthy, Message: msg},
		},
	}, nil
}
