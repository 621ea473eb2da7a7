package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"
)

// HealthStatus represents the health status of the service.
type HealthStatus struct {
	Status       string                      `json:"status"`
	Service      string                      `json:"service"`
	Version      string                      `json:"version"`
	Timestamp    string                      `json:"timestamp"`
	Dependencies map[string]DependencyStatus `json:"dependencies,omitempty"`
}

// DependencyStatus represents the status of one external collaborator.
type DependencyStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

// HealthCheckFunc probes one dependency.
type HealthCheckFunc func(ctx context.Context) (bool, error)

// HealthCheckHandler handles liveness requests.
func HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := HealthStatus{
			Status:    "healthy",
			Service:   "emoscribe",
			Version:   "1.0.0",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(status)
	}
}

// ReadinessHandler handles readiness requests by probing each named
// dependency (transcription service, translator, classifier).
func ReadinessHandler(checks map[string]HealthCheckFunc) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		dependencies := make(map[string]DependencyStatus, len(checks))
		allHealthy := true

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for _, name := range names {
			check := checks[name]
			if check == nil {
				continue
			}

			start := time.Now()
			healthy, err := check(ctx)
			latency := time.Since(start).Milliseconds()

			status := "healthy"
			message := ""
			if err != nil || !healthy {
				status = "unhealthy"
				allHealthy = false
				if err != nil {
					message = err.Error()
				}
			}

			dependencies[name] = DependencyStatus{
				Status:    status,
				Message:   message,
				LatencyMs: latency,
			}
		}

		status := HealthStatus{
			Status:       "ready",
			Service:      "emoscribe",
			Version:      "1.0.0",
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
			Dependencies: dependencies,
		}

		w.Header().Set("Content-Type", "application/json")
		if !allHealthy {
			status.Status = "not_ready"
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		json.NewEncoder(w).Encode(status)
	}
}
