package health

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

const (
	StatusRunning = "Server running"
	StatusHealthy = "Healthy"
	StatusFailing = "Unhealthy"
)

type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

// HealthCheckHttpHandler answers 200 with a timestamped status while checker passes and 503 otherwise.
// A failing dependency is reported as 503 Unavailable rather than 500 so that readiness probes and load
// balancers take the instance out of rotation instead of treating it as a server bug.
// A nil checker is a pure liveness probe.
type HealthCheckHttpHandler struct {
	checker Checker
	okText  string
	clock   clock.PassiveClock
}

func NewHealthCheckHttpHandler(checker Checker, okText string, clock clock.PassiveClock) *HealthCheckHttpHandler {
	return &HealthCheckHttpHandler{
		checker: checker,
		okText:  okText,
		clock:   clock,
	}
}

func (h *HealthCheckHttpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := Response{
		Status:    h.okText,
		Timestamp: h.clock.Now().UTC().Format(time.RFC3339Nano),
	}
	status := http.StatusOK

	if h.checker != nil {
		if err := h.checker.Check(r.Context()); err != nil {
			log.Warnf("Health check failed: %v", err)
			response.Status = StatusFailing
			response.Error = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Errorf("Failed to write health check response: %v", err)
	}
}
