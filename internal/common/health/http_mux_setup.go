package health

import (
	"net/http"

	"k8s.io/utils/clock"
)

// SetupHttpMux registers a liveness probe on /health and one readiness probe per entry of checkers, keyed by path.
func SetupHttpMux(mux *http.ServeMux, clock clock.PassiveClock, checkers map[string]Checker) {
	mux.Handle("/health", NewHealthCheckHttpHandler(nil, StatusRunning, clock))
	for path, checker := range checkers {
		mux.Handle(path, NewHealthCheckHttpHandler(checker, StatusHealthy, clock))
	}
}
