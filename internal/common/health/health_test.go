package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clock "k8s.io/utils/clock/testing"
)

var testTime = time.Date(2024, time.March, 4, 12, 30, 0, 0, time.UTC)

func failing(msg string) Checker {
	return CheckerFunc(func(ctx context.Context) error { return errors.New(msg) })
}

func passing() Checker {
	return CheckerFunc(func(ctx context.Context) error { return nil })
}

func TestMultiChecker(t *testing.T) {
	assert.NoError(t, NewMultiChecker().Check(context.Background()))
	assert.NoError(t, NewMultiChecker(passing(), passing()).Check(context.Background()))

	mc := NewMultiChecker(passing(), failing("db down"))
	mc.Add(failing("disk full"))
	err := mc.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Contains(t, err.Error(), "disk full")
}

func TestSetupHttpMux(t *testing.T) {
	mux := http.NewServeMux()
	SetupHttpMux(mux, clock.NewFakePassiveClock(testTime), map[string]Checker{
		"/ready":  passing(),
		"/broken": failing("db down"),
	})

	tests := map[string]struct {
		path           string
		expectedCode   int
		expectedStatus string
		expectedError  string
	}{
		"liveness": {
			path:           "/health",
			expectedCode:   http.StatusOK,
			expectedStatus: StatusRunning,
		},
		"passing readiness": {
			path:           "/ready",
			expectedCode:   http.StatusOK,
			expectedStatus: StatusHealthy,
		},
		"failing readiness": {
			path:           "/broken",
			expectedCode:   http.StatusServiceUnavailable,
			expectedStatus: StatusFailing,
			expectedError:  "db down",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var response Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, tc.expectedStatus, response.Status)
			assert.Equal(t, "2024-03-04T12:30:00Z", response.Timestamp)
			assert.Contains(t, response.Error, tc.expectedError)
		})
	}
}
