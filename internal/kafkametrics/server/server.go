package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/G-Research/kafkametrics/internal/common/appcontext"
	"github.com/G-Research/kafkametrics/internal/common/health"
	"github.com/G-Research/kafkametrics/internal/common/requestid"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/configuration"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/metrics"
	"github.com/G-Research/kafkametrics/internal/kafkametrics/repository"
)

const DbCheckPath = "/test-db"

// Server exposes the metrics repository over JSON HTTP endpoints.
type Server struct {
	repo            repository.MetricsRepository
	dbChecker       health.Checker
	clock           clock.PassiveClock
	validate        *validator.Validate
	defaultPageSize int
	maxPageSize     int
	allowedOrigins  []string
}

func NewServer(
	config configuration.KafkaMetricsConfig,
	repo repository.MetricsRepository,
	dbChecker health.Checker,
	clock clock.PassiveClock,
) *Server {
	return &Server{
		repo:            repo,
		dbChecker:       dbChecker,
		clock:           clock,
		validate:        newValidator(),
		defaultPageSize: config.DefaultPageSize,
		maxPageSize:     config.MaxPageSize,
		allowedOrigins:  config.CorsAllowedOrigins,
	}
}

// Handler returns the full HTTP handler: every endpoint, wrapped with request ids and CORS.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	for _, e := range s.endpoints() {
		mux.Handle(e.path, s.handle(e))
	}

	checkers := map[string]health.Checker{}
	if s.dbChecker != nil {
		checkers[DbCheckPath] = s.dbChecker
	}
	health.SetupHttpMux(mux, s.clock, checkers)

	return requestid.Middleware(false, s.cors().Handler(mux))
}

func (s *Server) cors() *cors.Cors {
	if len(s.allowedOrigins) == 0 {
		return cors.AllowAll()
	}
	return cors.New(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestid.HeaderKey},
		ExposedHeaders: []string{requestid.HeaderKey},
	})
}

func (s *Server) handle(e endpoint) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			metrics.RequestsTotalCounter.WithLabelValues(e.path, strconv.Itoa(recorder.status)).Inc()
			metrics.RequestDurationHistogram.WithLabelValues(e.path).Observe(time.Since(start).Seconds())
		}()

		ctx := appcontext.WithLogFields(appcontext.New(r.Context(), log.NewEntry(log.StandardLogger())), log.Fields{
			"requestId": requestid.FromContextOrMissing(r.Context()),
			"endpoint":  e.path,
		})

		if r.Method != http.MethodPost {
			recorder.Header().Set("Allow", http.MethodPost)
			writeError(recorder, http.StatusMethodNotAllowed, "Method not allowed", nil)
			return
		}

		req, err := s.decodeRequest(r)
		if err != nil {
			ctx.Log.WithError(err).Info("Rejected invalid request")
			writeError(recorder, http.StatusBadRequest, "Invalid request", err)
			return
		}

		result, err := e.run(ctx, req)
		if err != nil {
			var badRequest *badRequestError
			if errors.As(err, &badRequest) {
				writeError(recorder, http.StatusBadRequest, "Invalid request", err)
				return
			}
			ctx.Log.WithError(err).Errorf("Error fetching %s", e.description)
			writeError(recorder, http.StatusInternalServerError, "Failed to fetch "+e.description, err)
			return
		}
		writeJSON(recorder, http.StatusOK, result)
	})
}
