package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"

	"surfsup-server/internal/observability"
)

// unmatchedRoute labels requests no pattern claimed, keeping metric
// cardinality bounded regardless of the paths clients send.
const unmatchedRoute = "unmatched"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// requestLogger logs every request and records it in metrics (which may be nil).
// The route label is the ServeMux pattern, read after the mux has matched.
func requestLogger(next http.Handler, metrics *observability.Metrics, clock clockwork.Clock) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := clock.Now()

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		elapsed := clock.Since(start)
		route := r.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveRequest(route, r.Method, sr.status, elapsed)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", sr.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

// withCORS allows cross-origin GETs from the listed origins. With no
// origins the handler is returned unchanged.
func withCORS(next http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return next
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	}).Handler(next)
}
