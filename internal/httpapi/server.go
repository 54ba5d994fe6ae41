package httpapi

import (
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"surfsup-server/internal/config"
	"surfsup-server/internal/observability"
)

const readHeaderTimeout = 5 * time.Second

// NewServer wraps mux with CORS, request logging and metrics.
func NewServer(cfg config.Config, mux *http.ServeMux, metrics *observability.Metrics) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewHandler(cfg, mux, metrics, clockwork.NewRealClock()),
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// NewHandler builds the middleware chain around mux.
func NewHandler(cfg config.Config, mux *http.ServeMux, metrics *observability.Metrics, clock clockwork.Clock) http.Handler {
	return requestLogger(withCORS(mux, cfg.CORSAllowedOrigins), metrics, clock)
}
