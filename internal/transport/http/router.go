package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"raffle/internal/platform/metrics"
	"raffle/internal/platform/middleware"
	dErrors "raffle/pkg/domain-errors"
	"raffle/pkg/platform/httputil"
	authmw "raffle/pkg/platform/middleware/auth"
	"raffle/pkg/platform/middleware/metadata"
	"raffle/pkg/platform/middleware/requesttime"
)

// RouteRegistrar mounts a module's endpoints.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// RouterDeps carries everything the public router needs.
type RouterDeps struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Verifier authmw.SignatureVerifier
	Replay   authmw.ReplayGuard
	Health   map[string]HealthCheck
	Modules  []RouteRegistrar

	// RateLimit runs after signature verification so it can key on the caller.
	RateLimit func(http.Handler) http.Handler
}

// NewRouter wires the middleware chain, operational endpoints and module routes.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger, deps.Metrics))

	r.Get("/healthz", healthHandler(deps.Health))
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(authmw.VerifySignature(deps.Verifier, deps.Replay, deps.Logger))
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit)
		}
		for _, m := range deps.Modules {
			m.Register(r)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				msg := dErrors.MessageOf(err)
				if msg == "" {
					msg = "unavailable"
				}
				resp.Checks[name] = msg
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
