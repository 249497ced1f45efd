package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"prognosis/internal/platform/metrics"
	"prognosis/internal/platform/middleware"
	"prognosis/pkg/platform/httputil"
)

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// RouterDeps are the pieces NewRouter assembles.
type RouterDeps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Validator enables bearer authentication on the API routes when set.
	Validator middleware.JWTValidator
	// Ready reports whether the service can serve predictions.
	Ready func() bool
	// Checks probe optional backing services for /healthz.
	Checks map[string]func(context.Context) error
	// RateLimit wraps the API routes after authentication when set.
	RateLimit func(http.Handler) http.Handler
	API       []Registrar
}

// NewRouter builds the chi router: request metadata and recovery on every
// route, authentication on the API group only.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Instrument(deps.Metrics))

	r.Get("/healthz", handleHealth(deps.Ready, deps.Checks))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(api chi.Router) {
		if deps.Validator != nil {
			api.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		}
		if deps.RateLimit != nil {
			api.Use(deps.RateLimit)
		}
		for _, reg := range deps.API {
			reg.Register(api)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// handleHealth always answers 200 while the process is up; "degraded" tells
// operators the model failed to load or a backing service is unreachable.
func handleHealth(ready func() bool, checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if ready != nil && !ready() {
			resp.Status = "degraded"
		}
		if len(checks) > 0 {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			resp.Checks = make(map[string]string, len(checks))
			for name, check := range checks {
				if err := check(ctx); err != nil {
					resp.Checks[name] = err.Error()
					resp.Status = "degraded"
					continue
				}
				resp.Checks[name] = "ok"
			}
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}
