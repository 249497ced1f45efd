package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"prognosis/internal/assessment"
	"prognosis/internal/assessment/metrics"
	"prognosis/pkg/platform/httputil"
	"prognosis/pkg/requestcontext"
)

// Service defines the interface for assessment operations.
type Service interface {
	Evaluate(ctx context.Context, raw map[string]any) (*assessment.Assessment, error)
	Schema() []assessment.FormField
	ModelInfo() assessment.ModelInfo
	TypicalCases(ctx context.Context) ([]assessment.CaseResult, error)
}

// Handler wires assessment endpoints to the assessment service.
type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs an assessment handler with its dependencies.
func New(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// Register mounts assessment endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/schema", h.HandleSchema)
	r.Get("/api/model", h.HandleModel)
	r.Get("/api/cases", h.HandleCases)
	r.Post("/api/assessments", h.HandleEvaluate)
}

// HandleSchema handles GET /api/schema.
func (h *Handler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromSchema(h.service.Schema()))
}

// HandleModel handles GET /api/model.
func (h *Handler) HandleModel(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, FromModelInfo(h.service.ModelInfo()))
}

// HandleCases handles GET /api/cases.
func (h *Handler) HandleCases(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cases, err := h.service.TypicalCases(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "typical case evaluation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		h.metrics.IncrementCaseFailure()
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCases(cases))
}

// HandleEvaluate handles POST /api/assessments.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		h.metrics.IncrementRejectedRequest("assessments")
		return
	}

	result, err := h.service.Evaluate(ctx, req.Features)
	if err != nil {
		h.logger.WarnContext(ctx, "assessment rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "assessment served",
		"request_id", requestID,
		"assessment_id", result.ID,
		"risk_tier", result.Prediction.RiskTier,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromAssessment(result))
}
