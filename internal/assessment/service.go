// Package assessment runs post-operative risk assessments: it reconciles the
// clinician's input against the model contract, calls the model, and
// explains the prediction.
//
// Prediction and explanation are separate stages. A failed prediction fails
// the request; a failed explanation only drops the attribution from the
// result and attaches a warning.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"prognosis/internal/assessment/metrics"
	"prognosis/internal/attribution"
	"prognosis/internal/audit"
	"prognosis/internal/contract"
	"prognosis/internal/model"
	"prognosis/internal/prediction"
	"prognosis/internal/reconcile"
	"prognosis/internal/schema"
	"prognosis/internal/study"
	dErrors "prognosis/pkg/domain-errors"
	"prognosis/pkg/requestcontext"
)

const tracerName = "prognosis/internal/assessment"

// Auditor receives one event per evaluation.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service evaluates assessments against one loaded model. It is read-only
// after construction and safe for concurrent use.
type Service struct {
	study    *study.Study
	registry *schema.Registry
	handle   *model.Handle
	contract *contract.Contract
	loadErr  error

	invoker  *prediction.Invoker
	reporter *attribution.Reporter

	engine  attribution.Engine
	cache   attribution.Cache
	strict  bool
	auditor Auditor
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// WithAttributionEngine replaces the exact Shapley engine.
func WithAttributionEngine(e attribution.Engine) Option {
	return func(s *Service) {
		s.engine = e
	}
}

// WithAttributionCache memoizes explanations per model and contract.
func WithAttributionCache(c attribution.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithStrictContract makes construction fail when the model cannot be loaded
// or its contract is unverified or has gaps.
func WithStrictContract(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Load reads the model artifact at modelPath. A load failure is not fatal
// unless the contract is strict: the service starts degraded and answers
// every evaluation with the stored load error.
func Load(st *study.Study, modelPath string, opts ...Option) (*Service, error) {
	handle, err := model.LoadFile(modelPath)
	if err != nil {
		return Degraded(st, err, opts...)
	}
	return New(st, handle, opts...)
}

// New resolves the contract for handle and prepares both stages.
func New(st *study.Study, handle *model.Handle, opts ...Option) (*Service, error) {
	s, err := newService(st, opts...)
	if err != nil {
		return nil, err
	}
	if handle == nil || handle.Classifier == nil {
		return s.degrade(&model.LoadError{Err: errors.New("no model loaded")})
	}
	s.handle = handle

	c, err := contract.Resolve(handle.Classifier, s.registry, contract.Options{
		AdverseLabel: st.AdverseLabel,
		Logger:       s.logger,
	})
	if err != nil {
		if errors.Is(err, model.ErrModelLoad) {
			return s.degrade(err)
		}
		return nil, fmt.Errorf("resolve model contract: %w", err)
	}
	if s.strict {
		if err := c.Strict(); err != nil {
			return nil, err
		}
	}
	s.contract = c

	if err := s.buildReporter(); err != nil {
		s.logger.Warn("attribution disabled", "error", err)
	}

	s.logger.Info("model loaded",
		"kind", handle.Kind,
		"path", handle.Path,
		"digest", handle.Digest,
		"features", len(c.RequiredOrder),
		"verified", c.Verified,
		"gaps", len(c.Gaps),
		"adverse_index", c.AdverseIndex,
	)
	return s, nil
}

// Degraded builds a service with no model. Schema and study metadata stay
// available; evaluations return loadErr.
func Degraded(st *study.Study, loadErr error, opts ...Option) (*Service, error) {
	s, err := newService(st, opts...)
	if err != nil {
		return nil, err
	}
	return s.degrade(loadErr)
}

func newService(st *study.Study, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("study is required")
	}
	reg, err := st.Registry()
	if err != nil {
		return nil, fmt.Errorf("build feature registry: %w", err)
	}
	s := &Service{
		study:    st,
		registry: reg,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.invoker, err = prediction.NewInvoker(st.RiskThresholds(), s.logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) degrade(loadErr error) (*Service, error) {
	if !errors.Is(loadErr, model.ErrModelLoad) {
		loadErr = &model.LoadError{Err: loadErr}
	}
	if s.strict {
		return nil, loadErr
	}
	s.loadErr = loadErr
	s.logger.Error("model unavailable; serving in degraded mode", "error", loadErr)
	return s, nil
}

func (s *Service) buildReporter() error {
	engine := s.engine
	if engine == nil {
		baseline := reconcile.Defaults(s.contract, s.registry).Row()
		shapley, err := attribution.NewShapleyEngine(baseline)
		if err != nil {
			return err
		}
		engine = shapley
	}
	opts := []attribution.Option{attribution.WithLogger(s.logger)}
	if s.cache != nil {
		opts = append(opts, attribution.WithCache(s.cache, s.handle.Digest+":"+s.contract.Fingerprint))
	}
	reporter, err := attribution.NewReporter(engine, opts...)
	if err != nil {
		return err
	}
	s.reporter = reporter
	return nil
}

// Available reports whether a model is loaded.
func (s *Service) Available() bool {
	return s.loadErr == nil
}

// Evaluate assesses one patient. raw maps feature names to values in any key
// order; every feature the contract requires must be present.
func (s *Service) Evaluate(ctx context.Context, raw map[string]any) (*Assessment, error) {
	start := time.Now()
	requestID := requestcontext.RequestID(ctx)

	ctx, span := s.tracer.Start(ctx, "assessment.Evaluate")
	defer span.End()

	result, err := s.evaluate(ctx, raw)
	s.metrics.ObserveEvaluateLatency(time.Since(start))

	event := audit.Event{
		RequestID: requestID,
		Subject:   requestcontext.Subject(ctx),
		Timestamp: requestcontext.Now(ctx),
	}
	if s.contract != nil {
		event.ContractVerified = s.contract.Verified
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		reason := failureReason(err)
		s.metrics.IncrementFailure(reason)
		event.Action = audit.ActionAssessmentFailed
		if reason == "validation" {
			event.Action = audit.ActionAssessmentRejected
		}
		event.Error = err.Error()
		s.emit(ctx, event)
		return nil, toDomainError(err)
	}

	span.SetAttributes(
		attribute.String("risk_tier", string(result.Prediction.RiskTier)),
		attribute.Bool("attribution", result.Attribution != nil),
	)
	s.metrics.IncrementOutcome(string(result.Prediction.RiskTier))

	event.ID = result.ID
	event.Action = audit.ActionAssessmentEvaluated
	event.RiskTier = string(result.Prediction.RiskTier)
	event.DeathProbability = result.Prediction.DeathProbability
	event.AttributionStatus = audit.AttributionOK
	switch {
	case s.reporter == nil:
		event.AttributionStatus = audit.AttributionSkipped
	case result.Attribution == nil:
		event.AttributionStatus = audit.AttributionFailed
	}
	s.emit(ctx, event)

	s.logger.InfoContext(ctx, "assessment evaluated",
		"request_id", requestID,
		"assessment_id", result.ID,
		"risk_tier", result.Prediction.RiskTier,
		"death_probability", result.Prediction.DeathProbability,
		"attribution", event.AttributionStatus,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// evaluate runs both stages without auditing. Errors are the raw domain
// errors; callers map them.
func (s *Service) evaluate(ctx context.Context, raw map[string]any) (*Assessment, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}

	// Stage 1: reconcile and predict. Any failure aborts.
	reconcileStart := time.Now()
	vector, err := reconcile.BuildVector(raw, s.contract, s.registry)
	s.metrics.ObserveStageLatency("reconcile", time.Since(reconcileStart))
	if err != nil {
		return nil, err
	}

	predictCtx, predictSpan := s.tracer.Start(ctx, "assessment.predict")
	predictStart := time.Now()
	res, err := s.invoker.Predict(predictCtx, s.handle.Classifier, s.contract, vector)
	s.metrics.ObserveStageLatency("predict", time.Since(predictStart))
	if err != nil {
		predictSpan.RecordError(err)
		predictSpan.SetStatus(codes.Error, err.Error())
		predictSpan.End()
		return nil, err
	}
	predictSpan.End()

	out := &Assessment{
		ID:               uuid.NewString(),
		EvaluatedAt:      s.now(),
		Inputs:           s.echoInputs(vector),
		Prediction:       *res,
		ContractVerified: s.contract.Verified,
	}

	// Stage 2: explain. Failure leaves the prediction intact.
	if s.reporter == nil {
		out.AttributionWarning = "feature attribution is not available for this model"
		return out, nil
	}
	explainCtx, explainSpan := s.tracer.Start(ctx, "assessment.explain")
	defer explainSpan.End()
	explainStart := time.Now()
	attr, err := s.reporter.Explain(explainCtx, s.handle.Classifier, vector, s.contract.AdverseIndex)
	s.metrics.ObserveStageLatency("explain", time.Since(explainStart))
	if err != nil {
		explainSpan.RecordError(err)
		s.metrics.IncrementAttributionFailure()
		s.logger.WarnContext(ctx, "attribution failed",
			"request_id", requestcontext.RequestID(ctx),
			"assessment_id", out.ID,
			"error", err,
		)
		out.AttributionWarning = "feature attribution could not be computed: " + err.Error()
		return out, nil
	}
	out.Attribution = attr
	return out, nil
}

func (s *Service) echoInputs(v *reconcile.FeatureVector) []Input {
	inputs := make([]Input, len(v.Names))
	for i, name := range v.Names {
		in := Input{Name: name, Value: v.Values[i]}
		if spec, err := s.registry.Lookup(name); err == nil {
			in.Label = spec.OptionLabel(v.Values[i])
			in.Unit = spec.Unit
		}
		inputs[i] = in
	}
	return inputs
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor != nil {
		s.auditor.Emit(ctx, event)
	}
}

// Schema lists the form fields in the order the model consumes them. Without
// a model the registry order is used.
func (s *Service) Schema() []FormField {
	if s.contract == nil {
		specs := s.registry.Specs()
		fields := make([]FormField, len(specs))
		for i, spec := range specs {
			fields[i] = FormField{FeatureSpec: spec, Described: true}
		}
		return fields
	}
	fields := make([]FormField, len(s.contract.RequiredOrder))
	for i, name := range s.contract.RequiredOrder {
		spec, err := s.registry.Lookup(name)
		if err != nil {
			fields[i] = FormField{FeatureSpec: schema.FeatureSpec{Name: name, Kind: schema.KindNumerical}}
			continue
		}
		fields[i] = FormField{FeatureSpec: spec, Described: true}
	}
	return fields
}

// ModelInfo reports the contract and the study's published model quality.
func (s *Service) ModelInfo() ModelInfo {
	info := ModelInfo{
		Available:  s.Available(),
		Thresholds: s.invoker.Thresholds(),
		Study: StudyInfo{
			Name:       s.study.Name,
			Version:    s.study.Version,
			Outcome:    s.study.Outcome,
			Metrics:    append([]study.Metric(nil), s.study.Metrics...),
			Disclaimer: s.study.Disclaimer,
		},
	}
	if s.loadErr != nil {
		info.Error = s.loadErr.Error()
		return info
	}
	c := s.contract
	info.Kind = s.handle.Kind
	info.Digest = s.handle.Digest
	info.RequiredOrder = append([]string(nil), c.RequiredOrder...)
	info.Verified = c.Verified
	info.DeclaredCount = c.DeclaredCount
	info.Classes = append([]string(nil), c.Classes...)
	info.AdverseLabel = c.AdverseLabel
	info.AdverseIndex = c.AdverseIndex
	info.Fingerprint = c.Fingerprint
	for _, g := range c.Gaps {
		info.Gaps = append(info.Gaps, g.String())
	}
	return info
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, model.ErrModelLoad):
		return "unavailable"
	case errors.Is(err, reconcile.ErrMissingFeature), errors.Is(err, reconcile.ErrInvalidValue):
		return "validation"
	case errors.Is(err, prediction.ErrPrediction):
		return "prediction"
	default:
		return "internal"
	}
}

// toDomainError maps stage failures onto transport-facing codes. The cause
// stays in the chain for errors.Is.
func toDomainError(err error) error {
	switch failureReason(err) {
	case "unavailable":
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "prediction model is unavailable")
	case "validation":
		return dErrors.Wrap(err, dErrors.CodeValidation, err.Error())
	case "prediction":
		return dErrors.Wrap(err, dErrors.CodePredictionFailed, "model prediction failed")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "assessment failed")
	}
}
