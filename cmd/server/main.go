package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"prognosis/internal/assessment"
	assessmenthandler "prognosis/internal/assessment/handler"
	assessmentmetrics "prognosis/internal/assessment/metrics"
	"prognosis/internal/attribution"
	attributioncache "prognosis/internal/attribution/cache"
	jwttoken "prognosis/internal/jwt_token"
	"prognosis/internal/platform/config"
	"prognosis/internal/platform/httpserver"
	"prognosis/internal/platform/logger"
	"prognosis/internal/platform/metrics"
	"prognosis/internal/platform/redis"
	"prognosis/internal/ratelimit"
	"prognosis/internal/study"
	httptransport "prognosis/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	st, err := loadStudy(cfg)
	if err != nil {
		return err
	}

	auditor, closeAudit, err := buildAuditor(ctx, cfg.Audit, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}
	cache := buildAttributionCache(cfg, redisClient, log)

	platformMetrics := metrics.New()
	svcMetrics := assessmentmetrics.New()

	svc, err := assessment.Load(st, cfg.ModelPath,
		assessment.WithLogger(log),
		assessment.WithMetrics(svcMetrics),
		assessment.WithAuditor(auditor),
		assessment.WithAttributionCache(cache),
		assessment.WithStrictContract(cfg.StrictContract),
	)
	if err != nil {
		return err
	}
	platformMetrics.SetModelAvailable(svc.Available())

	deps := httptransport.RouterDeps{
		Logger:  log,
		Metrics: platformMetrics,
		Ready:   svc.Available,
		API:     []httptransport.Registrar{assessmenthandler.New(svc, log, svcMetrics)},
	}
	if redisClient != nil {
		deps.Checks = map[string]func(context.Context) error{"redis": redisClient.Health}
	}
	if cfg.RateLimit.Requests > 0 {
		var store ratelimit.Store = ratelimit.NewMemoryStore()
		if redisClient != nil {
			store = ratelimit.NewRedisStore(redisClient.Client)
		}
		deps.RateLimit = ratelimit.New(store, cfg.RateLimit.Requests, cfg.RateLimit.Window, log).Middleware
	}
	if cfg.JWT.SigningKey != "" {
		jwtService := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
		deps.Validator = jwttoken.NewJWTServiceAdapter(jwtService)
	} else {
		log.Warn("JWT_SIGNING_KEY not set; API is unauthenticated")
	}

	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(deps), log)
	log.Info("starting prognosis", "model_available", svc.Available())
	return httpserver.Run(ctx, srv, log)
}

func loadStudy(cfg config.Config) (*study.Study, error) {
	st := study.Default()
	if cfg.StudyPath != "" {
		loaded, err := study.Load(cfg.StudyPath)
		if err != nil {
			return nil, err
		}
		st = loaded
	}
	if cfg.LowRiskMax != nil {
		st.Thresholds.LowMax = *cfg.LowRiskMax
	}
	if cfg.ModerateRiskMax != nil {
		st.Thresholds.ModerateMax = *cfg.ModerateRiskMax
	}
	if err := st.RiskThresholds().Validate(); err != nil {
		return nil, fmt.Errorf("risk thresholds: %w", err)
	}
	return st, nil
}

// buildAttributionCache prefers Redis so replicas share explanations, and
// falls back to an in-process cache.
func buildAttributionCache(cfg config.Config, client *redis.Client, log *slog.Logger) attribution.Cache {
	if client != nil {
		log.Info("attribution cache: redis")
		return attributioncache.NewRedis(client.Client, cfg.AttributionCacheTTL)
	}
	log.Info("attribution cache: memory", "max_entries", cfg.AttributionCacheSize)
	return attributioncache.NewMemory(cfg.AttributionCacheTTL, cfg.AttributionCacheSize)
}
