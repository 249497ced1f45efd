package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures process level configuration.
type Config struct {
	Addr      string
	LogFormat string
	LogLevel  string

	ModelPath string
	// StudyPath is an optional YAML study definition; empty uses the built-in study.
	StudyPath      string
	StrictContract bool
	// Thresholds override the study's tier bounds when both are set.
	LowRiskMax      *float64
	ModerateRiskMax *float64

	AttributionCacheTTL  time.Duration
	AttributionCacheSize int

	Redis     RedisConfig
	Audit     AuditConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
}

// RedisConfig configures the shared attribution cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuditConfig selects the durable audit sinks. Events always go to memory.
type AuditConfig struct {
	DatabaseURL  string
	KafkaBrokers []string
	KafkaTopic   string
}

// RateLimitConfig bounds API calls per caller. Zero Requests disables it.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// JWTConfig enables bearer authentication when SigningKey is set.
type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var errs []error

	cfg := Config{
		Addr:      getEnv("PROGNOSIS_ADDR", ":8080"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		ModelPath: getEnv("MODEL_PATH", "models/gastric_rf.json"),
		StudyPath: os.Getenv("STUDY_PATH"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     parseInt("REDIS_POOL_SIZE", 10, &errs),
			MinIdleConns: parseInt("REDIS_MIN_IDLE_CONNS", 2, &errs),
			DialTimeout:  parseDuration("REDIS_DIAL_TIMEOUT", 5*time.Second, &errs),
			ReadTimeout:  parseDuration("REDIS_READ_TIMEOUT", 3*time.Second, &errs),
			WriteTimeout: parseDuration("REDIS_WRITE_TIMEOUT", 3*time.Second, &errs),
		},
		Audit: AuditConfig{
			DatabaseURL:  os.Getenv("DATABASE_URL"),
			KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
			KafkaTopic:   os.Getenv("KAFKA_AUDIT_TOPIC"),
		},
		JWT: JWTConfig{
			SigningKey: os.Getenv("JWT_SIGNING_KEY"),
			Issuer:     getEnv("JWT_ISSUER", "prognosis"),
			Audience:   getEnv("JWT_AUDIENCE", "prognosis-api"),
		},
		RateLimit: RateLimitConfig{
			Requests: parseInt("RATE_LIMIT_REQUESTS", 60, &errs),
			Window:   parseDuration("RATE_LIMIT_WINDOW", time.Minute, &errs),
		},
		StrictContract:       parseBool("STRICT_CONTRACT", false, &errs),
		AttributionCacheTTL:  parseDuration("ATTRIBUTION_CACHE_TTL", 10*time.Minute, &errs),
		AttributionCacheSize: parseInt("ATTRIBUTION_CACHE_SIZE", 1024, &errs),
		LowRiskMax:           parseOptionalFloat("LOW_RISK_MAX", &errs),
		ModerateRiskMax:      parseOptionalFloat("MODERATE_RISK_MAX", &errs),
	}

	if (cfg.LowRiskMax == nil) != (cfg.ModerateRiskMax == nil) {
		errs = append(errs, errors.New("LOW_RISK_MAX and MODERATE_RISK_MAX must be set together"))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseBool(key string, fallback bool, errs *[]error) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func parseInt(key string, fallback int, errs *[]error) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func parseDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func parseOptionalFloat(key string, errs *[]error) *float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return nil
	}
	return &f
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
