// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Reconciler sweep modes.
const (
	ModeTenant     = "tenant"
	ModeAllTenants = "all-tenants"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string `env:"STOREOPS_ADDR" envDefault:":8080"`
	Environment   string `env:"STOREOPS_ENV" envDefault:"dev"`
	JWTSigningKey string `env:"JWT_SIGNING_KEY"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"storeops"`
	SystemAPIKey  string `env:"SYSTEM_API_KEY"`
	SeedFile      string `env:"SEED_FILE"`
	DatabaseURL   string `env:"DATABASE_URL"`

	// AppTimezone is the fallback zone for stores without a valid IANA zone.
	AppTimezone string `env:"APP_TIMEZONE" envDefault:"America/New_York"`

	Log        Log
	Redis      RedisConfig
	Kafka      KafkaConfig
	Policy     PolicyConfig
	Face       FaceConfig
	Reconciler ReconcilerConfig
	Otel       OtelConfig
}

// Log controls the slog handler.
type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// RedisConfig configures the lease store used by the reconciler worker.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig configures the manager alert producer.
type KafkaConfig struct {
	Brokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	AlertsTopic string   `env:"KAFKA_ALERTS_TOPIC" envDefault:"storeops.alerts"`
	ClientID    string   `env:"KAFKA_CLIENT_ID" envDefault:"storeops"`
}

// PolicyConfig holds the store-hours buffers, in minutes.
type PolicyConfig struct {
	LoginEarlyMinutes  int `env:"POLICY_LOGIN_EARLY_MINUTES" envDefault:"30"`
	LoginLateMinutes   int `env:"POLICY_LOGIN_LATE_MINUTES" envDefault:"45"`
	ClockEarlyMinutes  int `env:"POLICY_CLOCK_EARLY_MINUTES" envDefault:"30"`
	ClockLateMinutes   int `env:"POLICY_CLOCK_LATE_MINUTES" envDefault:"30"`
	AutoClockoutMinute int `env:"POLICY_AUTO_CLOCKOUT_MINUTES" envDefault:"30"`
}

// FaceConfig holds the matcher thresholds.
type FaceConfig struct {
	AcceptDistance   float64 `env:"FACE_ACCEPT_DISTANCE" envDefault:"0.6"`
	MinConfidence    float64 `env:"FACE_MIN_CONFIDENCE" envDefault:"0.3"`
	LearnConfidence  float64 `env:"FACE_LEARN_CONFIDENCE" envDefault:"0.7"`
	LearnNoveltyDist float64 `env:"FACE_LEARN_NOVELTY_DISTANCE" envDefault:"0.3"`
	MaxDescriptors   int     `env:"FACE_MAX_DESCRIPTORS" envDefault:"5"`
	DescriptorLength int     `env:"FACE_DESCRIPTOR_LENGTH" envDefault:"128"`
}

// ReconcilerConfig drives the background auto clock-out worker.
type ReconcilerConfig struct {
	Enabled     bool          `env:"RECONCILE_ENABLED" envDefault:"true"`
	Interval    time.Duration `env:"RECONCILE_INTERVAL" envDefault:"1m"`
	Mode        string        `env:"RECONCILE_MODE" envDefault:"all-tenants"`
	Grace       time.Duration `env:"RECONCILE_GRACE" envDefault:"5m"`
	Concurrency int           `env:"RECONCILE_CONCURRENCY" envDefault:"4"`
	Backlog     bool          `env:"RECONCILE_BACKLOG" envDefault:"false"`
	BacklogDays int           `env:"RECONCILE_BACKLOG_DAYS" envDefault:"7"`
	LeaseTTL    time.Duration `env:"RECONCILE_LEASE_TTL" envDefault:"50s"`
}

// OtelConfig enables tracing when an endpoint is set.
type OtelConfig struct {
	Endpoint    string `env:"OTEL_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"storeops"`
}

// IsProduction reports whether dev-only defaults must be rejected.
func (s Server) IsProduction() bool {
	return s.Environment == "prod" || s.Environment == "production"
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWTSigningKey == "" {
		if cfg.IsProduction() {
			return Server{}, errors.New("JWT_SIGNING_KEY is required in production")
		}
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (s Server) Validate() error {
	switch s.Reconciler.Mode {
	case ModeTenant, ModeAllTenants:
	default:
		return fmt.Errorf("RECONCILE_MODE must be %q or %q, got %q", ModeTenant, ModeAllTenants, s.Reconciler.Mode)
	}
	if s.Reconciler.Interval <= 0 {
		return errors.New("RECONCILE_INTERVAL must be positive")
	}
	if s.Reconciler.Concurrency < 1 {
		return errors.New("RECONCILE_CONCURRENCY must be at least 1")
	}
	if s.Face.MaxDescriptors < 1 {
		return errors.New("FACE_MAX_DESCRIPTORS must be at least 1")
	}
	if s.Face.AcceptDistance <= 0 {
		return errors.New("FACE_ACCEPT_DISTANCE must be positive")
	}
	return nil
}
