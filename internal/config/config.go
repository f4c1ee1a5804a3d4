// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server settings,
// logging, persistence backends, the record-store connection, and the timing
// knobs of the console synchronization layer (cache TTL, debounce window,
// toast lifetimes, notification poll cadences).
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "rental-console")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// RedisConfig configures the Redis session storage backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RecordStoreConfig points at the backend proxy in front of the record store.
type RecordStoreConfig struct {
	BaseURL string
	Timeout time.Duration // 0 = no client-side timeout
}

// SyncConfig holds the timing knobs of the synchronization layer.
type SyncConfig struct {
	CacheTTL           time.Duration
	MutationDebounce   time.Duration
	MutationToastTTL   time.Duration
	NotifyToastTTL     time.Duration
	NotifyFastInterval time.Duration // panel open
	NotifySlowInterval time.Duration // panel closed
	NotifyToastRoles   []string      // empty = every role
	NotifyFeedLimit    int
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Persistence
	DBPath       string        // SQLite path
	SessionStore string        // sqlite|redis
	SessionTTL   time.Duration // lifetime of session items in Redis
	Redis        RedisConfig

	// Upstream
	RecordStore RecordStoreConfig

	// Synchronization layer
	Sync SyncConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Persistence
		DBPath:       getenv("DB_PATH", "console.db"),
		SessionStore: strings.ToLower(getenv("SESSION_STORE", "sqlite")),
		SessionTTL:   getdur("SESSION_TTL", 12*time.Hour),
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getint("REDIS_DB", 0),
		},

		// Upstream
		RecordStore: RecordStoreConfig{
			BaseURL: strings.TrimRight(getenv("RECORD_STORE_URL", "http://localhost:8000/api"), "/"),
			Timeout: getdur("RECORD_STORE_TIMEOUT", 0),
		},

		// Synchronization layer
		Sync: SyncConfig{
			CacheTTL:           getdur("CACHE_TTL", 2*time.Minute),
			MutationDebounce:   getdur("MUTATION_DEBOUNCE", 500*time.Millisecond),
			MutationToastTTL:   getdur("MUTATION_TOAST_DURATION", 3*time.Second),
			NotifyToastTTL:     getdur("TOAST_DURATION", 5*time.Second),
			NotifyFastInterval: getdur("NOTIFY_FAST_INTERVAL", 10*time.Second),
			NotifySlowInterval: getdur("NOTIFY_SLOW_INTERVAL", 60*time.Second),
			NotifyToastRoles:   splitCSV(strings.ToLower(getenv("NOTIFY_TOAST_ROLES", ""))),
			NotifyFeedLimit:    getint("NOTIFY_FEED_LIMIT", 100),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "rental-console"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	return cfg, cfg.validate()
}

// validate reports every invalid setting at once.
func (cfg Config) validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		errs = append(errs, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic"))
	}
	check(strings.TrimSpace(cfg.Port) != "", "PORT must not be empty")
	check(cfg.ReadTimeout > 0 && cfg.ReadHeaderTimeout > 0 && cfg.WriteTimeout > 0 && cfg.IdleTimeout > 0,
		"timeouts must be positive durations")
	check(cfg.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")

	check(strings.TrimSpace(cfg.DBPath) != "", "DB_PATH must not be empty")
	switch cfg.SessionStore {
	case "sqlite":
	case "redis":
		check(strings.TrimSpace(cfg.Redis.Addr) != "", "REDIS_ADDR must not be empty when SESSION_STORE=redis")
	default:
		errs = append(errs, errors.New("SESSION_STORE must be one of: sqlite, redis"))
	}
	check(cfg.SessionTTL > 0, "SESSION_TTL must be > 0")

	u := cfg.RecordStore.BaseURL
	check(strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://"), "RECORD_STORE_URL must be an http(s) URL")
	check(cfg.RecordStore.Timeout >= 0, "RECORD_STORE_TIMEOUT must be >= 0")

	sc := cfg.Sync
	check(sc.CacheTTL > 0, "CACHE_TTL must be > 0")
	check(sc.MutationDebounce >= 0, "MUTATION_DEBOUNCE must be >= 0")
	check(sc.MutationToastTTL > 0 && sc.NotifyToastTTL > 0, "toast durations must be > 0")
	check(sc.NotifyFastInterval > 0 && sc.NotifySlowInterval > 0, "notification poll intervals must be > 0")
	check(sc.NotifyFastInterval <= sc.NotifySlowInterval, "NOTIFY_FAST_INTERVAL must not exceed NOTIFY_SLOW_INTERVAL")
	check(sc.NotifyFeedLimit >= 1, "NOTIFY_FEED_LIMIT must be >= 1")

	check(cfg.RateRPS >= 0, "RATE_RPS must be >= 0")
	check(cfg.RateBurst >= 1, "RATE_BURST must be >= 1")
	check(cfg.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(cfg.IdempotencyTTL > 0, "IDEMPOTENCY_TTL must be > 0")
	check(cfg.OTEL.SampleRatio >= 0 && cfg.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")

	return errors.Join(errs...)
}

// env returns the parsed value of k, or def when k is unset, empty or
// unparsable.
func env[T any](k string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		return def
	}
	return out
}

func getenv(k, def string) string {
	return env(k, def, func(s string) (string, error) { return s, nil })
}

func getint(k string, def int) int { return env(k, def, strconv.Atoi) }

func getdur(k string, def time.Duration) time.Duration { return env(k, def, time.ParseDuration) }

func getfloat(k string, def float64) float64 {
	return env(k, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

var errNotBool = errors.New("not a boolean")

func getbool(k string, def bool) bool {
	return env(k, def, func(s string) (bool, error) {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "true", "yes", "y", "on":
			return true, nil
		case "0", "false", "no", "n", "off":
			return false, nil
		}
		return false, errNotBool
	})
}

// splitCSV splits a comma list, dropping blanks. Empty input yields nil.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath returns p with one leading slash and no trailing slash;
// empty means root.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}
