package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName     string
	Version     string
	Environment string
	Debug       bool

	// Auth
	SecretKey      string
	JWTExpiry      time.Duration
	AuthExcludeKV  bool
	LoginRateLimit int

	// Server
	Host           string
	Port           string
	RequestTimeout time.Duration
	BodyLimit      int
	CORSOrigins    string

	// Database
	DBURL             string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBPoolSize        int
	DBPoolMaxOverflow int
	DBPoolRecycle     time.Duration
	DBPoolTimeout     time.Duration
	DBPoolPrePing     bool
	DBPoolDisable     bool
	DBEcho            bool

	// Observability
	LogLevel               string
	LogRetention           time.Duration
	SentryDSN              string
	SentryTracesSampleRate float64
	MetricsEnabled         bool

	// Secrets
	Cloud      string
	EnvSecrets string
}

type options struct {
	envFile string
	secrets SecretFetcher
	lookup  func(string) (string, bool)
}

type Option func(*options)

// WithEnvFile overrides the dotenv file location. An empty path disables it.
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

func WithSecretFetcher(f SecretFetcher) Option {
	return func(o *options) { o.secrets = f }
}

// WithLookup replaces os.LookupEnv as the process environment source.
func WithLookup(fn func(string) (string, bool)) Option {
	return func(o *options) { o.lookup = fn }
}

// Load reads configuration from the process environment, then the dotenv file,
// then the cloud secret when no dotenv file exists. Earlier sources win.
func Load(ctx context.Context, opts ...Option) (*Config, error) {
	o := options{envFile: ".env", secrets: AWSSecrets{}, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(&o)
	}

	src := source{lookup: o.lookup}

	fileFound := false
	if o.envFile != "" {
		vals, err := godotenv.Read(o.envFile)
		switch {
		case err == nil:
			src.layers = append(src.layers, vals)
			fileFound = true
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", o.envFile, err)
		}
	}

	if !fileFound {
		name := src.get("ENV_SECRETS", "")
		cloud := strings.ToLower(src.get("CLOUD", ""))
		if name != "" && cloud == "aws" {
			raw, err := o.secrets.FetchSecret(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("fetch secret %s: %w", name, err)
			}
			vals, err := godotenv.Unmarshal(raw)
			if err != nil {
				return nil, fmt.Errorf("parse secret %s: %w", name, err)
			}
			src.layers = append(src.layers, vals)
		}
	}

	cfg := &Config{
		AppName:     src.get("APP_NAME", "crud-backend"),
		Version:     src.get("BUILD_NUMBER", "1"),
		Environment: src.get("ENVIRONMENT", "dev"),
		Debug:       src.bool("DEBUG", false),

		SecretKey:      src.get("SECRET_KEY", ""),
		JWTExpiry:      src.duration("JWT_EXPIRY", 24*time.Hour),
		AuthExcludeKV:  src.bool("AUTH_EXCLUDE_KV", true),
		LoginRateLimit: src.int("LOGIN_RATE_LIMIT", 10),

		Host:           src.get("SERVER_HOST", "0.0.0.0"),
		Port:           src.get("SERVER_PORT", "8080"),
		RequestTimeout: src.duration("REQUEST_TIMEOUT", 30*time.Second),
		BodyLimit:      src.int("BODY_LIMIT", 1<<20),
		CORSOrigins:    src.get("BACKEND_CORS_ORIGINS", "*"),

		DBURL:             src.get("DB_URL", ""),
		DBHost:            src.get("DB_HOST", "localhost"),
		DBPort:            src.get("DB_PORT", "5432"),
		DBUser:            src.get("DB_USER", "postgres"),
		DBPassword:        src.get("DB_PASSWORD", ""),
		DBName:            src.get("DB_NAME", "crud"),
		DBSSLMode:         src.get("DB_SSLMODE", "disable"),
		DBPoolSize:        src.int("DB_POOL_SIZE", 5),
		DBPoolMaxOverflow: src.int("DB_POOL_MAX_OVERFLOW", 10),
		DBPoolRecycle:     src.duration("DB_POOL_RECYCLE", 5*time.Minute),
		DBPoolTimeout:     src.duration("DB_POOL_TIMEOUT", 30*time.Second),
		DBPoolPrePing:     src.bool("DB_POOL_PRE_PING", false),
		DBPoolDisable:     src.bool("DB_POOL_DISABLE", false),
		DBEcho:            src.bool("DB_ECHO", false),

		LogLevel:               src.get("LOG_LEVEL", "info"),
		LogRetention:           src.duration("LOG_RETENTION", 30*24*time.Hour),
		SentryDSN:              src.get("SENTRY_DSN", ""),
		SentryTracesSampleRate: src.float("SENTRY_TRACES_SAMPLE_RATE", 0),
		MetricsEnabled:         src.bool("METRICS_ENABLED", true),

		Cloud:      src.get("CLOUD", ""),
		EnvSecrets: src.get("ENV_SECRETS", ""),
	}

	if err := errors.Join(src.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if c.JWTExpiry <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRY must be positive"))
	}
	if c.DBPoolSize < 1 {
		errs = append(errs, errors.New("DB_POOL_SIZE must be at least 1"))
	}
	if c.DBPoolMaxOverflow < 0 {
		errs = append(errs, errors.New("DB_POOL_MAX_OVERFLOW must not be negative"))
	}
	switch strings.ToLower(c.Cloud) {
	case "", "aws":
	default:
		errs = append(errs, fmt.Errorf("CLOUD %q is not supported", c.Cloud))
	}
	return errors.Join(errs...)
}

// DSN returns DB_URL when set, otherwise a key/value connection string.
func (c *Config) DSN() string {
	if c.DBURL != "" {
		return c.DBURL
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func (c *Config) IsProduction() bool {
	return c.Environment == "prod" || c.Environment == "production"
}

type source struct {
	lookup func(string) (string, bool)
	layers []map[string]string
	errs   []error
}

func (s *source) get(key, fallback string) string {
	if val, ok := s.lookup(key); ok && val != "" {
		return val
	}
	for _, layer := range s.layers {
		if val := layer[key]; val != "" {
			return val
		}
	}
	return fallback
}

func (s *source) bool(key string, fallback bool) bool {
	raw := s.get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("%s: invalid boolean %q", key, raw))
		return fallback
	}
	return v
}

func (s *source) int(key string, fallback int) int {
	raw := s.get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return fallback
	}
	return v
}

func (s *source) float(key string, fallback float64) float64 {
	raw := s.get(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("%s: invalid number %q", key, raw))
		return fallback
	}
	return v
}

// duration accepts Go durations ("15m") or a bare number of seconds.
func (s *source) duration(key string, fallback time.Duration) time.Duration {
	raw := s.get(key, "")
	if raw == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return fallback
	}
	return d
}
