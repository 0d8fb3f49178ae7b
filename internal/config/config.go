// Package config loads the server settings from the environment.
//
// A .env file in the working directory is read first (see .env.example);
// real environment variables win over it because godotenv never overrides
// a variable that is already set.
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

type Config struct {
	Port     int
	DBPath   string
	LogLevel string

	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool
	BcryptCost   int

	CORS CORS
}

// CORS mirrors the options of github.com/go-chi/cors.
type CORS struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: reading .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv. Tests pass a map lookup instead of
// os.Getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	r := reader{getenv: getenv}

	cfg := Config{
		Port:         r.int("PORT", 8080),
		DBPath:       r.string("DB_PATH", "data/blog.db"),
		LogLevel:     strings.ToLower(r.string("LOG_LEVEL", "info")),
		JWTSecret:    getenv("JWT_SECRET"),
		TokenTTL:     r.duration("TOKEN_TTL", 24*time.Hour),
		CookieSecure: r.bool("COOKIE_SECURE", false),
		BcryptCost:   r.int("BCRYPT_COST", 12),
		CORS: CORS{
			AllowedOrigins:   r.list("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			AllowedMethods:   r.list("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders:   r.list("CORS_ALLOWED_HEADERS", "*"),
			ExposedHeaders:   r.list("CORS_EXPOSED_HEADERS", ""),
			AllowCredentials: r.bool("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           r.int("CORS_MAX_AGE", 3600),
		},
	}

	if err := errors.Join(r.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if len(c.JWTSecret) < 16 {
		errs = append(errs, errors.New("config: JWT_SECRET must be set and at least 16 characters"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: PORT out of range: %d", c.Port))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("config: TOKEN_TTL must be positive: %s", c.TokenTTL))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: LOG_LEVEL must be debug, info, warn or error: %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// reader collects parse errors so Load reports every bad variable at once.
type reader struct {
	getenv func(string) string
	errs   []error
}

func (r *reader) string(key, def string) string {
	if v := strings.TrimSpace(r.getenv(key)); v != "" {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (r *reader) bool(key string, def bool) bool {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s: invalid boolean %q", key, v))
		return def
	}
	return b
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(r.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s: invalid duration %q", key, v))
		return def
	}
	return d
}

// list splits a comma separated value. An empty value gives an empty list.
func (r *reader) list(key, def string) []string {
	v := r.getenv(key)
	if strings.TrimSpace(v) == "" {
		v = def
	}
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
