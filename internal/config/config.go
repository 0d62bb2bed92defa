// Package config loads the coordinator's configuration from the
// environment. All inputs are simple scalars; validation failures abort
// before any network call.
package config

import (
	"os"
	"strconv"
	"strings"

	"mailproof/internal/pkg/errors"
)

// Config is the full configuration surface of one coordinator run.
type Config struct {
	// Service selects the rendering backend (emailonacid, litmus).
	Service string
	// APIKey and Password form the credential pair for HTTP Basic auth.
	APIKey   string
	Password string

	// Task is the free-form task identifier; its sanitized form keys all
	// output files and the job label.
	Task string
	// Clients is the ordered list of desired client identifiers. Empty
	// means "whatever the backend renders".
	Clients []string
	// ContentFile is the path to the HTML content to render.
	ContentFile string
	// Subject is the human-readable label sent with the submission.
	Subject string

	// MaxAttempts and WaitSeconds tune the polling loop.
	MaxAttempts int
	WaitSeconds int

	// Separator replaces whitespace in sanitized task keys ("-" or "_").
	Separator string
	// ResultsPrefix roots all stored artifacts (default "previews").
	ResultsPrefix string

	Debug bool
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Service:       Env("MAILPROOF_SERVICE", "emailonacid"),
		APIKey:        Env("MAILPROOF_API_KEY", ""),
		Password:      Env("MAILPROOF_PASSWORD", ""),
		Task:          Env("MAILPROOF_TASK", ""),
		Clients:       CSVEnv("MAILPROOF_CLIENTS"),
		ContentFile:   Env("MAILPROOF_CONTENT_FILE", ""),
		Subject:       Env("MAILPROOF_SUBJECT", ""),
		MaxAttempts:   IntEnv("MAILPROOF_MAX_ATTEMPTS", 60),
		WaitSeconds:   IntEnv("MAILPROOF_WAIT_SECONDS", 10),
		Separator:     Env("MAILPROOF_SEPARATOR", "-"),
		ResultsPrefix: Env("MAILPROOF_RESULTS_PREFIX", "previews"),
		Debug:         BoolEnv("MAILPROOF_DEBUG", false),
	}

	if cfg.Subject == "" {
		cfg.Subject = cfg.Task
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Task == "" {
		return errors.Validation("MAILPROOF_TASK is required").WithField("field", "MAILPROOF_TASK")
	}
	if c.APIKey == "" {
		return errors.Validation("MAILPROOF_API_KEY is required").WithField("field", "MAILPROOF_API_KEY")
	}
	if c.Password == "" {
		return errors.Validation("MAILPROOF_PASSWORD is required").WithField("field", "MAILPROOF_PASSWORD")
	}
	if c.ContentFile == "" {
		return errors.Validation("MAILPROOF_CONTENT_FILE is required").WithField("field", "MAILPROOF_CONTENT_FILE")
	}
	if c.MaxAttempts <= 0 {
		return errors.Validation("MAILPROOF_MAX_ATTEMPTS must be positive")
	}
	if c.WaitSeconds <= 0 {
		return errors.Validation("MAILPROOF_WAIT_SECONDS must be positive")
	}
	if c.Separator != "-" && c.Separator != "_" {
		return errors.Validationf("MAILPROOF_SEPARATOR must be '-' or '_', got %q", c.Separator)
	}
	return nil
}

// Env reads an env var with a default.
func Env(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

// IntEnv reads an env var as int. If empty or invalid, returns def.
func IntEnv(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// BoolEnv reads an env var as bool. If empty or invalid, returns def.
// strconv.ParseBool accepts: 1,t,T,TRUE,true,True,0,f,F,FALSE,false,False.
func BoolEnv(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// CSVEnv reads an env var as a comma-separated list, trimming blanks.
func CSVEnv(k string) []string {
	raw := strings.TrimSpace(os.Getenv(k))
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
