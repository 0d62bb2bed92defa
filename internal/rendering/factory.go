package rendering

import (
	"strings"

	"mailproof/internal/adapters/rendering/emailonacid"
	"mailproof/internal/adapters/rendering/litmus"
	"mailproof/internal/pkg/errors"
)

// Options configures provider construction. BaseURL is empty in
// production and points at a test server in tests.
type Options struct {
	Service  string
	APIKey   string
	Password string
	BaseURL  string
}

// NewProvider maps a service selector to a provider instance. An
// unrecognized selector is a fatal configuration error.
func NewProvider(opt Options) (Provider, error) {
	if opt.APIKey == "" || opt.Password == "" {
		return nil, errors.Validation("rendering service credentials are required")
	}

	switch strings.ToLower(strings.TrimSpace(opt.Service)) {
	case "emailonacid", "eoa":
		return emailonacid.New(opt.BaseURL, opt.APIKey, opt.Password), nil
	case "litmus":
		return litmus.New(opt.BaseURL, opt.APIKey, opt.Password), nil
	default:
		return nil, errors.Validationf("unknown rendering service: %q", opt.Service)
	}
}
