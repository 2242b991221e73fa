package testsupport

import (
	"path/filepath"
	"testing"

	"libris/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIToken requires bearer auth on mutating routes.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithLoanRange overrides the accepted loan length range.
func WithLoanRange(minDays, maxDays int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Loans.MinLengthDays = minDays
		b.cfg.Loans.MaxLengthDays = maxDays
	}
}

// WithDefaultStock overrides the stock assigned to books added without one.
func WithDefaultStock(stock int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Loans.DefaultBookStock = stock
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
