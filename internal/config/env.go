package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the environment variables that take precedence over the
// config file. Empty values leave the file setting untouched.
type envOverrides struct {
	DataDir   string `env:"LIBRIS_DATA_DIR"`
	LogDir    string `env:"LIBRIS_LOG_DIR"`
	APIBind   string `env:"LIBRIS_API_BIND"`
	APIToken  string `env:"LIBRIS_API_TOKEN"`
	LogLevel  string `env:"LIBRIS_LOG_LEVEL"`
	LogFormat string `env:"LIBRIS_LOG_FORMAT"`
}

func (c *Config) applyEnv() error {
	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	setIfPresent(&c.Paths.DataDir, overrides.DataDir)
	setIfPresent(&c.Paths.LogDir, overrides.LogDir)
	setIfPresent(&c.Paths.APIBind, overrides.APIBind)
	setIfPresent(&c.Paths.APIToken, overrides.APIToken)
	setIfPresent(&c.Logging.Level, overrides.LogLevel)
	setIfPresent(&c.Logging.Format, overrides.LogFormat)
	return nil
}

func setIfPresent(dst *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dst = trimmed
	}
}
