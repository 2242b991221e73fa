package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeServer()
	c.normalizeStore()
	c.normalizeLogging()
	c.normalizeLoans()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeServer() {
	defaults := map[*int]int{
		&c.Server.ReadHeaderTimeout: defaultReadHeaderTimeout,
		&c.Server.ReadTimeout:       defaultReadTimeout,
		&c.Server.WriteTimeout:      defaultWriteTimeout,
		&c.Server.IdleTimeout:       defaultIdleTimeout,
		&c.Server.ShutdownTimeout:   defaultShutdownTimeout,
	}
	for field, fallback := range defaults {
		if *field == 0 {
			*field = fallback
		}
	}
}

func (c *Config) normalizeStore() {
	c.Store.DatabaseFile = strings.TrimSpace(c.Store.DatabaseFile)
	if c.Store.DatabaseFile == "" {
		c.Store.DatabaseFile = defaultDatabaseFile
	}
	if c.Store.BusyTimeoutMillis == 0 {
		c.Store.BusyTimeoutMillis = defaultBusyTimeoutMillis
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeLoans() {
	if c.Loans.MinLengthDays == 0 {
		c.Loans.MinLengthDays = defaultMinLoanDays
	}
	if c.Loans.MaxLengthDays == 0 {
		c.Loans.MaxLengthDays = defaultMaxLoanDays
	}
}
