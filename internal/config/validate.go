package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateLoans(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q is not a host:port address: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateServer() error {
	return ensurePositiveMap(map[string]int{
		"server.read_header_timeout": c.Server.ReadHeaderTimeout,
		"server.read_timeout":        c.Server.ReadTimeout,
		"server.write_timeout":       c.Server.WriteTimeout,
		"server.idle_timeout":        c.Server.IdleTimeout,
		"server.shutdown_timeout":    c.Server.ShutdownTimeout,
	})
}

func (c *Config) validateStore() error {
	if filepath.Base(c.Store.DatabaseFile) != c.Store.DatabaseFile {
		return errors.New("store.database_file must be a file name, not a path")
	}
	if c.Store.BusyTimeoutMillis < 0 {
		return errors.New("store.busy_timeout_ms must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}

func (c *Config) validateLoans() error {
	if c.Loans.MinLengthDays < 1 {
		return errors.New("loans.min_length_days must be >= 1")
	}
	if c.Loans.MaxLengthDays < c.Loans.MinLengthDays {
		return errors.New("loans.max_length_days must be >= loans.min_length_days")
	}
	if c.Loans.MaxLengthDays > defaultMaxLoanDays {
		return fmt.Errorf("loans.max_length_days must be <= %d", defaultMaxLoanDays)
	}
	if c.Loans.DefaultBookStock < 0 {
		return errors.New("loans.default_book_stock must be >= 0")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
