package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"libris/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "libris")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.LogDir != filepath.Join(wantData, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7480" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "libris.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Loans.MinLengthDays != 1 || cfg.Loans.MaxLengthDays != 365 {
		t.Fatalf("unexpected loan range: %d-%d", cfg.Loans.MinLengthDays, cfg.Loans.MaxLengthDays)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "libris.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
			APIBind string `toml:"api_bind"`
		} `toml:"paths"`
		Loans struct {
			MaxLengthDays int `toml:"max_length_days"`
		} `toml:"loans"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Paths.APIBind = "0.0.0.0:9000"
	custom.Loans.MaxLengthDays = 30
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.DataDir != filepath.Join(tempDir, "data") {
		t.Fatalf("expected data dir from file, got %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.APIBind != "0.0.0.0:9000" {
		t.Fatalf("expected api bind from file, got %q", cfg.Paths.APIBind)
	}
	if cfg.Loans.MaxLengthDays != 30 {
		t.Fatalf("expected max loan length 30, got %d", cfg.Loans.MaxLengthDays)
	}
	if cfg.Loans.MinLengthDays != 1 {
		t.Fatalf("expected default min loan length, got %d", cfg.Loans.MinLengthDays)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized json format, got %q", cfg.Logging.Format)
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "libris.toml")
	content := "[paths]\napi_bind = \"127.0.0.1:1111\"\napi_token = \"file-token\"\n[logging]\nlevel = \"warn\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("LIBRIS_API_BIND", "127.0.0.1:2222")
	t.Setenv("LIBRIS_API_TOKEN", "env-token")
	t.Setenv("LIBRIS_LOG_LEVEL", "debug")
	t.Setenv("LIBRIS_DATA_DIR", filepath.Join(tempDir, "env-data"))

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIBind != "127.0.0.1:2222" {
		t.Errorf("expected api bind from env, got %q", cfg.Paths.APIBind)
	}
	if cfg.Paths.APIToken != "env-token" {
		t.Errorf("expected api token from env, got %q", cfg.Paths.APIToken)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level from env, got %q", cfg.Logging.Level)
	}
	if cfg.Paths.DataDir != filepath.Join(tempDir, "env-data") {
		t.Errorf("expected data dir from env, got %q", cfg.Paths.DataDir)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[loans]") {
		t.Fatalf("sample config missing loans section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Loans.MaxLengthDays != 365 {
		t.Fatalf("expected sample max loan length 365, got %d", cfg.Loans.MaxLengthDays)
	}
	if !strings.Contains(cfg.Paths.DataDir, "libris") {
		t.Fatalf("expected data dir to contain libris, got %q", cfg.Paths.DataDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad bind", func(c *config.Config) { c.Paths.APIBind = "localhost" }},
		{"zero timeout", func(c *config.Config) { c.Server.WriteTimeout = 0 }},
		{"database path", func(c *config.Config) { c.Store.DatabaseFile = "dir/libris.db" }},
		{"log level", func(c *config.Config) { c.Logging.Level = "verbose" }},
		{"min length", func(c *config.Config) { c.Loans.MinLengthDays = 0 }},
		{"inverted range", func(c *config.Config) { c.Loans.MaxLengthDays = 0 }},
		{"range above a year", func(c *config.Config) { c.Loans.MaxLengthDays = 366 }},
		{"negative stock", func(c *config.Config) { c.Loans.DefaultBookStock = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "libris.toml")
	content := "[loans]\nmax_length_days = 30\nmax_lenght_days = 60\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(configPath)
	if err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
	if !strings.Contains(err.Error(), "max_lenght_days") {
		t.Fatalf("expected error to name the unknown key, got %v", err)
	}
}

func TestLoadPrefersUserConfigOverProjectFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	project := t.TempDir()
	t.Chdir(project)

	if err := os.WriteFile(filepath.Join(project, "libris.toml"), []byte("[loans]\nmax_length_days = 10\n"), 0o644); err != nil {
		t.Fatalf("write project config: %v", err)
	}
	_, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != filepath.Join(project, "libris.toml") {
		t.Fatalf("expected project config, got %q (exists=%v)", resolved, exists)
	}

	userPath := filepath.Join(home, ".config", "libris", "config.toml")
	if err := config.CreateSample(userPath); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	_, resolved, _, err = config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != userPath {
		t.Fatalf("expected user config to win, got %q", resolved)
	}
}
