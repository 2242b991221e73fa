package config

const (
	defaultDataDir           = "~/.local/share/libris"
	defaultLogDir            = "~/.local/share/libris/logs"
	defaultDatabaseFile      = "libris.db"
	defaultAPIBind           = "127.0.0.1:7480"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultBusyTimeoutMillis = 5000
	defaultReadHeaderTimeout = 5
	defaultReadTimeout       = 15
	defaultWriteTimeout      = 30
	defaultIdleTimeout       = 60
	defaultShutdownTimeout   = 5
	defaultMinLoanDays       = 1
	defaultMaxLoanDays       = 365
	defaultBookStock         = 1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Server: Server{
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			ReadTimeout:       defaultReadTimeout,
			WriteTimeout:      defaultWriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
			ShutdownTimeout:   defaultShutdownTimeout,
		},
		Store: Store{
			DatabaseFile:      defaultDatabaseFile,
			BusyTimeoutMillis: defaultBusyTimeoutMillis,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Loans: Loans{
			MinLengthDays:    defaultMinLoanDays,
			MaxLengthDays:    defaultMaxLoanDays,
			DefaultBookStock: defaultBookStock,
		},
	}
}
