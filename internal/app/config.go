package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// DBMigrate runs the embedded goose migrations at startup.
	DBMigrate bool

	// If true, /readyz returns 503 unless DB is configured and reachable.
	ReadinessRequireDB bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("LINGUA_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel: EnvString("LINGUA_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("LINGUA_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("LINGUA_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("LINGUA_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("LINGUA_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("LINGUA_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("LINGUA_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("LINGUA_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("LINGUA_DB_MIN_CONNS", 0),
		DBMigrate:   EnvBool("LINGUA_DB_MIGRATE", false),

		ReadinessRequireDB: EnvBool("LINGUA_READINESS_REQUIRE_DB", false),
	}
}
