package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	QR       QRConfig       `yaml:"qr"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration. A DSN with a
// postgres:// or postgresql:// scheme selects the postgres driver; anything
// else is treated as a sqlite file path.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// SeedUser is a console account created on first boot when the users table
// is empty.
type SeedUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// AuthConfig holds session signing and bootstrap-account configuration.
type AuthConfig struct {
	SessionSecret     string        `yaml:"session_secret"`
	SessionTTLMinutes int           `yaml:"session_ttl_minutes"`
	SessionTTL        time.Duration `yaml:"-"` // Ignored by YAML parser
	SeedUsers         []SeedUser    `yaml:"seed_users"`
}

// QRConfig holds the shared technician PIN and QR link settings.
type QRConfig struct {
	PIN               string  `yaml:"pin"`
	BaseURL           string  `yaml:"base_url"`
	AttemptsPerMinute float64 `yaml:"attempts_per_minute"`
	AttemptBurst      int     `yaml:"attempt_burst"`
}

// Load reads the configuration from the given path and applies defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "manutencoes.db"
	}

	if cfg.Auth.SessionSecret == "" {
		cfg.Auth.SessionSecret = "dev"
	}
	if cfg.Auth.SessionTTLMinutes <= 0 {
		cfg.Auth.SessionTTLMinutes = 12 * 60
	}
	cfg.Auth.SessionTTL = time.Duration(cfg.Auth.SessionTTLMinutes) * time.Minute
	if len(cfg.Auth.SeedUsers) == 0 {
		cfg.Auth.SeedUsers = []SeedUser{
			{Username: "admin", Password: "1234", Role: "admin"},
			{Username: "potencia", Password: "2524", Role: "factory"},
		}
	}

	if cfg.QR.PIN == "" {
		cfg.QR.PIN = "1234"
	}
	if cfg.QR.AttemptsPerMinute <= 0 {
		cfg.QR.AttemptsPerMinute = 6
	}
	if cfg.QR.AttemptBurst <= 0 {
		cfg.QR.AttemptBurst = 3
	}

	return &cfg, nil
}
