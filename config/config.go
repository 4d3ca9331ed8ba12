package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Scoring    ScoringConfig    `yaml:"scoring"`
	Allocation AllocationConfig `yaml:"allocation"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// ScoringConfig fixes the geography used by the address component of the
// priority score.
type ScoringConfig struct {
	HomeCity           string   `yaml:"home_city"`
	AdjoiningDistricts []string `yaml:"adjoining_districts"`
}

// AllocationConfig holds the seat allocation policy knobs.
type AllocationConfig struct {
	// BuildingPriority orders buildings for room selection; the first entry
	// ranks highest, unlisted buildings rank after every listed one.
	BuildingPriority []string `yaml:"building_priority"`
	// ExpiryMonths applies to every allocation regardless of whether it was
	// produced by an approval, an auto-fill or a reallocation run.
	ExpiryMonths int `yaml:"expiry_months"`
	// WithdrawAutofill decides whether a voluntary withdrawal promotes the
	// top waiting applicant, the same way a dismissal always does.
	WithdrawAutofill bool `yaml:"withdraw_autofill"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
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

	cfg.ApplyDefaults()

	// Allow the DSN to come from the environment (e.g. a .env file) without
	// editing the config file.
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}

	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields with sensible defaults.
func (cfg *Config) ApplyDefaults() {
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

	if cfg.Scoring.HomeCity == "" {
		cfg.Scoring.HomeCity = "Dhaka"
	}
	if len(cfg.Scoring.AdjoiningDistricts) == 0 {
		cfg.Scoring.AdjoiningDistricts = []string{
			"Gazipur", "Narayanganj", "Narsingdi", "Munshiganj", "Manikganj",
		}
	}

	if len(cfg.Allocation.BuildingPriority) == 0 {
		cfg.Allocation.BuildingPriority = []string{"Main Building", "Extension 1", "Extension 2"}
	}
	if cfg.Allocation.ExpiryMonths <= 0 {
		cfg.Allocation.ExpiryMonths = 48
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}
}
