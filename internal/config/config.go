package config

import (
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// =============================================================================
// Engine broker configuration, with environment overrides
// =============================================================================

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Registry RegistryConfig `yaml:"registry"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
	GC       GCConfig       `yaml:"gc"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Bind    string `yaml:"bind"`
	CertPEM string `yaml:"cert_pem"`
	KeyPEM  string `yaml:"key_pem"`
}

// RegistryConfig points at the Postgres-backed engine store.
type RegistryConfig struct {
	DatabaseURL string `yaml:"database_url"`
}

type TimeoutsConfig struct {
	AnalyseSec int `yaml:"analyse_sec"`
	AcquireSec int `yaml:"acquire_sec"`
}

func (t TimeoutsConfig) Analyse() time.Duration { return time.Duration(t.AnalyseSec) * time.Second }
func (t TimeoutsConfig) Acquire() time.Duration { return time.Duration(t.AcquireSec) * time.Second }

// GCConfig overrides the Hub's and Ongoing table's sweep cadence; tests
// shrink these well below the production defaults to avoid waiting.
type GCConfig struct {
	HubSec     int `yaml:"hub_sec"`
	OngoingSec int `yaml:"ongoing_sec"`
}

func (g GCConfig) Hub() time.Duration     { return time.Duration(g.HubSec) * time.Second }
func (g GCConfig) Ongoing() time.Duration { return time.Duration(g.OngoingSec) * time.Second }

// RedisConfig is optional: when disabled, internal/obsv keeps metrics local
// to the process instead of publishing an aggregate hub-depth gauge.
type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// =============================================================================
// Singleton pattern with environment overrides
// =============================================================================

var (
	instance *Config
	once     sync.Once
)

// Get returns the process-wide config instance, loading it from
// CONFIG_PATH (default "config.yaml") the first time it's called.
func Get() *Config {
	once.Do(func() {
		cfg, err := LoadConfig(getEnv("CONFIG_PATH", "config.yaml"))
		if err != nil {
			slog.Warn("config: failed to load config file, using defaults", "error", err)
		}
		if cfg == nil {
			cfg = &Config{}
		}
		cfg.applyEnvOverrides()
		instance = cfg
	})
	return instance
}

// Load reads a .env file (if present) for local development, then the YAML
// config at path (a missing file is not an error, defaults stand in), then
// applies environment overrides. cmd/server calls this directly; Get's
// singleton form exists for packages that can't thread a *Config through.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := LoadConfig(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = &Config{}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func LoadConfig(path string) (*Config, error) {
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
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Server.Bind = getEnv("ENGINE_BROKER_BIND", c.Server.Bind)
	c.Server.CertPEM = getEnv("ENGINE_BROKER_CERT_PEM", c.Server.CertPEM)
	c.Server.KeyPEM = getEnv("ENGINE_BROKER_KEY_PEM", c.Server.KeyPEM)

	c.Registry.DatabaseURL = getEnv("ENGINE_BROKER_DATABASE_URL", c.Registry.DatabaseURL)

	if v := getEnvInt("ENGINE_BROKER_ANALYSE_TIMEOUT_SEC", 0); v > 0 {
		c.Timeouts.AnalyseSec = v
	}
	if v := getEnvInt("ENGINE_BROKER_ACQUIRE_TIMEOUT_SEC", 0); v > 0 {
		c.Timeouts.AcquireSec = v
	}

	c.Redis.Addr = getEnv("ENGINE_BROKER_REDIS_ADDR", c.Redis.Addr)
	if c.Redis.Addr != "" {
		c.Redis.Enabled = true
	}
	c.Redis.Enabled = getEnvBool("ENGINE_BROKER_REDIS_ENABLED", c.Redis.Enabled)

	c.Log.Level = getEnv("ENGINE_BROKER_LOG", c.Log.Level)

	c.applyDefaults()
}

func (c *Config) applyDefaults() {
	if c.Server.Bind == "" {
		c.Server.Bind = "127.0.0.1:9666"
	}
	if c.Timeouts.AnalyseSec == 0 {
		c.Timeouts.AnalyseSec = 15
	}
	if c.Timeouts.AcquireSec == 0 {
		c.Timeouts.AcquireSec = 10
	}
	if c.GC.HubSec == 0 {
		c.GC.HubSec = 13
	}
	if c.GC.OngoingSec == 0 {
		c.GC.OngoingSec = 7
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// =============================================================================
// Helper functions
// =============================================================================

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
