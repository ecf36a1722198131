// Package infra handles configuration loading and infrastructure wiring.
package infra

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	s3export "github.com/sejoroajose/Starknet-Data-Explorer/pkg/export/s3"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"
)

// Config is the top-level configuration structure for starkserve.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Sources   []SourceConfig  `yaml:"sources"`
	Cache     CacheConfig     `yaml:"cache"`
	Snapshots s3export.Config `yaml:"snapshots"` // optional S3 export
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`            // default ":8080"
	ReadTimeout    time.Duration `yaml:"read_timeout"`    // default 10s
	WriteTimeout   time.Duration `yaml:"write_timeout"`   // default 30s
	RequestTimeout time.Duration `yaml:"request_timeout"` // per-request deadline, default 30s
}

// SourceConfig names one warehouse connection.
type SourceConfig struct {
	Name             string `yaml:"name"`
	warehouse.Config `yaml:",inline"`
}

// CacheConfig is a minimal Redis connection spec plus entry TTL.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`     // host:port; empty = cache disabled outside dev mode
	Password string        `yaml:"password"` // empty = no auth; override via STARKNIFY_REDIS_PASSWORD
	DB       int           `yaml:"db"`       // 0-based
	TTL      time.Duration `yaml:"ttl"`      // default 5m
}

var validSourceTypes = map[string]bool{
	"sqlite":     true,
	"postgres":   true,
	"mysql":      true,
	"mssql":      true,
	"clickhouse": true,
	"snowflake":  true,
}

// LoadConfig reads and validates the YAML config at path, applying defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	// Defaults
	cfg.Server.Addr = ":8080"
	cfg.Server.ReadTimeout = 10 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.RequestTimeout = 30 * time.Second
	cfg.Cache.TTL = 5 * time.Minute

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Redis password: config file takes precedence; env var is the fallback
	if cfg.Cache.Password == "" {
		if p := os.Getenv("STARKNIFY_REDIS_PASSWORD"); p != "" {
			cfg.Cache.Password = p
		}
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("config: no sources configured")
	}
	seen := map[string]bool{}
	for i, src := range cfg.Sources {
		if src.Name == "" {
			return fmt.Errorf("config: source[%d]: name is required", i)
		}
		if seen[src.Name] {
			return fmt.Errorf("config: duplicate source name %q", src.Name)
		}
		seen[src.Name] = true
		if src.Type == "" {
			return fmt.Errorf("config: source %q: type is required", src.Name)
		}
		if !validSourceTypes[src.Type] {
			return fmt.Errorf("config: source %q: unknown type %q (sqlite/postgres/mysql/mssql/clickhouse/snowflake)",
				src.Name, src.Type)
		}
		if src.DSN == "" {
			return fmt.Errorf("config: source %q: dsn is required", src.Name)
		}
	}
	return nil
}
