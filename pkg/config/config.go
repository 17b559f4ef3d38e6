// Package config loads journeyflow configuration from TOML files.
//
// Configuration is optional: the zero value of every section is usable, so
// the CLI and server run without a config file. A file fills in backend
// endpoints, storage connections and layout tuning:
//
//	[server]
//	addr = ":8080"
//
//	[backend]
//	url = "https://analytics.example.com"
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//
//	[store]
//	mongo_uri = "mongodb://localhost:27017"
//
//	[flow]
//	bucket_width = 3
//	min_bucket_affinity = 2
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/uxlens/journeyflow/pkg/errors"
	"github.com/uxlens/journeyflow/pkg/flow"
)

// Config is the full journeyflow configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Backend BackendConfig `toml:"backend"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
	Flow    FlowConfig    `toml:"flow"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// Addr is the listen address. Defaults to ":8080".
	Addr string `toml:"addr"`

	// ReadTimeoutSeconds bounds request reads. Defaults to 15.
	ReadTimeoutSeconds int `toml:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds response writes. Defaults to 30.
	WriteTimeoutSeconds int `toml:"write_timeout_seconds"`
}

// ReadTimeout returns the read timeout as a duration.
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration.
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// BackendConfig configures the analytics backend journeys are fetched from.
type BackendConfig struct {
	// URL is the backend base URL. Empty disables remote fetching; the CLI
	// then requires a local journeys file.
	URL string `toml:"url"`

	// APIKey authenticates backend requests (sent as a Bearer token).
	APIKey string `toml:"api_key"`

	// TimeoutSeconds bounds a single fetch. Defaults to 30.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Timeout returns the fetch timeout as a duration.
func (c BackendConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheConfig configures caching backends.
type CacheConfig struct {
	// Dir is the file cache directory for CLI usage.
	// Empty selects the platform cache dir (see pipeline.DefaultCacheDir).
	Dir string `toml:"dir"`

	// RedisURL selects a Redis cache for server deployments.
	// Empty selects the file cache.
	RedisURL string `toml:"redis_url"`

	// Disabled turns caching off entirely.
	Disabled bool `toml:"disabled"`
}

// StoreConfig configures report persistence.
type StoreConfig struct {
	// MongoURI selects a MongoDB report store.
	// Empty selects the in-memory store (reports lost on restart).
	MongoURI string `toml:"mongo_uri"`

	// Database is the MongoDB database name. Defaults to "journeyflow".
	Database string `toml:"database"`
}

// FlowConfig tunes the layout engine. Zero values fall back to the engine
// defaults, so a partial [flow] section works.
type FlowConfig struct {
	BucketWidth         int     `toml:"bucket_width"`
	MinBucketAffinity   int     `toml:"min_bucket_affinity"`
	LoopWeightBase      float64 `toml:"loop_weight_base"`
	LoopBalanceWeight   float64 `toml:"loop_balance_weight"`
	StrongPairThreshold int     `toml:"strong_pair_threshold"`
	StrongPairBoost     float64 `toml:"strong_pair_boost"`
}

// FlowOptions converts the config section to engine options.
func (c FlowConfig) FlowOptions() flow.Options {
	return flow.Options{
		BucketWidth:         c.BucketWidth,
		MinBucketAffinity:   c.MinBucketAffinity,
		LoopWeightBase:      c.LoopWeightBase,
		LoopBalanceWeight:   c.LoopBalanceWeight,
		StrongPairThreshold: c.StrongPairThreshold,
		StrongPairBoost:     c.StrongPairBoost,
	}
}

// Default returns a config with all defaults applied.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeoutSeconds <= 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds <= 0 {
		c.Server.WriteTimeoutSeconds = 30
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = 30
	}
	if c.Store.Database == "" {
		c.Store.Database = "journeyflow"
	}
}

// Load reads a TOML config file, applies defaults and validates.
// A missing path returns the defaults without error so the CLI works
// out of the box.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML config bytes, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	if c.Backend.URL != "" {
		if err := errors.ValidateURL(c.Backend.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "backend.url")
		}
	}
	if c.Flow.BucketWidth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "flow.bucket_width cannot be negative")
	}
	if c.Flow.MinBucketAffinity < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "flow.min_bucket_affinity cannot be negative")
	}
	return nil
}
