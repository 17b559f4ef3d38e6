package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/uxlens/journeyflow/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeoutSeconds != 15 || cfg.Server.WriteTimeoutSeconds != 30 {
		t.Errorf("server timeouts = %d/%d", cfg.Server.ReadTimeoutSeconds, cfg.Server.WriteTimeoutSeconds)
	}
	if cfg.Backend.TimeoutSeconds != 30 {
		t.Errorf("Backend.TimeoutSeconds = %d, want 30", cfg.Backend.TimeoutSeconds)
	}
	if cfg.Store.Database != "journeyflow" {
		t.Errorf("Store.Database = %q, want journeyflow", cfg.Store.Database)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
[server]
addr = ":9090"

[backend]
url = "https://analytics.example.com"
api_key = "secret"

[cache]
redis_url = "redis://localhost:6379/0"

[store]
mongo_uri = "mongodb://localhost:27017"

[flow]
bucket_width = 5
min_bucket_affinity = 3
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Backend.URL != "https://analytics.example.com" || cfg.Backend.APIKey != "secret" {
		t.Errorf("Backend = %+v", cfg.Backend)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Cache.RedisURL = %q", cfg.Cache.RedisURL)
	}
	if cfg.Store.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("Store.MongoURI = %q", cfg.Store.MongoURI)
	}

	opts := cfg.Flow.FlowOptions()
	if opts.BucketWidth != 5 || opts.MinBucketAffinity != 3 {
		t.Errorf("FlowOptions = %+v", opts)
	}

	// Unset sections keep defaults
	if cfg.Backend.TimeoutSeconds != 30 {
		t.Errorf("Backend.TimeoutSeconds = %d, want default 30", cfg.Backend.TimeoutSeconds)
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte(`[server`))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Parse malformed = %v, want INVALID_CONFIG", err)
	}
}

func TestParse_InvalidBackendURL(t *testing.T) {
	_, err := Parse([]byte(`
[backend]
url = "ftp://example.com"
`))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Parse = %v, want INVALID_CONFIG", err)
	}
}

func TestParse_NegativeTuning(t *testing.T) {
	_, err := Parse([]byte(`
[flow]
bucket_width = -1
`))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Parse = %v, want INVALID_CONFIG", err)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("missing file should yield defaults, got %+v", cfg.Server)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journeyflow.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":7000\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %q, want :7000", cfg.Server.Addr)
	}
}
