// Package cache provides caching for journey data, computed flow layouts,
// and rendered artifacts.
//
// # Architecture
//
// The package separates two concerns:
//
//   - [Cache] is the storage backend: where bytes live and for how long.
//     Implementations cover local files ([FileCache]), Redis ([RedisCache])
//     for the hosted API, and a no-op ([NullCache]) for tests and --no-cache.
//
//   - [Keyer] is the naming scheme: how a cache key is derived from the
//     thing being cached. [DefaultKeyer] hashes the inputs that affect the
//     output, so a change in journeys or tuning options never serves a
//     stale layout.
//
// # Cache Levels
//
// Three levels are cached independently:
//
//	HTTP       raw journey exports fetched from the analytics backend
//	Flow       computed layout results (screen order + series)
//	Artifact   rendered outputs (DOT, SVG, PNG, JSON)
package cache

import (
	"context"
	"time"
)

// TTL constants for the different cache levels.
const (
	// HTTPCacheTTL bounds how long raw journey exports are reused before
	// refetching from the analytics backend.
	HTTPCacheTTL = 1 * time.Hour

	// FlowCacheTTL applies to computed layouts. Layouts are pure functions
	// of their inputs, so the TTL exists only to bound disk usage.
	FlowCacheTTL = 7 * 24 * time.Hour

	// ArtifactCacheTTL applies to rendered outputs.
	ArtifactCacheTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented cache with TTL support.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// FlowKeyOpts captures the layout tuning parameters that affect a computed
// flow result. Two computations with different options must never share a
// cache entry.
type FlowKeyOpts struct {
	BucketWidth         int
	MinBucketAffinity   int
	LoopWeightBase      float64
	LoopBalanceWeight   float64
	StrongPairThreshold int
	StrongPairBoost     float64
}

// ArtifactKeyOpts captures the rendering parameters that affect an artifact.
type ArtifactKeyOpts struct {
	Format   string // dot, svg, png, json
	Detailed bool   // verbose node labels in graph outputs
}

// Keyer generates cache keys for the different cache levels.
type Keyer interface {
	// HTTPKey generates a key for HTTP response caching.
	HTTPKey(namespace, key string) string

	// FlowKey generates a key for a computed flow layout. journeysHash
	// identifies the input journey set (see [Hash]).
	FlowKey(journeysHash string, opts FlowKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact. flowHash
	// identifies the computed layout the artifact was rendered from.
	ArtifactKey(flowHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// FlowKey generates a key for flow layout caching.
// The options are hashed into the key so tuning changes invalidate entries.
func (k *DefaultKeyer) FlowKey(journeysHash string, opts FlowKeyOpts) string {
	return hashKey("flow", journeysHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(flowHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", flowHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
