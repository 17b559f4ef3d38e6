// Package httputil provides the HTTP client for pulling journey exports
// from the analytics backend.
//
// # Overview
//
// The package provides:
//
//   - [Client]: a caching, retrying client for the journeys export API
//   - [Retry]: automatic retry with exponential backoff
//
// # Caching
//
// Responses are cached through a [cache.Cache] using HTTP-level keys, so a
// repeated layout run within the TTL never re-contacts the backend. Pass
// refresh=true to bypass the cache for a single fetch.
//
// # Retry
//
// Transient failures are wrapped in [RetryableError] and retried with
// exponential backoff:
//
//   - Network errors
//   - 5xx server errors
//
// 404s and other client errors fail immediately.
//
// [cache.Cache]: github.com/uxlens/journeyflow/pkg/cache#Cache
package httputil
