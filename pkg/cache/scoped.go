package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful in the hosted API where different projects or API keys
// need separate cache namespaces.
//
// Example usage:
//
//	// Project-specific keys for private journey data
//	projectKeyer := NewScopedKeyer(NewDefaultKeyer(), "project:shop-app:")
//
//	// Global keys for shared demo data
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// FlowKey generates a prefixed key for flow layout caching.
func (k *ScopedKeyer) FlowKey(journeysHash string, opts FlowKeyOpts) string {
	return k.prefix + k.inner.FlowKey(journeysHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(flowHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(flowHash, opts)
}
