package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments can
// share one Redis instance.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// TraceKey generates a prefixed trace key.
func (k *ScopedKeyer) TraceKey(fingerprint string, opts TraceKeyOpts) string {
	return k.prefix + k.inner.TraceKey(fingerprint, opts)
}

// TraceIDKey generates a prefixed trace ID key.
func (k *ScopedKeyer) TraceIDKey(id string) string {
	return k.prefix + k.inner.TraceIDKey(id)
}
