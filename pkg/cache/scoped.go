package cache

// ScopedKeyer prefixes every key of an inner Keyer. The CLI scopes tile keys
// with cache.namespace so deployments sharing one redis or cache directory
// stay apart:
//
//	keyer := NewScopedKeyer(nil, "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) TileKey(provider string, z, x, y int) string {
	return k.prefix + k.inner.TileKey(provider, z, x, y)
}
