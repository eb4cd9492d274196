package cache

// ScopedKeyer prefixes every key of an inner Keyer, isolating one tenant's
// entries from another's in a shared backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "team:charts:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil) with prefix.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) SourceKey(uri string) string {
	return k.prefix + k.inner.SourceKey(uri)
}

func (k *ScopedKeyer) ElaborateKey(docHash string) string {
	return k.prefix + k.inner.ElaborateKey(docHash)
}

func (k *ScopedKeyer) CompileKey(docHash string, opts CompileKeyOpts) string {
	return k.prefix + k.inner.CompileKey(docHash, opts)
}
