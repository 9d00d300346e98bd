package object

import (
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize bounds the number of decoded objects held in memory.
const DefaultCacheSize = 512

// objectCache is a bounded map from address to decoded object sitting
// in front of disk reads. Eviction is recency-based. The underlying
// lru.Cache serializes access internally, so concurrent readers and
// writers cannot corrupt it; any inconsistency observed here is
// treated as a miss and the caller falls through to disk.
type objectCache struct {
	c *lru.Cache
}

// newObjectCache returns a cache of the given capacity, or a disabled
// cache when size is not positive.
func newObjectCache(size int) *objectCache {
	if size <= 0 {
		return &objectCache{}
	}
	c, err := lru.New(size)
	if err != nil {
		return &objectCache{}
	}
	return &objectCache{c: c}
}

func (oc *objectCache) get(h Hash) (Object, bool) {
	if oc.c == nil {
		return nil, false
	}
	v, ok := oc.c.Get(h)
	if !ok {
		return nil, false
	}
	o, ok := v.(Object)
	if !ok {
		oc.c.Remove(h)
		return nil, false
	}
	return o, true
}

func (oc *objectCache) add(h Hash, o Object) {
	if oc.c == nil || o == nil {
		return
	}
	oc.c.Add(h, o)
}

func (oc *objectCache) remove(h Hash) {
	if oc.c == nil {
		return
	}
	oc.c.Remove(h)
}

func (oc *objectCache) len() int {
	if oc.c == nil {
		return 0
	}
	return oc.c.Len()
}
