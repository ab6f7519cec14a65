package cache

import (
	"github.com/cespare/xxhash/v2"

	"github.com/hupe1980/geosearch/shape"
)

const numShards = 16

// Key identifies the stored geometry of one field of one document.
type Key struct {
	Field string
	Doc   uint32
}

// Shapes is a sharded LRU of decoded geometry for high-concurrency
// verification.
type Shapes struct {
	shards [numShards]*LRU[Key, *shape.Shape]
}

// NewShapes creates a cache of about capacity entries. The capacity is
// divided evenly across all shards.
func NewShapes(capacity int) *Shapes {
	shardCapacity := max(capacity/numShards, 1)

	s := &Shapes{}
	for i := range numShards {
		s.shards[i] = NewLRU[Key, *shape.Shape](shardCapacity)
	}
	return s
}

// shard spreads consecutive documents of a field across shards.
func (s *Shapes) shard(key Key) *LRU[Key, *shape.Shape] {
	h := xxhash.Sum64String(key.Field) ^ (uint64(key.Doc) * 0x9e3779b97f4a7c15)
	return s.shards[h%numShards]
}

// Get returns the cached geometry of field for doc.
func (s *Shapes) Get(field string, doc uint32) (*shape.Shape, bool) {
	key := Key{Field: field, Doc: doc}
	return s.shard(key).Get(key)
}

// Put caches the geometry of field for doc.
func (s *Shapes) Put(field string, doc uint32, sh *shape.Shape) {
	key := Key{Field: field, Doc: doc}
	s.shard(key).Set(key, sh)
}

// Stats returns the combined statistics of all shards.
func (s *Shapes) Stats() Stats {
	var total Stats
	for _, sh := range s.shards {
		total = total.Add(sh.Stats())
	}
	return total
}
