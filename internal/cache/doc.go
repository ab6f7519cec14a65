// Package cache provides LRU caching for decoded geometry.
//
// Stored values are immutable per document id, so an entry stays valid
// across every snapshot of an index.
//
// The Sharded cache distributes entries across 16 shards, each an LRU
// guarded by its own mutex. Capacity is counted in entries.
package cache
