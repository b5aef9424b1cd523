// Package cmap provides a sharded concurrent map keyed by string.
//
// Keys are spread over a power-of-two number of shards by murmur3 hash,
// each shard guarded by its own RWMutex. rudis uses it for bookkeeping
// that is touched on every connection (the live connection set and the
// per-client rate limiters), keeping that traffic off a single lock.
//
// Usage:
//
//	m := cmap.New[*Conn]()
//	m.Set(id, conn)
//	conn, ok := m.Get(id)
//
// Range visits shards one at a time, so it does not observe a single
// consistent snapshot of the whole map.
package cmap
