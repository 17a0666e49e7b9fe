// Package hashcache caches per-file digest results in Redis.
//
// A cache entry is keyed by the file's path, size, and modification time
// plus the policy digest, so any change to the file or to the comparison
// semantics misses the cache. Entries expire on a TTL; the cache is a pure
// accelerator and every operation degrades to a miss on error.
package hashcache
