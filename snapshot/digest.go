package snapshot

import (
	"encoding/hex"
	"sort"

	"golang.org/x/crypto/blake2s"
)

// Digest collapses a snapshot into a single deterministic hex digest by
// feeding (identity key, entity hash) pairs through BLAKE2s in sorted key
// order. Two snapshots holding identical entities under identical keys
// produce the same digest regardless of build order.
func Digest(snap Snapshot) string {
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h, err := blake2s.New256(nil)
	if err != nil {
		panic(err)
	}
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte(snap[k].Hash))
	}
	return hex.EncodeToString(h.Sum(nil))
}
