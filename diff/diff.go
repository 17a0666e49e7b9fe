package diff

import (
	"reflect"

	"github.com/scenekit/vdiff/snapshot"
)

// Option adjusts how Compute assembles its result.
type Option func(*config)

type config struct {
	retainPayloads bool
}

// WithPayloads makes added and removed entries carry the entity's full
// props map instead of an empty existence marker.
func WithPayloads() Option {
	return func(c *config) { c.retainPayloads = true }
}

// Compute diffs two snapshots. Entities only in modified land in Added,
// entities only in original land in Removed, and entities present in both
// under the same identity key are field-diffed when their content hashes
// differ.
//
// The content hash is a pre-filter, not the authority: an entity whose
// hashes differ but whose compared props are equal is not reported.
func Compute(original, modified snapshot.Snapshot, opts ...Option) *Result {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	res := NewResult()
	for key, state := range modified {
		if _, ok := original[key]; !ok {
			put(res.Added, state, cfg.retainPayloads)
		}
	}
	for key, state := range original {
		other, ok := modified[key]
		if !ok {
			put(res.Removed, state, cfg.retainPayloads)
			continue
		}
		if state.Hash == other.Hash {
			continue
		}
		delta := diffProps(state.Props, other.Props)
		if len(delta) == 0 {
			continue
		}
		group, ok := res.Changed[other.Category]
		if !ok {
			group = make(map[string]map[string]FieldDelta)
			res.Changed[other.Category] = group
		}
		group[other.Name()] = delta
	}
	return res
}

func put(dst map[string]map[string]map[string]any, state *snapshot.EntityState, payload bool) {
	group, ok := dst[state.Category]
	if !ok {
		group = make(map[string]map[string]any)
		dst[state.Category] = group
	}
	if payload {
		group[state.Name()] = state.Props
	} else {
		group[state.Name()] = map[string]any{}
	}
}

// diffProps field-diffs two flat props maps over the union of their paths.
// A missing path and a present nil value compare equal, so a nil pointer
// appearing on one side only is not noise.
func diffProps(a, b map[string]any) map[string]FieldDelta {
	delta := make(map[string]FieldDelta)
	for path, av := range a {
		if bv := b[path]; !equalValues(av, bv) {
			delta[path] = FieldDelta{A: av, B: bv}
		}
	}
	for path, bv := range b {
		if _, seen := a[path]; seen {
			continue
		}
		if !equalValues(nil, bv) {
			delta[path] = FieldDelta{A: nil, B: bv}
		}
	}
	return delta
}

// equalValues compares two serialized values, falling back to canonical
// string form to absorb representation noise such as int vs float from a
// JSON round trip.
func equalValues(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	return snapshot.Canonical(a) == snapshot.Canonical(b)
}
