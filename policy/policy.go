// Package policy configures which document collections and property paths
// the snapshot engine excludes from traversal and hashing.
//
// Exclusions exist for two reasons: administrative collections carry no
// authored meaning, and bulk-data paths (geometry buffers, pixel buffers,
// computed transform caches) are too expensive and too volatile to compare
// field by field. Because exclusions change comparison semantics, the policy
// exposes a deterministic digest so consumers can pin or detect the
// semantics version they compared under.
package policy

import (
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2s"
)

// Policy holds the two exclusion sets. Construct via Default or New; the
// sets are normalized (sorted, deduplicated) so the digest is stable.
type Policy struct {
	skipCollections []string
	skipPaths       []string
}

// Default returns the stock policy: administrative document collections and
// bulk/volatile property-path suffixes.
func Default() *Policy {
	return New(
		[]string{
			"batch_remove",
			"bl_rna",
			"filepath",
			"is_dirty",
			"is_saved",
			"orphans_purge",
			"rna_type",
			"temp_data",
			"user_map",
			"window_managers",
			"workspaces",
		},
		[]string{
			// heavy payloads
			"edges",
			"loops",
			"pixels",
			"polygons",
			"tiles",
			"vertices",
			// runtime-only / noisy
			"matrix_world",
			"rna_type",
		},
	)
}

// New builds a policy from the given exclusion sets. Input order does not
// matter; the sets are sorted and deduplicated.
func New(skipCollections, skipPaths []string) *Policy {
	return &Policy{
		skipCollections: normalize(skipCollections),
		skipPaths:       normalize(skipPaths),
	}
}

func normalize(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// SkipCollection reports whether a document collection is excluded from
// snapshotting.
func (p *Policy) SkipCollection(name string) bool {
	i := sort.SearchStrings(p.skipCollections, name)
	return i < len(p.skipCollections) && p.skipCollections[i] == name
}

// SkipPath reports whether a property path is excluded from traversal.
// Matching is by path suffix, so "data.vertices" matches the "vertices"
// entry regardless of nesting depth.
func (p *Policy) SkipPath(path string) bool {
	for _, suffix := range p.skipPaths {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// SkipCollections returns the excluded-collections set, sorted.
func (p *Policy) SkipCollections() []string {
	out := make([]string, len(p.skipCollections))
	copy(out, p.skipCollections)
	return out
}

// SkipPaths returns the excluded-path-suffixes set, sorted.
func (p *Policy) SkipPaths() []string {
	out := make([]string, len(p.skipPaths))
	copy(out, p.skipPaths)
	return out
}

// Digest returns a deterministic hex digest over the policy's serialized,
// sorted contents. Any change to either set changes the digest.
func (p *Policy) Digest() string {
	payload := struct {
		SkipCollections []string `json:"skip_collections"`
		SkipPaths       []string `json:"skip_paths"`
	}{
		SkipCollections: p.skipCollections,
		SkipPaths:       p.skipPaths,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		// Both fields are string slices; Marshal cannot fail on them.
		panic(err)
	}
	sum := blake2s.Sum256(data)
	return hex.EncodeToString(sum[:])
}
