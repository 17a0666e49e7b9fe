package snapshot

import "github.com/scenekit/vdiff/document"

// Key computes the entity's identity key, the string used to match the
// "same" entity across two snapshots. Strategies are tried in strict order:
//
//  1. "<Type>:prop:<value>" when the configured tag property is present —
//     the strongest, author-controlled identity.
//  2. "<Type>:stable:<data-name>:<subtype>" for container entities. The key
//     derives from the data the container wraps, not the container's own
//     name, so renames and transforms leave it stable.
//  3. "<Type>:hash:<content-digest>" otherwise. Two entities with identical
//     filtered content collide here by design: without an authored identity
//     they are indistinguishable. Names are diffed as ordinary properties.
//
// Key is a pure function of (entity, hashed state, tag property); it never
// depends on traversal order or runtime state, and it always returns a
// non-empty string.
func Key(e *document.Entity, state *EntityState, idProp string) string {
	if idProp != "" {
		if v, ok := e.Custom[idProp]; ok {
			return e.Type + ":prop:" + v
		}
	}
	if e.Container {
		return e.Type + ":stable:" + e.DataName() + ":" + e.Subtype
	}
	return e.Type + ":hash:" + state.Hash
}
