// Package snapshot turns a scene document into a flat, hashable, comparable
// representation: per-entity property maps with content hashes, keyed by a
// stable identity, plus a document-level digest.
//
// The pipeline is walk → hash → identify:
//
//   - The walker flattens an entity's property graph into a path→value map,
//     applying the policy's exclusions and recording read failures as inline
//     error markers instead of aborting.
//   - The entity hash folds the map's sorted keys and canonical value forms
//     through BLAKE2s, so two walks of identical content always agree.
//   - The identity resolver assigns the entity its snapshot key using a
//     three-tier strategy: author-assigned tag property, stable container
//     identity, content-hash fallback.
//
// All of it is deterministic: traversal order never affects a hash, a key,
// or the document digest.
package snapshot
