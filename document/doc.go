// Package document defines the scene-document model the diff engine
// introspects: typed property values, entities, collections, and the Host
// interface through which the engine loads and inspects documents.
//
// The model mirrors what a scene-authoring host exposes through its
// reflection surface. Every property value belongs to a small closed set of
// kinds (primitive, vector/matrix, pointer, embedded struct, collection),
// so the engine can walk an open-ended, host-defined schema without
// hardcoding entity types.
//
// # References
//
// Pointer properties never hold live links to other top-level entities.
// They store a "Type:Name" reference, which breaks cycles structurally:
// walking an entity can never recurse into another top-level entity.
// Embedded structs (non-top-level sub-structures) are held by value and are
// recursed into.
//
// # Single active document
//
// Hosts expose exactly one active document at a time. FileHost models this
// constraint explicitly: Load replaces the active document. Callers that
// need to compare "current state vs another file" must snapshot first, swap,
// and restore (see the root package).
package document
