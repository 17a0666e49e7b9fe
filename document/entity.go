package document

import "strings"

// Entity is one authored unit of document data: an object, a mesh, a
// material, and so on. Entities are the granularity at which snapshots are
// keyed and diffs are reported.
type Entity struct {
	// Type is the entity's type tag, e.g. "Object", "Mesh", "Material".
	Type string

	// Name is the entity's full display name, unique within its collection.
	Name string

	// Subtype distinguishes variants of container entities, e.g. an Object
	// of subtype "MESH" vs "LIGHT". Empty for non-containers.
	Subtype string

	// DataRef is the "Type:Name" reference to the data entity a container
	// wraps (an Object's mesh, for example). Empty when the entity wraps
	// nothing. Stored as a reference, never a live link.
	DataRef string

	// Container marks entities whose identity should derive from the data
	// they wrap rather than from their own name (the stable-identity rule).
	Container bool

	// Linked marks entities sourced from an external library rather than
	// authored in this document.
	Linked bool

	// Custom holds author-assigned tag properties (e.g. a GUID), the
	// strongest identity source when the caller configures a tag property.
	Custom map[string]string

	// Props is the entity's ordered property schema.
	Props []Property
}

// DataName returns the name part of DataRef, or "NONE" when the entity
// wraps no data. Used by the stable-identity strategy.
func (e *Entity) DataName() string {
	if e.DataRef == "" {
		return "NONE"
	}
	if i := strings.IndexByte(e.DataRef, ':'); i >= 0 {
		return e.DataRef[i+1:]
	}
	return e.DataRef
}

// Collection is one document-level group of entities, e.g. "objects" or
// "materials". The collection name is the category used to group diff
// output.
type Collection struct {
	// Name is the collection's identifier within the document.
	Name string

	// Container marks collections whose entities wrap other data entities.
	Container bool

	Entities []*Entity
}

// Document is one loaded scene document: the full set of entity
// collections at one point in time.
type Document struct {
	Collections []Collection
}

// Lookup returns the entity addressed by a "Type:Name" reference, or nil.
func (d *Document) Lookup(ref string) *Entity {
	i := strings.IndexByte(ref, ':')
	if i < 0 {
		return nil
	}
	typ, name := ref[:i], ref[i+1:]
	for _, c := range d.Collections {
		for _, e := range c.Entities {
			if e.Type == typ && e.Name == name {
				return e
			}
		}
	}
	return nil
}

// EntityCount returns the total number of entities across all collections.
func (d *Document) EntityCount() int {
	n := 0
	for _, c := range d.Collections {
		n += len(c.Entities)
	}
	return n
}
