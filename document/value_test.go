package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueKinds(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		kind Kind
	}{
		{"bool", Bool(true), KindBool},
		{"int", Int(7), KindInt},
		{"float", Float(1.5), KindFloat},
		{"string", String("x"), KindString},
		{"enum", Enum("MESH"), KindEnum},
		{"vector", Vector(1, 2, 3), KindVector},
		{"color", Color(1, 0, 0, 1), KindColor},
		{"euler", Euler(0, 0, 0), KindEuler},
		{"quaternion", Quaternion(1, 0, 0, 0), KindQuaternion},
		{"matrix", Matrix([]float64{1, 0}, []float64{0, 1}), KindMatrix},
		{"pointer", Pointer("Mesh", "Cube"), KindPointer},
		{"struct", Embedded(&Struct{}), KindStruct},
		{"collection", CollectionVal(), KindCollection},
		{"opaque", Opaque("<bpy_struct>"), KindOpaque},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.v.Kind())
		})
	}
}

func TestPointerRef(t *testing.T) {
	v := Pointer("Mesh", "Cube")
	assert.False(t, v.IsNilPointer())
	assert.Equal(t, "Mesh:Cube", v.Ref())
	assert.Equal(t, "Cube", v.RefName())

	assert.True(t, NilPointer().IsNilPointer())
}

func TestItemIsRef(t *testing.T) {
	ref := Item{Name: "Cube", RefType: "Object", RefName: "Cube"}
	assert.True(t, ref.IsRef())

	emb := Item{Name: "Subsurf", Embedded: &Struct{}}
	assert.False(t, emb.IsRef())
}

func TestEntityDataName(t *testing.T) {
	assert.Equal(t, "Cube", (&Entity{DataRef: "Mesh:Cube"}).DataName())
	assert.Equal(t, "NONE", (&Entity{}).DataName())
	// A ref without a type tag degrades to the raw string.
	assert.Equal(t, "Cube", (&Entity{DataRef: "Cube"}).DataName())
}

func TestDocumentLookup(t *testing.T) {
	doc := &Document{
		Collections: []Collection{
			{Name: "meshes", Entities: []*Entity{{Type: "Mesh", Name: "Cube"}}},
			{Name: "objects", Entities: []*Entity{{Type: "Object", Name: "Cube"}}},
		},
	}

	m := doc.Lookup("Mesh:Cube")
	if assert.NotNil(t, m) {
		assert.Equal(t, "Mesh", m.Type)
	}
	o := doc.Lookup("Object:Cube")
	if assert.NotNil(t, o) {
		assert.Equal(t, "Object", o.Type)
	}
	assert.Nil(t, doc.Lookup("Mesh:Missing"))
	assert.Nil(t, doc.Lookup("malformed"))
	assert.Equal(t, 2, doc.EntityCount())
}
