package document

import (
	"fmt"
	"strings"
)

// Kind identifies the capability class of a property value.
// The walker dispatches on Kind; unknown kinds degrade to their string
// representation rather than failing the walk.
type Kind uint8

const (
	// KindInvalid is the zero value and marks an uninitialized Value.
	KindInvalid Kind = iota

	// KindBool is a boolean primitive.
	KindBool

	// KindInt is an integer primitive.
	KindInt

	// KindFloat is a floating-point primitive.
	KindFloat

	// KindString is a string primitive.
	KindString

	// KindEnum is an enumeration value, carried as its string identifier.
	KindEnum

	// KindVector is a fixed-size numeric vector (position, scale, ...).
	KindVector

	// KindColor is an RGB/RGBA color, serialized like a vector.
	KindColor

	// KindEuler is an euler rotation triple.
	KindEuler

	// KindQuaternion is a quaternion rotation.
	KindQuaternion

	// KindMatrix is a row-major numeric matrix.
	KindMatrix

	// KindPointer is a reference to another top-level entity, stored as a
	// "Type:Name" pair rather than a live link.
	KindPointer

	// KindStruct is an embedded sub-structure owned by the entity.
	KindStruct

	// KindCollection is an ordered collection of named or indexed items.
	KindCollection

	// KindOpaque is an uninspectable host value carried as a string.
	KindOpaque
)

// String returns the kind's lowercase identifier.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindVector:
		return "vector"
	case KindColor:
		return "color"
	case KindEuler:
		return "euler"
	case KindQuaternion:
		return "quaternion"
	case KindMatrix:
		return "matrix"
	case KindPointer:
		return "pointer"
	case KindStruct:
		return "struct"
	case KindCollection:
		return "collection"
	case KindOpaque:
		return "opaque"
	default:
		return "invalid"
	}
}

// Value is a tagged union over the closed kind set. Values are immutable
// once constructed.
type Value struct {
	kind    Kind
	boolVal bool
	intVal  int64
	fltVal  float64
	strVal  string // string, enum, opaque
	floats  []float64
	matrix  [][]float64
	refType string // pointer target type ("" for nil pointer)
	refName string // pointer target name
	struc   *Struct
	items   []Item
}

// Item is one element of a collection property. An item is either a
// reference to a top-level entity or an embedded struct, optionally named.
// Unnamed items are addressed by their index.
type Item struct {
	Name     string
	RefType  string
	RefName  string
	Embedded *Struct
}

// IsRef reports whether the item references a top-level entity.
func (it Item) IsRef() bool { return it.RefType != "" }

// Struct is an embedded sub-structure: an ordered list of properties that
// belongs to its owning entity rather than being a document-level entity.
type Struct struct {
	Props []Property
}

// Property is one named slot in an entity's (or embedded struct's) schema.
type Property struct {
	Name string

	// ReadOnly properties are never walked or hashed.
	ReadOnly bool

	// Reflective marks the schema's own self-reference slot, which every
	// entity carries and which must never be traversed.
	Reflective bool

	Value Value

	// ReadErr simulates (or records) a host-side read failure. The walker
	// records an inline error marker instead of the value.
	ReadErr error
}

// Bool constructs a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, boolVal: v} }

// Int constructs an integer value.
func Int(v int64) Value { return Value{kind: KindInt, intVal: v} }

// Float constructs a float value.
func Float(v float64) Value { return Value{kind: KindFloat, fltVal: v} }

// String constructs a string value.
func String(v string) Value { return Value{kind: KindString, strVal: v} }

// Enum constructs an enum value from its string identifier.
func Enum(v string) Value { return Value{kind: KindEnum, strVal: v} }

// Vector constructs a numeric vector value.
func Vector(vs ...float64) Value { return Value{kind: KindVector, floats: vs} }

// Color constructs a color value.
func Color(vs ...float64) Value { return Value{kind: KindColor, floats: vs} }

// Euler constructs an euler rotation value.
func Euler(vs ...float64) Value { return Value{kind: KindEuler, floats: vs} }

// Quaternion constructs a quaternion rotation value.
func Quaternion(vs ...float64) Value { return Value{kind: KindQuaternion, floats: vs} }

// Matrix constructs a row-major matrix value.
func Matrix(rows ...[]float64) Value { return Value{kind: KindMatrix, matrix: rows} }

// Pointer constructs a reference to the top-level entity "typ:name".
func Pointer(typ, name string) Value {
	return Value{kind: KindPointer, refType: typ, refName: name}
}

// NilPointer constructs an unset pointer property.
func NilPointer() Value { return Value{kind: KindPointer} }

// Embedded constructs an embedded-struct value.
func Embedded(s *Struct) Value { return Value{kind: KindStruct, struc: s} }

// CollectionVal constructs a collection value.
func CollectionVal(items ...Item) Value { return Value{kind: KindCollection, items: items} }

// Opaque constructs an uninspectable value carried as its string form.
func Opaque(repr string) Value { return Value{kind: KindOpaque, strVal: repr} }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// BoolVal returns the boolean payload.
func (v Value) BoolVal() bool { return v.boolVal }

// IntVal returns the integer payload.
func (v Value) IntVal() int64 { return v.intVal }

// FloatVal returns the float payload.
func (v Value) FloatVal() float64 { return v.fltVal }

// StrVal returns the string payload (string, enum, or opaque kinds).
func (v Value) StrVal() string { return v.strVal }

// Floats returns the numeric payload of vector-like kinds.
func (v Value) Floats() []float64 { return v.floats }

// MatrixVal returns the matrix payload.
func (v Value) MatrixVal() [][]float64 { return v.matrix }

// IsNilPointer reports whether a pointer value is unset.
func (v Value) IsNilPointer() bool {
	return v.kind == KindPointer && v.refType == "" && v.refName == ""
}

// Ref returns the "Type:Name" reference string of a pointer value.
func (v Value) Ref() string {
	return v.refType + ":" + v.refName
}

// RefName returns the referenced entity name of a pointer value.
func (v Value) RefName() string { return v.refName }

// StructVal returns the embedded struct payload.
func (v Value) StructVal() *Struct { return v.struc }

// Items returns the collection payload.
func (v Value) Items() []Item { return v.items }

// GoString returns a debugging form; not used for hashing or output.
func (v Value) GoString() string {
	switch v.kind {
	case KindPointer:
		if v.IsNilPointer() {
			return "pointer(nil)"
		}
		return fmt.Sprintf("pointer(%s)", v.Ref())
	case KindCollection:
		names := make([]string, 0, len(v.items))
		for _, it := range v.items {
			names = append(names, it.Name)
		}
		return fmt.Sprintf("collection[%s]", strings.Join(names, ","))
	default:
		return v.kind.String()
	}
}
