package snapshot

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/scenekit/vdiff/document"
)

// Serialize converts a property value into a JSON-safe form: bool, int64,
// float64, string, []float64, or [][]float64. It never fails; kinds it
// cannot convert degrade to their string representation so a diff stays
// usable even for host values the engine does not understand.
//
// Vector-like and matrix kinds become nested float lists, never opaque
// references, so transform diffs stay field-level and human-readable.
func Serialize(v document.Value) any {
	switch v.Kind() {
	case document.KindBool:
		return v.BoolVal()
	case document.KindInt:
		return v.IntVal()
	case document.KindFloat:
		return v.FloatVal()
	case document.KindString, document.KindEnum, document.KindOpaque:
		return v.StrVal()
	case document.KindVector, document.KindColor, document.KindEuler, document.KindQuaternion:
		out := make([]float64, len(v.Floats()))
		copy(out, v.Floats())
		return out
	case document.KindMatrix:
		rows := v.MatrixVal()
		out := make([][]float64, len(rows))
		for i, row := range rows {
			out[i] = make([]float64, len(row))
			copy(out[i], row)
		}
		return out
	case document.KindPointer:
		if v.IsNilPointer() {
			return nil
		}
		return v.Ref()
	default:
		// Struct and collection kinds are flattened by the walker before
		// serialization; reaching here means an unknown kind.
		return v.GoString()
	}
}

// Canonical renders a serialized value in its single canonical text form.
// Hashing and cross-snapshot comparison both go through it, so it must be
// deterministic for every value Serialize can produce, and two values that
// print identically are identical for diff purposes.
func Canonical(v any) string { return canonicalString(v) }

func canonicalString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return t
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(data)
	}
}
