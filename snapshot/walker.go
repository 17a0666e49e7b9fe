package snapshot

import (
	"fmt"
	"strconv"

	"github.com/scenekit/vdiff/document"
	"github.com/scenekit/vdiff/policy"
)

// Walk flattens an entity's property graph into a path→value map.
//
// Primitive-typed properties are serialized in place. Pointer properties
// become "Type:Name" reference strings, which is what breaks reference
// cycles: a walk never enters another top-level entity. Embedded structs
// are recursed into with a dotted path; collection items extend the path
// with "[name]" (or "[index]" when unnamed).
//
// Read-only and reflective properties are skipped, as is any path whose
// suffix the policy excludes. A property whose read fails contributes an
// inline "<error:...>" marker instead of aborting the walk.
func Walk(e *document.Entity, pol *policy.Policy) map[string]any {
	out := make(map[string]any)
	walkProps(e.Props, "", pol, out)
	return out
}

func walkProps(props []document.Property, base string, pol *policy.Policy, out map[string]any) {
	for _, p := range props {
		if p.ReadOnly || p.Reflective {
			continue
		}
		path := p.Name
		if base != "" {
			path = base + "." + p.Name
		}
		if pol.SkipPath(path) {
			continue
		}
		if p.ReadErr != nil {
			out[path] = fmt.Sprintf("<error:%s>", p.ReadErr)
			continue
		}

		v := p.Value
		switch v.Kind() {
		case document.KindPointer:
			if v.IsNilPointer() {
				out[path] = nil
			} else {
				out[path] = v.Ref()
			}
		case document.KindStruct:
			if s := v.StructVal(); s != nil {
				walkProps(s.Props, path, pol, out)
			}
		case document.KindCollection:
			walkItems(v.Items(), path, pol, out)
		default:
			out[path] = Serialize(v)
		}
	}
}

func walkItems(items []document.Item, path string, pol *policy.Policy, out map[string]any) {
	for idx, item := range items {
		key := item.Name
		if key == "" {
			key = strconv.Itoa(idx)
		}
		sub := path + "[" + key + "]"
		switch {
		case item.IsRef():
			out[sub] = item.RefType + ":" + item.RefName
		case item.Embedded != nil:
			walkProps(item.Embedded.Props, sub, pol, out)
		}
	}
}
