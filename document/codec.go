package document

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scene file format
//
// Documents are stored as YAML. Collections map to named entity lists, and
// every property value is written as a one-key mapping naming its kind:
//
//	collections:
//	  objects:
//	    container: true
//	    entities:
//	      - type: Object
//	        name: Cube
//	        subtype: MESH
//	        data: Mesh:Cube
//	        props:
//	          location: {vector: [0, 0, 0]}
//	          hide_select: {bool: false}
//	          modifiers:
//	            collection:
//	              - name: Subsurf
//	                struct:
//	                  levels: {int: 2}
//
// Pointer properties are written as "Type:Name" reference strings and are
// kept as references after load; they are never resolved into live links.

type sceneFile struct {
	Collections map[string]collectionNode `yaml:"collections"`
}

type collectionNode struct {
	Container bool         `yaml:"container"`
	Entities  []entityNode `yaml:"entities"`
}

type entityNode struct {
	Type    string              `yaml:"type"`
	Name    string              `yaml:"name"`
	Subtype string              `yaml:"subtype"`
	Data    string              `yaml:"data"`
	Linked  bool                `yaml:"linked"`
	Custom  map[string]string   `yaml:"custom"`
	Props   map[string]propNode `yaml:"props"`
}

type propNode struct {
	Bool       *bool               `yaml:"bool"`
	Int        *int64              `yaml:"int"`
	Float      *float64            `yaml:"float"`
	String     *string             `yaml:"string"`
	Enum       *string             `yaml:"enum"`
	Vector     []float64           `yaml:"vector"`
	Color      []float64           `yaml:"color"`
	Euler      []float64           `yaml:"euler"`
	Quaternion []float64           `yaml:"quaternion"`
	Matrix     [][]float64         `yaml:"matrix"`
	Pointer    *string             `yaml:"pointer"`
	Struct     map[string]propNode `yaml:"struct"`
	Collection []itemNode          `yaml:"collection"`
	Opaque     *string             `yaml:"opaque"`

	ReadOnly   bool   `yaml:"readonly"`
	Reflective bool   `yaml:"reflective"`
	Error      string `yaml:"error"`
}

type itemNode struct {
	Name    string              `yaml:"name"`
	Pointer *string             `yaml:"pointer"`
	Struct  map[string]propNode `yaml:"struct"`
}

// LoadScene reads and parses the scene file at path.
func LoadScene(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScene(data)
}

// ParseScene parses scene YAML into a Document. Collection and property
// order within the returned document is sorted by name so that two loads of
// the same bytes produce identical documents.
func ParseScene(data []byte) (*Document, error) {
	var file sceneFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if file.Collections == nil {
		return nil, errors.New("parse scene: missing collections block")
	}

	doc := &Document{}
	names := make([]string, 0, len(file.Collections))
	for name := range file.Collections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		node := file.Collections[name]
		coll := Collection{Name: name, Container: node.Container}
		for _, en := range node.Entities {
			ent, err := decodeEntity(en, node.Container)
			if err != nil {
				return nil, fmt.Errorf("collection %s: %w", name, err)
			}
			coll.Entities = append(coll.Entities, ent)
		}
		doc.Collections = append(doc.Collections, coll)
	}
	return doc, nil
}

func decodeEntity(en entityNode, container bool) (*Entity, error) {
	if en.Type == "" {
		return nil, fmt.Errorf("entity %q: missing type", en.Name)
	}
	props, err := decodeProps(en.Props)
	if err != nil {
		return nil, fmt.Errorf("entity %q: %w", en.Name, err)
	}
	return &Entity{
		Type:      en.Type,
		Name:      en.Name,
		Subtype:   en.Subtype,
		DataRef:   en.Data,
		Container: container,
		Linked:    en.Linked,
		Custom:    en.Custom,
		Props:     props,
	}, nil
}

func decodeProps(nodes map[string]propNode) ([]Property, error) {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	props := make([]Property, 0, len(nodes))
	for _, name := range names {
		node := nodes[name]
		p := Property{
			Name:       name,
			ReadOnly:   node.ReadOnly,
			Reflective: node.Reflective,
		}
		if node.Error != "" {
			p.ReadErr = errors.New(node.Error)
			props = append(props, p)
			continue
		}
		v, err := decodeValue(node)
		if err != nil {
			return nil, fmt.Errorf("prop %s: %w", name, err)
		}
		p.Value = v
		props = append(props, p)
	}
	return props, nil
}

func decodeValue(node propNode) (Value, error) {
	switch {
	case node.Bool != nil:
		return Bool(*node.Bool), nil
	case node.Int != nil:
		return Int(*node.Int), nil
	case node.Float != nil:
		return Float(*node.Float), nil
	case node.String != nil:
		return String(*node.String), nil
	case node.Enum != nil:
		return Enum(*node.Enum), nil
	case node.Vector != nil:
		return Vector(node.Vector...), nil
	case node.Color != nil:
		return Color(node.Color...), nil
	case node.Euler != nil:
		return Euler(node.Euler...), nil
	case node.Quaternion != nil:
		return Quaternion(node.Quaternion...), nil
	case node.Matrix != nil:
		return Matrix(node.Matrix...), nil
	case node.Pointer != nil:
		if *node.Pointer == "" {
			return NilPointer(), nil
		}
		typ, name, ok := splitRef(*node.Pointer)
		if !ok {
			return Value{}, fmt.Errorf("malformed pointer reference %q", *node.Pointer)
		}
		return Pointer(typ, name), nil
	case node.Struct != nil:
		props, err := decodeProps(node.Struct)
		if err != nil {
			return Value{}, err
		}
		return Embedded(&Struct{Props: props}), nil
	case node.Collection != nil:
		items := make([]Item, 0, len(node.Collection))
		for i, in := range node.Collection {
			item, err := decodeItem(in)
			if err != nil {
				return Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, item)
		}
		return CollectionVal(items...), nil
	case node.Opaque != nil:
		return Opaque(*node.Opaque), nil
	default:
		return Value{}, errors.New("no value kind set")
	}
}

func decodeItem(in itemNode) (Item, error) {
	item := Item{Name: in.Name}
	switch {
	case in.Pointer != nil:
		typ, name, ok := splitRef(*in.Pointer)
		if !ok {
			return Item{}, fmt.Errorf("malformed item reference %q", *in.Pointer)
		}
		item.RefType, item.RefName = typ, name
	case in.Struct != nil:
		props, err := decodeProps(in.Struct)
		if err != nil {
			return Item{}, err
		}
		item.Embedded = &Struct{Props: props}
	default:
		return Item{}, errors.New("item needs pointer or struct")
	}
	return item, nil
}

func splitRef(ref string) (typ, name string, ok bool) {
	for i := 0; i < len(ref); i++ {
		if ref[i] == ':' {
			if i == 0 || i == len(ref)-1 {
				return "", "", false
			}
			return ref[:i], ref[i+1:], true
		}
	}
	return "", "", false
}
