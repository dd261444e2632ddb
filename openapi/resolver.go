package openapi

import "strings"

// Kind classifies a resolved schema node.
type Kind int

const (
	// KindUnresolved marks a node that could not be interpreted: an
	// unknown pointer form, a missing target, or a schema with no type
	// information at all. Renderers show it as an opaque value.
	KindUnresolved Kind = iota
	KindObject
	KindArray
	KindPrimitive
	// KindCircular marks the point where a reference chain re-entered
	// itself. It is a terminal leaf, never an error.
	KindCircular
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindPrimitive:
		return "primitive"
	case KindCircular:
		return "circular"
	default:
		return "unresolved"
	}
}

// ResolvedSchema is a dereferenced type description. Properties keep the
// declaration order of the source document.
type ResolvedSchema struct {
	Kind        Kind
	Type        string
	Format      string
	Description string
	// RefPath records the pointer this schema resolved through, when it
	// came from a reference. Circular and unresolved leaves carry it for
	// naming and debugging.
	RefPath    string
	Enum       []any
	Properties []Property
	Items      *ResolvedSchema
}

// Property is one named member of an object schema. Description prefers
// the text written next to the property itself, falling back to the
// referenced schema's own description.
type Property struct {
	Name        string
	Description string
	Required    bool
	Schema      *ResolvedSchema
}

// TypeString renders a short human-readable type label: the referenced
// schema's name when one is known, "array of X" for arrays, "object"
// for inline objects, otherwise the primitive type. Safe on nil.
func (s *ResolvedSchema) TypeString() string {
	if s == nil {
		return "any"
	}
	if s.RefPath != "" {
		return RefName(s.RefPath)
	}
	switch s.Kind {
	case KindArray:
		return "array of " + s.Items.TypeString()
	case KindObject:
		return "object"
	case KindPrimitive:
		if s.Type != "" {
			return s.Type
		}
		return "any"
	default:
		return "any"
	}
}

// RefName returns the bare schema name of a pointer, the part after the
// final slash.
func RefName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// Resolver dereferences schema nodes against a single document. It
// holds no mutable state between calls; each resolution threads its own
// in-progress set, so a Resolver is safe for concurrent use.
type Resolver struct {
	doc *Document
}

func NewResolver(doc *Document) *Resolver {
	return &Resolver{doc: doc}
}

// maxResolveDepth bounds non-circular nesting. Reference cycles are
// already cut by the in-progress set; this catches pathological depth.
const maxResolveDepth = 64

// Resolve turns a raw schema node into a ResolvedSchema. It never
// fails: anything it cannot interpret degrades to a KindUnresolved
// leaf, so partial documents still render.
func (r *Resolver) Resolve(node any) *ResolvedSchema {
	return r.resolve(node, map[string]bool{}, 0)
}

// ResolveRef resolves a pointer string. Unlike Resolve it reports bad
// pointers: *UnsupportedReferenceError for foreign pointer forms and
// *SchemaNotFoundError for missing targets.
func (r *Resolver) ResolveRef(ref string) (*ResolvedSchema, error) {
	target, err := r.deref(ref)
	if err != nil {
		return nil, err
	}
	resolved := r.resolve(target, map[string]bool{ref: true}, 1)
	if resolved.RefPath == "" {
		resolved.RefPath = ref
	}
	return resolved, nil
}

// ResolveSchema resolves a pointer string or an inline schema node
// against a document. The error is non-nil only for the pointer form.
func ResolveSchema(doc *Document, refOrNode any) (*ResolvedSchema, error) {
	r := NewResolver(doc)
	if ref, ok := refOrNode.(string); ok {
		return r.ResolveRef(ref)
	}
	return r.Resolve(refOrNode), nil
}

func (r *Resolver) resolve(node any, inProgress map[string]bool, depth int) *ResolvedSchema {
	if depth > maxResolveDepth {
		return &ResolvedSchema{Kind: KindUnresolved}
	}
	schema, ok := asMap(node)
	if !ok {
		return &ResolvedSchema{Kind: KindUnresolved}
	}

	if ref := stringValue(schema, "$ref"); ref != "" {
		if inProgress[ref] {
			return &ResolvedSchema{Kind: KindCircular, RefPath: ref}
		}
		target, err := r.deref(ref)
		if err != nil {
			return &ResolvedSchema{Kind: KindUnresolved, RefPath: ref}
		}
		inProgress[ref] = true
		resolved := r.resolve(target, inProgress, depth+1)
		delete(inProgress, ref)
		if resolved.RefPath == "" {
			resolved.RefPath = ref
		}
		return resolved
	}

	if members, ok := sliceValue(schema, "allOf"); ok {
		return r.mergeAllOf(schema, members, inProgress, depth)
	}
	for _, key := range []string{"oneOf", "anyOf"} {
		if members, ok := sliceValue(schema, key); ok {
			return r.firstResolvable(members, inProgress, depth)
		}
	}

	typ := stringValue(schema, "type")
	switch {
	case typ == "array":
		out := &ResolvedSchema{
			Kind:        KindArray,
			Type:        "array",
			Description: stringValue(schema, "description"),
		}
		if items, ok := schema.Get("items"); ok {
			out.Items = r.resolve(items, inProgress, depth+1)
		}
		return out
	case typ == "object" || hasProperties(schema):
		return r.resolveObject(schema, inProgress, depth)
	case typ != "":
		values, _ := sliceValue(schema, "enum")
		return &ResolvedSchema{
			Kind:        KindPrimitive,
			Type:        typ,
			Format:      stringValue(schema, "format"),
			Description: stringValue(schema, "description"),
			Enum:        values,
		}
	default:
		return &ResolvedSchema{
			Kind:        KindUnresolved,
			Description: stringValue(schema, "description"),
		}
	}
}

func (r *Resolver) resolveObject(schema *rawMap, inProgress map[string]bool, depth int) *ResolvedSchema {
	out := &ResolvedSchema{
		Kind:        KindObject,
		Type:        "object",
		Description: stringValue(schema, "description"),
	}
	required := requiredSet(schema)
	props, _ := mapValue(schema, "properties")
	if props == nil {
		return out
	}
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		propNode, ok := asMap(pair.Value)
		if !ok {
			continue
		}
		resolved := r.resolve(propNode, inProgress, depth+1)
		desc := stringValue(propNode, "description")
		if desc == "" {
			desc = resolved.Description
		}
		out.Properties = append(out.Properties, Property{
			Name:        pair.Key,
			Description: desc,
			Required:    required[pair.Key],
			Schema:      resolved,
		})
	}
	return out
}

// mergeAllOf flattens allOf members into one object. Later members
// override earlier ones on a name collision, and a required marking
// from any member sticks.
func (r *Resolver) mergeAllOf(schema *rawMap, members []any, inProgress map[string]bool, depth int) *ResolvedSchema {
	out := &ResolvedSchema{
		Kind:        KindObject,
		Type:        "object",
		Description: stringValue(schema, "description"),
	}
	index := map[string]int{}
	for _, member := range members {
		resolved := r.resolve(member, inProgress, depth+1)
		if resolved.Kind != KindObject {
			continue
		}
		for _, p := range resolved.Properties {
			if i, ok := index[p.Name]; ok {
				p.Required = p.Required || out.Properties[i].Required
				out.Properties[i] = p
				continue
			}
			index[p.Name] = len(out.Properties)
			out.Properties = append(out.Properties, p)
		}
	}
	return out
}

// firstResolvable picks the first oneOf/anyOf member that resolves to
// something usable. A documented simplification: variant selection is
// not attempted.
func (r *Resolver) firstResolvable(members []any, inProgress map[string]bool, depth int) *ResolvedSchema {
	for _, member := range members {
		if resolved := r.resolve(member, inProgress, depth+1); resolved.Kind != KindUnresolved {
			return resolved
		}
	}
	return &ResolvedSchema{Kind: KindUnresolved}
}

// deref returns the raw schema a local component pointer targets. The
// name is looked up in components.schemas first and definitions second
// whatever the pointer prefix says; documents in the wild mix the two
// forms across dialects.
func (r *Resolver) deref(ref string) (*rawMap, error) {
	var name string
	switch {
	case strings.HasPrefix(ref, "#/components/schemas/"):
		name = strings.TrimPrefix(ref, "#/components/schemas/")
	case strings.HasPrefix(ref, "#/definitions/"):
		name = strings.TrimPrefix(ref, "#/definitions/")
	default:
		return nil, &UnsupportedReferenceError{Ref: ref}
	}
	if name == "" || strings.Contains(name, "/") {
		return nil, &UnsupportedReferenceError{Ref: ref}
	}
	if target, ok := r.doc.schemaByName(name); ok {
		return target, nil
	}
	return nil, &SchemaNotFoundError{Name: name, Ref: ref}
}

// schemaByName finds a named schema in either declaration section.
func (d *Document) schemaByName(name string) (*rawMap, bool) {
	components, _ := mapValue(d.root, "components")
	if schemas, ok := mapValue(components, "schemas"); ok {
		if m, ok := mapValue(schemas, name); ok {
			return m, true
		}
	}
	definitions, _ := mapValue(d.root, "definitions")
	if m, ok := mapValue(definitions, name); ok {
		return m, true
	}
	return nil, false
}

func hasProperties(schema *rawMap) bool {
	props, ok := mapValue(schema, "properties")
	return ok && props.Len() > 0
}

func requiredSet(schema *rawMap) map[string]bool {
	names, _ := sliceValue(schema, "required")
	set := make(map[string]bool, len(names))
	for _, n := range names {
		if s, ok := n.(string); ok {
			set[s] = true
		}
	}
	return set
}
