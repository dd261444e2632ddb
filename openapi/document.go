// Package openapi loads OpenAPI v2 and v3 documents into an
// order-preserving tree and resolves schema references against it.
//
// Documents are parsed once and treated as immutable afterwards. Lookups
// tolerate missing or malformed sections; a document with no paths is
// empty, not invalid.
package openapi

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	orderedmap "github.com/pb33f/ordered-map/v2"
	yaml "go.yaml.in/yaml/v4"
)

// rawMap is the order-preserving object node of a parsed document.
type rawMap = orderedmap.OrderedMap[string, any]

// Dialect identifies which OpenAPI generation a document was written
// against. It is detected once at parse time and drives where schemas,
// security schemes and request bodies are looked up.
type Dialect int

const (
	// DialectOAS3 covers OpenAPI 3.x documents, and is the fallback for
	// documents that declare no recognisable version at all.
	DialectOAS3 Dialect = iota
	// DialectOAS2 covers Swagger 2.0 documents.
	DialectOAS2
)

func (d Dialect) String() string {
	if d == DialectOAS2 {
		return "oas2"
	}
	return "oas3"
}

// Document is a parsed OpenAPI document. The underlying tree preserves
// the member order of the source file, so iteration over paths,
// operations and properties follows document order.
type Document struct {
	root    *rawMap
	dialect Dialect
	version string
}

// Info carries the identifying fields of a document's info object.
type Info struct {
	Title       string
	Description string
	Version     string
}

// Parse decodes YAML or JSON document bytes. JSON parses through the
// YAML path, so a single decoder handles both encodings.
func Parse(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Message: "empty document"}
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &ParseError{Message: "invalid YAML or JSON", Cause: err}
	}
	v, err := decodeNode(&node, 0)
	if err != nil {
		return nil, err
	}
	root, ok := v.(*rawMap)
	if !ok {
		return nil, &ParseError{Message: "document root is not an object"}
	}
	doc := &Document{root: root}
	doc.dialect, doc.version = detectDialect(root)
	return doc, nil
}

// maxDecodeDepth bounds the node walk so deeply nested alias chains
// cannot recurse without limit.
const maxDecodeDepth = 1000

func decodeNode(n *yaml.Node, depth int) (any, error) {
	if depth > maxDecodeDepth {
		return nil, &ParseError{Message: "document nesting exceeds depth limit"}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return decodeNode(n.Content[0], depth+1)
	case yaml.MappingNode:
		m := orderedmap.New[string, any]()
		for i := 0; i+1 < len(n.Content); i += 2 {
			// Key comes from the scalar text, so numeric-looking keys
			// such as status codes stay strings.
			val, err := decodeNode(n.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			m.Set(n.Content[i].Value, val)
		}
		return m, nil
	case yaml.SequenceNode:
		s := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := decodeNode(c, depth+1)
			if err != nil {
				return nil, err
			}
			s = append(s, v)
		}
		return s, nil
	case yaml.AliasNode:
		return decodeNode(n.Alias, depth+1)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, &ParseError{Message: "decoding scalar value", Cause: err}
		}
		return v, nil
	default:
		return nil, nil
	}
}

func detectDialect(root *rawMap) (Dialect, string) {
	if v, ok := root.Get("swagger"); ok {
		if ver := scalarString(v); strings.HasPrefix(ver, "2") {
			return DialectOAS2, ver
		}
	}
	if v, ok := root.Get("openapi"); ok {
		return DialectOAS3, scalarString(v)
	}
	return DialectOAS3, ""
}

// Dialect reports the OpenAPI generation detected at parse time.
func (d *Document) Dialect() Dialect { return d.dialect }

// Version returns the declared openapi or swagger version string.
func (d *Document) Version() string { return d.version }

// Info returns the document's info object. Missing fields are empty.
func (d *Document) Info() Info {
	info, _ := mapValue(d.root, "info")
	return Info{
		Title:       stringValue(info, "title"),
		Description: stringValue(info, "description"),
		Version:     stringValue(info, "version"),
	}
}

// Paths returns the paths object in document order. A document without
// one yields an empty map.
func (d *Document) Paths() *rawMap {
	paths, ok := mapValue(d.root, "paths")
	if !ok {
		return orderedmap.New[string, any]()
	}
	return paths
}

// SecuritySchemes returns the declared security schemes, reading
// components.securitySchemes or securityDefinitions depending on
// dialect.
func (d *Document) SecuritySchemes() *rawMap {
	var schemes *rawMap
	if d.dialect == DialectOAS2 {
		schemes, _ = mapValue(d.root, "securityDefinitions")
	} else {
		components, _ := mapValue(d.root, "components")
		schemes, _ = mapValue(components, "securitySchemes")
	}
	if schemes == nil {
		return orderedmap.New[string, any]()
	}
	return schemes
}

// GlobalSecurity returns the document-level security requirement list
// and whether the key is present at all. Presence matters: an explicit
// empty list disables auth, while an absent key merely declines to set
// a default.
func (d *Document) GlobalSecurity() ([]any, bool) {
	return securityList(d.root)
}

// ServerURL returns the first declared server base URL, or "" when the
// document declares none.
func (d *Document) ServerURL() string {
	if d.dialect == DialectOAS2 {
		host := stringValue(d.root, "host")
		if host == "" {
			return ""
		}
		scheme := "https"
		if schemes, ok := sliceValue(d.root, "schemes"); ok && len(schemes) > 0 {
			if s := scalarString(schemes[0]); s != "" {
				scheme = s
			}
		}
		return scheme + "://" + host + stringValue(d.root, "basePath")
	}
	servers, _ := sliceValue(d.root, "servers")
	if len(servers) == 0 {
		return ""
	}
	first, ok := asMap(servers[0])
	if !ok {
		return ""
	}
	return stringValue(first, "url")
}

// BaseURLFromSpecURL derives the API base URL from the URL the document
// itself was served from, by stripping the conventional documentation
// suffix. Relative or schemeless URLs yield "".
func BaseURLFromSpecURL(specURL string) string {
	u, err := url.Parse(specURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	path := u.Path
	stripped := false
	for _, suffix := range []string{"/api-docs", "/docs", "/openapi"} {
		if strings.HasSuffix(path, suffix) {
			path = strings.TrimSuffix(path, suffix)
			stripped = true
			break
		}
	}
	if !stripped {
		last := path
		if i := strings.LastIndex(path, "/"); i >= 0 {
			last = path[i+1:]
		}
		if isSpecFileName(last) {
			if i := strings.LastIndex(path, "/"); i >= 0 {
				path = path[:i]
			}
		}
	}
	return u.Scheme + "://" + u.Host + path
}

func isSpecFileName(name string) bool {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// securityList reads a security requirement list from an object and
// reports whether the key is present.
func securityList(m *rawMap) ([]any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.Get("security")
	if !ok {
		return nil, false
	}
	list, _ := v.([]any)
	return list, true
}

func asMap(v any) (*rawMap, bool) {
	m, ok := v.(*rawMap)
	if !ok || m == nil {
		return nil, false
	}
	return m, true
}

func mapValue(m *rawMap, key string) (*rawMap, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	return asMap(v)
}

func sliceValue(m *rawMap, key string) ([]any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}

func stringValue(m *rawMap, key string) string {
	if m == nil {
		return ""
	}
	v, ok := m.Get(key)
	if !ok {
		return ""
	}
	return scalarString(v)
}

func boolValue(m *rawMap, key string) bool {
	if m == nil {
		return false
	}
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

// scalarString renders a scalar leniently. YAML turns unquoted version
// numbers like 2.0 into floats, and titles are occasionally bare
// numbers; both still need to read back as text.
func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}
