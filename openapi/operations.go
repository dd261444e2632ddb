package openapi

import (
	"slices"
	"strings"
)

// operationMethods is the fixed iteration order over a path item's
// method keys.
var operationMethods = []string{"get", "post", "put", "patch", "delete", "options", "head"}

// jsonMediaTypes lists the media types treated as JSON bodies, in
// preference order.
var jsonMediaTypes = []string{"application/json", "application/json; charset=utf-8"}

// Parameter describes one operation parameter. In defaults to "query"
// when the document omits it.
type Parameter struct {
	Name        string
	In          string
	Required    bool
	Description string
}

// RequestBody is an operation's JSON request body. For OAS2 documents
// it is folded from the body parameter.
type RequestBody struct {
	Description string
	Required    bool
	Schema      *ResolvedSchema
}

// Response is one declared response. Schema is nil when the response
// declares no JSON body.
type Response struct {
	Code        string
	Description string
	Schema      *ResolvedSchema
}

// Operation is one (path template, method) pair with its schemas
// already resolved. Responses keep document order.
type Operation struct {
	Method      string
	Path        string
	Tags        []string
	Summary     string
	Description string
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   []Response

	needsAuth bool
	hasBody   bool
}

// NeedsAuth reports whether a security requirement applies: one
// declared on the operation itself, or the document-global default when
// the operation stays silent. An explicit empty security list on the
// operation disables the global default. A requirement with no schemes
// never counts.
func (o *Operation) NeedsAuth() bool { return o.needsAuth }

// HasBody reports whether the operation takes a request body: one is
// declared and the method is POST, PUT or PATCH.
func (o *Operation) HasBody() bool { return o.hasBody }

// PrimaryResponseSchema picks the schema that best represents the
// operation's result: the first 2xx response carrying one, else the
// first response carrying one. Nil when no response declares a body.
func (o *Operation) PrimaryResponseSchema() *ResolvedSchema {
	for _, resp := range o.Responses {
		if resp.Schema != nil && strings.HasPrefix(resp.Code, "2") {
			return resp.Schema
		}
	}
	for _, resp := range o.Responses {
		if resp.Schema != nil {
			return resp.Schema
		}
	}
	return nil
}

// Index holds every operation of one document, in document order.
type Index struct {
	ops []*Operation
}

// BuildIndex flattens a document's paths into operation records.
// Paths iterate in document order, methods in the fixed conventional
// order within each path item. Malformed path items are skipped, never
// fatal.
func BuildIndex(doc *Document) *Index {
	idx := &Index{}
	resolver := NewResolver(doc)
	globalSec, globalHas := doc.GlobalSecurity()
	for pair := doc.Paths().Oldest(); pair != nil; pair = pair.Next() {
		item, ok := asMap(pair.Value)
		if !ok {
			continue
		}
		pathParams, _ := sliceValue(item, "parameters")
		for _, method := range operationMethods {
			opNode, ok := mapValue(item, method)
			if !ok {
				continue
			}
			idx.ops = append(idx.ops, buildOperation(doc, resolver, pair.Key, method, opNode, pathParams, globalSec, globalHas))
		}
	}
	return idx
}

// Operations returns all records in document order.
func (ix *Index) Operations() []*Operation {
	return slices.Clone(ix.ops)
}

// Find returns the operation for a method and path. An exact path
// match anywhere in the document wins; otherwise the first template
// whose literal segments align, in document order. Method comparison
// is case-insensitive.
func (ix *Index) Find(method, path string) (*Operation, bool) {
	method = strings.ToUpper(method)
	for _, op := range ix.ops {
		if op.Method == method && op.Path == path {
			return op, true
		}
	}
	for _, op := range ix.ops {
		if op.Method == method && matchPath(op.Path, path) {
			return op, true
		}
	}
	return nil, false
}

// FindOperation indexes a document and looks up one operation. Callers
// serving many lookups should build the index once instead.
func FindOperation(doc *Document, method, path string) (*Operation, error) {
	if op, ok := BuildIndex(doc).Find(method, path); ok {
		return op, nil
	}
	return nil, &OperationNotFoundError{Method: strings.ToUpper(method), Path: path}
}

func buildOperation(doc *Document, resolver *Resolver, path, method string, opNode *rawMap, pathParams, globalSec []any, globalHas bool) *Operation {
	op := &Operation{
		Method:      strings.ToUpper(method),
		Path:        path,
		Summary:     stringValue(opNode, "summary"),
		Description: stringValue(opNode, "description"),
	}
	if tags, ok := sliceValue(opNode, "tags"); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok {
				op.Tags = append(op.Tags, s)
			}
		}
	}

	opParams, _ := sliceValue(opNode, "parameters")
	bodyDeclared := false
	for _, p := range mergeParamNodes(pathParams, opParams) {
		if doc.Dialect() == DialectOAS2 && paramIn(p) == "body" {
			bodyDeclared = true
			op.RequestBody = &RequestBody{
				Description: stringValue(p, "description"),
				Required:    boolValue(p, "required"),
			}
			if node, ok := p.Get("schema"); ok {
				op.RequestBody.Schema = resolver.Resolve(node)
			}
			continue
		}
		op.Parameters = append(op.Parameters, Parameter{
			Name:        stringValue(p, "name"),
			In:          paramIn(p),
			Required:    boolValue(p, "required"),
			Description: stringValue(p, "description"),
		})
	}

	if bodyNode, ok := mapValue(opNode, "requestBody"); ok && bodyNode.Len() > 0 {
		bodyDeclared = true
		if body := buildRequestBody(resolver, bodyNode); body != nil {
			op.RequestBody = body
		}
	}

	op.Responses = buildResponses(doc, resolver, opNode)

	sec, has := securityList(opNode)
	if !has {
		sec, has = globalSec, globalHas
	}
	op.needsAuth = has && anyRequirement(sec)
	switch op.Method {
	case "POST", "PUT", "PATCH":
		op.hasBody = bodyDeclared
	}
	return op
}

// buildRequestBody reads an OAS3 requestBody node. It returns the
// first JSON media type that carries a schema, nil when none does.
func buildRequestBody(resolver *Resolver, bodyNode *rawMap) *RequestBody {
	content, ok := mapValue(bodyNode, "content")
	if !ok {
		return nil
	}
	for _, mt := range jsonMediaTypes {
		media, ok := mapValue(content, mt)
		if !ok {
			continue
		}
		node, ok := media.Get("schema")
		if !ok {
			continue
		}
		return &RequestBody{
			Description: stringValue(bodyNode, "description"),
			Required:    boolValue(bodyNode, "required"),
			Schema:      resolver.Resolve(node),
		}
	}
	return nil
}

func buildResponses(doc *Document, resolver *Resolver, opNode *rawMap) []Response {
	responses, ok := mapValue(opNode, "responses")
	if !ok {
		return nil
	}
	out := make([]Response, 0, responses.Len())
	for pair := responses.Oldest(); pair != nil; pair = pair.Next() {
		resp := Response{Code: pair.Key}
		content, ok := asMap(pair.Value)
		if !ok {
			resp.Description = scalarString(pair.Value)
			out = append(out, resp)
			continue
		}
		resp.Description = stringValue(content, "description")
		resp.Schema = responseSchema(doc, resolver, content)
		out = append(out, resp)
	}
	return out
}

// responseSchema extracts a response's JSON body schema. OAS2 declares
// it directly on the response; OAS3 nests it under content, where the
// first JSON media type present settles the matter whether or not it
// carries a schema.
func responseSchema(doc *Document, resolver *Resolver, respNode *rawMap) *ResolvedSchema {
	if doc.Dialect() == DialectOAS2 {
		if node, ok := respNode.Get("schema"); ok {
			return resolver.Resolve(node)
		}
		return nil
	}
	content, ok := mapValue(respNode, "content")
	if !ok {
		return nil
	}
	for _, mt := range jsonMediaTypes {
		v, ok := content.Get(mt)
		if !ok {
			continue
		}
		if media, ok := asMap(v); ok {
			if node, ok := media.Get("schema"); ok {
				return resolver.Resolve(node)
			}
		}
		return nil
	}
	return nil
}

// mergeParamNodes combines path-item and operation parameters. The
// operation level overrides on a (name, in) collision.
func mergeParamNodes(pathParams, opParams []any) []*rawMap {
	var out []*rawMap
	index := map[string]int{}
	add := func(nodes []any) {
		for _, n := range nodes {
			p, ok := asMap(n)
			if !ok {
				continue
			}
			key := stringValue(p, "name") + "\x00" + paramIn(p)
			if i, ok := index[key]; ok {
				out[i] = p
				continue
			}
			index[key] = len(out)
			out = append(out, p)
		}
	}
	add(pathParams)
	add(opParams)
	return out
}

func paramIn(p *rawMap) string {
	if in := stringValue(p, "in"); in != "" {
		return in
	}
	return "query"
}

// anyRequirement reports whether a security requirement list names at
// least one scheme. An empty requirement object grants anonymous
// access, so it does not count.
func anyRequirement(requirements []any) bool {
	for _, req := range requirements {
		if m, ok := asMap(req); ok && m.Len() > 0 {
			return true
		}
	}
	return false
}

func matchPath(pattern, path string) bool {
	patternParts := splitPath(pattern)
	pathParts := splitPath(path)

	if len(patternParts) != len(pathParts) {
		return false
	}

	for i, pp := range patternParts {
		if len(pp) > 0 && pp[0] == '{' && pp[len(pp)-1] == '}' {
			continue
		}
		if pp != pathParts[i] {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	if len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	if len(p) == 0 {
		return nil
	}
	var parts []string
	start := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			parts = append(parts, p[start:i])
			start = i + 1
		}
	}
	parts = append(parts, p[start:])
	return parts
}
