// Package reference builds the renderable documentation model for an
// API document: operations grouped by tag, resolved request and
// response shapes, and the stack registry for example pickers. The
// model serializes to JSON for frontends and is also the source for
// plain-text summaries fed to generation engines.
package reference

import "github.com/pkoster/apiref/codegen"

// Model is the full reference document for one API.
type Model struct {
	Title           string          `json:"title"`
	Version         string          `json:"version"`
	Description     string          `json:"description"`
	OverviewSummary string          `json:"overview_summary,omitempty"`
	BaseURL         string          `json:"base_url"`
	Tags            []TagGroup      `json:"tags"`
	Stacks          []codegen.Stack `json:"stacks"`
}

// TagGroup is one sidebar section: a tag name and its endpoints in
// document order.
type TagGroup struct {
	Name      string     `json:"name"`
	Endpoints []Endpoint `json:"endpoints"`
}

// Endpoint is one operation, flattened for rendering.
type Endpoint struct {
	ID          string           `json:"endpoint_id"`
	Path        string           `json:"path"`
	Method      string           `json:"method"`
	Summary     string           `json:"summary"`
	Description string           `json:"description"`
	HowToCall   HowToCall        `json:"how_to_call"`
	Parameters  []ParameterData  `json:"parameters"`
	RequestBody *RequestBodyData `json:"request_body_schema"`
	Responses   []ResponseData   `json:"responses"`
}

// HowToCall carries the call essentials shown in the endpoint header.
type HowToCall struct {
	FullURL   string `json:"full_url"`
	NeedsAuth bool   `json:"needs_auth"`
	HasBody   bool   `json:"has_body"`
}

// ParameterData is one request parameter row.
type ParameterData struct {
	Name        string `json:"name"`
	In          string `json:"in"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// RequestBodyData describes the request body panel. Schema is null when
// the body declared no JSON schema.
type RequestBodyData struct {
	Description string      `json:"description"`
	Schema      *SchemaData `json:"schema"`
}

// ResponseData is one response row. BodySchema is null for bodyless
// responses.
type ResponseData struct {
	Code        string      `json:"code"`
	Description string      `json:"description"`
	BodySchema  *SchemaData `json:"body_schema"`
}
