package reference

import "github.com/pkoster/apiref/openapi"

// SchemaData is the rendered form of a resolved schema. Objects carry a
// property table; non-objects collapse to a type label, keeping the
// original pointer when they came from a reference.
type SchemaData struct {
	Type       string         `json:"type"`
	Ref        string         `json:"$ref,omitempty"`
	Properties []PropertyData `json:"properties,omitempty"`
}

// PropertyData is one row of an object's property table.
type PropertyData struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

func buildSchemaData(s *openapi.ResolvedSchema) *SchemaData {
	if s == nil {
		return nil
	}
	if s.Kind == openapi.KindObject {
		props := make([]PropertyData, 0, len(s.Properties))
		for _, p := range s.Properties {
			props = append(props, PropertyData{
				Name:        p.Name,
				Type:        p.Schema.TypeString(),
				Required:    p.Required,
				Description: p.Description,
			})
		}
		return &SchemaData{Type: "object", Properties: props}
	}
	if s.RefPath != "" {
		return &SchemaData{Type: openapi.RefName(s.RefPath), Ref: s.RefPath}
	}
	return &SchemaData{Type: s.TypeString()}
}
