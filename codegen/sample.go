package codegen

import (
	"encoding/json"

	orderedmap "github.com/pb33f/ordered-map/v2"

	"github.com/pkoster/apiref/openapi"
)

// sampleValue builds a representative JSON value for a resolved schema:
// "string" for strings, 0 for numbers, true for booleans, a
// single-element slice for arrays and a recursive object for object
// schemas. Enumerated primitives use their first value. Circular
// references become null so the sample always terminates.
func sampleValue(s *openapi.ResolvedSchema) any {
	switch {
	case s == nil:
		return nil
	case s.Kind == openapi.KindCircular:
		return nil
	case s.Kind == openapi.KindArray:
		return []any{sampleValue(s.Items)}
	case s.Kind == openapi.KindObject:
		obj := orderedmap.New[string, any]()
		for _, p := range s.Properties {
			obj.Set(p.Name, sampleValue(p.Schema))
		}
		return obj
	case s.Kind == openapi.KindPrimitive:
		if len(s.Enum) > 0 {
			return s.Enum[0]
		}
		switch s.Type {
		case "string":
			return "string"
		case "integer", "number":
			return 0
		case "boolean":
			return true
		case "null":
			return nil
		default:
			return s.Type
		}
	default:
		// Unresolvable shapes render as an empty object placeholder.
		return orderedmap.New[string, any]()
	}
}

// sampleBody renders the request body sample twice: indented for
// JavaScript-style payload literals and inline for raw-string embeds.
func sampleBody(s *openapi.ResolvedSchema) (indented, inline string) {
	v := sampleValue(s)
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}", "{}"
	}
	compact, err := json.Marshal(v)
	if err != nil {
		return "{}", "{}"
	}
	return string(pretty), string(compact)
}
