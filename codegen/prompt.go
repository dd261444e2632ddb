package codegen

import (
	"fmt"
	"strings"

	"github.com/pkoster/apiref/openapi"
)

const generateSystemPrompt = "You output only code. No markdown, no explanation."

const maxPromptSummaryLen = 500

// BuildPrompt composes the generation prompt for one operation and
// stack: method, path, auth requirement, parameters, body and response
// shapes, plus hard output rules. Exported so chat layers can drive
// their own engine calls with the same context.
func BuildPrompt(op *openapi.Operation, stackValue, baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	url := op.Path
	if base != "" {
		url = base + op.Path
	}
	summary := strings.TrimSpace(op.Summary)
	if summary == "" {
		summary = strings.TrimSpace(op.Description)
	}
	summary = truncate(summary, maxPromptSummaryLen)

	var b strings.Builder
	b.WriteString("You are a documentation assistant. Generate a single, runnable code example for calling this API endpoint from a frontend application.\n\n")
	fmt.Fprintf(&b, "Endpoint: %s %s\n", op.Method, op.Path)
	fmt.Fprintf(&b, "Summary: %s\n", summary)
	fmt.Fprintf(&b, "Base URL: %s\n", baseURL)
	if op.NeedsAuth() {
		b.WriteString("Authentication: Required (Bearer JWT in Authorization header). Assume the token is available (e.g. from login).\n")
	} else {
		b.WriteString("Authentication: None.\n")
	}
	if len(op.Parameters) > 0 {
		b.WriteString("Parameters:\n")
		for _, p := range op.Parameters {
			optionality := "optional"
			if p.Required {
				optionality = "required"
			}
			fmt.Fprintf(&b, "  - %s (%s, %s): %s\n", p.Name, p.In, optionality, strings.ReplaceAll(p.Description, "\n", " "))
		}
	}
	if op.RequestBody != nil && op.RequestBody.Schema != nil {
		fmt.Fprintf(&b, "Request body: %s\n", schemaText(op.RequestBody.Schema, 0))
	} else {
		b.WriteString("Request body: None.\n")
	}
	if resp := op.PrimaryResponseSchema(); resp != nil {
		fmt.Fprintf(&b, "Response body: %s\n", schemaText(resp, 0))
	}
	fmt.Fprintf(&b, "\nStack: %s\n\n", stackValue)
	b.WriteString("Requirements:\n")
	b.WriteString("- Output ONLY the code. No markdown fences, no explanation before or after.\n")
	fmt.Fprintf(&b, "- Use the exact stack requested: %s.\n", stackValue)
	b.WriteString("- For React: use functional components and hooks (e.g. useState for token if needed).\n")
	b.WriteString("- For Vue 3: use Composition API (ref, async).\n")
	b.WriteString("- For Next.js: use App Router; show fetch with headers.\n")
	b.WriteString("- Always include the Authorization: Bearer header when authentication is required.\n")
	fmt.Fprintf(&b, "- Use %q as the full URL.\n", url)
	b.WriteString("- Keep the example minimal but complete enough to copy-paste and adapt.\n\n")
	b.WriteString("Generate the code now:")
	return b.String()
}

const maxSchemaTextDepth = 3

// schemaText renders a schema as a compact one-line shape. Objects list
// their members with short type labels, arrays expand their item shape,
// anything past the depth cap falls back to a bare label.
func schemaText(s *openapi.ResolvedSchema, depth int) string {
	if s == nil {
		return "any"
	}
	switch s.Kind {
	case openapi.KindObject:
		if depth >= maxSchemaTextDepth {
			return s.TypeString()
		}
		parts := make([]string, 0, len(s.Properties))
		for _, p := range s.Properties {
			parts = append(parts, p.Name+": "+propertyLabel(p))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case openapi.KindArray:
		return "array of " + schemaText(s.Items, depth+1)
	case openapi.KindCircular:
		return s.TypeString() + " (recursive)"
	default:
		return s.TypeString()
	}
}

func propertyLabel(p openapi.Property) string {
	label := p.Schema.TypeString()
	var decor []string
	if p.Schema != nil && p.Schema.Kind == openapi.KindPrimitive {
		if len(p.Schema.Enum) > 0 {
			values := make([]string, len(p.Schema.Enum))
			for i, v := range p.Schema.Enum {
				values[i] = fmt.Sprint(v)
			}
			label += " enum[" + strings.Join(values, "|") + "]"
		} else if p.Schema.Format != "" {
			decor = append(decor, p.Schema.Format)
		}
	}
	if p.Required {
		decor = append(decor, "required")
	}
	if len(decor) > 0 {
		label += " (" + strings.Join(decor, ", ") + ")"
	}
	return label
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
