package reference

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkoster/apiref/openapi"
)

const overviewSystemPrompt = "You write brief, clear API overviews for documentation. Output only 2–4 sentences. No markdown, no bullets."

const (
	maxSummaryDescriptionLen = 800
	maxSummaryLineLen        = 120
	maxSummaryOpsPerTag      = 20
)

// SummaryText renders a compact plain-text outline of the API: info
// header plus endpoints grouped by tag. With tag names given, only
// operations carrying at least one of them are listed. The outline is
// sized for engine context windows, not for people.
func SummaryText(doc *openapi.Document, tags ...string) string {
	info := doc.Info()
	title := info.Title
	if title == "" {
		title = "API"
	}

	filter := make(map[string]bool, len(tags))
	for _, t := range tags {
		filter[t] = true
	}

	var names []string
	byTag := make(map[string][]*openapi.Operation)
	for _, op := range openapi.BuildIndex(doc).Operations() {
		if len(filter) > 0 && !hasAnyTag(op, filter) {
			continue
		}
		tag := "default"
		if len(op.Tags) > 0 {
			tag = op.Tags[0]
		}
		if _, ok := byTag[tag]; !ok {
			names = append(names, tag)
		}
		byTag[tag] = append(byTag[tag], op)
	}
	slices.Sort(names)

	lines := []string{
		"Title: " + title,
		"Version: " + info.Version,
	}
	if info.Description != "" {
		lines = append(lines, "Description: "+truncate(strings.TrimSpace(info.Description), maxSummaryDescriptionLen))
	}
	lines = append(lines, "Endpoints:")
	if len(names) == 0 {
		lines = append(lines, "  (No endpoints in selected tags.)")
		return strings.Join(lines, "\n")
	}
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  [%s]", name))
		ops := byTag[name]
		if len(ops) > maxSummaryOpsPerTag {
			ops = ops[:maxSummaryOpsPerTag]
		}
		for _, op := range ops {
			line := fmt.Sprintf("    %s %s", op.Method, op.Path)
			if s := opSummary(op); s != "" {
				line += " — " + truncate(s, maxSummaryLineLen)
			}
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// EndpointDetailText renders one operation as indented plain text,
// suited for engine tool replies.
func EndpointDetailText(op *openapi.Operation) string {
	lines := []string{
		fmt.Sprintf("%s %s", op.Method, op.Path),
		opSummary(op),
		"Parameters:",
	}
	for _, p := range op.Parameters {
		lines = append(lines, fmt.Sprintf("  - %s (%s): %s", p.Name, p.In, strings.ReplaceAll(p.Description, "\n", " ")))
	}
	switch {
	case op.RequestBody == nil:
		lines = append(lines, "Request body: none")
	case op.RequestBody.Description != "":
		lines = append(lines, "Request body: "+op.RequestBody.Description)
	default:
		lines = append(lines, "Request body: see schema")
	}
	codes := make([]string, 0, len(op.Responses))
	for _, r := range op.Responses {
		codes = append(codes, r.Code)
	}
	lines = append(lines, "Responses: "+strings.Join(codes, ", "))
	return strings.Join(lines, "\n")
}

func opSummary(op *openapi.Operation) string {
	s := strings.TrimSpace(op.Summary)
	if s == "" {
		s = strings.TrimSpace(op.Description)
	}
	return s
}

func hasAnyTag(op *openapi.Operation, filter map[string]bool) bool {
	for _, t := range op.Tags {
		if filter[t] {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
