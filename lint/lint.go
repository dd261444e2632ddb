// Package lint checks an OpenAPI document against the official 3.x
// meta-schema. It reports findings instead of failing: a document that
// cannot even be parsed yields a report with one fatal issue.
package lint

import (
	"fmt"
	"strings"

	"github.com/pb33f/libopenapi"
	validator "github.com/pb33f/libopenapi-validator"
)

// Issue is one validation finding.
type Issue struct {
	Message  string `json:"message"`
	Reason   string `json:"reason,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	HowToFix string `json:"how_to_fix,omitempty"`
}

// Report is the outcome of linting one document.
type Report struct {
	Valid   bool    `json:"valid"`
	Version string  `json:"version,omitempty"`
	Issues  []Issue `json:"issues"`
}

// Run lints raw document bytes. Only OpenAPI 3.x documents can be
// validated against the meta-schema; anything else comes back as a
// single-issue report.
func Run(data []byte) *Report {
	report := &Report{Issues: []Issue{}}

	doc, err := libopenapi.NewDocument(data)
	if err != nil {
		report.Issues = append(report.Issues, Issue{
			Message: fmt.Sprintf("parsing document: %s", err),
		})
		return report
	}

	version := doc.GetVersion()
	report.Version = version
	if !strings.HasPrefix(version, "3.") {
		report.Issues = append(report.Issues, Issue{
			Message: fmt.Sprintf("unsupported OpenAPI version: %s (only 3.x can be linted)", version),
		})
		return report
	}

	v, errs := validator.NewValidator(doc)
	if len(errs) > 0 {
		for _, e := range errs {
			report.Issues = append(report.Issues, Issue{
				Message: fmt.Sprintf("building validator: %s", e),
			})
		}
		return report
	}

	valid, validationErrs := v.ValidateDocument()
	if valid {
		report.Valid = true
		return report
	}
	for _, ve := range validationErrs {
		report.Issues = append(report.Issues, Issue{
			Message:  ve.Message,
			Reason:   ve.Reason,
			Line:     ve.SpecLine,
			Column:   ve.SpecCol,
			HowToFix: ve.HowToFix,
		})
	}
	return report
}
