package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// templateEngine renders the per-stack example templates. Embedded
// templates load first; files from a custom directory override them
// by name, so a deployment can restyle a single stack without
// rebuilding.
type templateEngine struct {
	templates *template.Template
}

func newTemplateEngine(customDir string) (*templateEngine, error) {
	root := template.New("").Funcs(template.FuncMap{
		"swiftString": swiftString,
	})

	err := fs.WalkDir(embeddedTemplates, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}
		content, err := embeddedTemplates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading embedded template %s: %w", path, err)
		}
		name := strings.TrimPrefix(path, "templates/")
		if _, err := root.New(name).Parse(string(content)); err != nil {
			return fmt.Errorf("parsing embedded template %s: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading embedded templates: %w", err)
	}

	if customDir != "" {
		err = filepath.WalkDir(customDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
				return nil
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading custom template %s: %w", path, err)
			}
			relPath, err := filepath.Rel(customDir, path)
			if err != nil {
				return fmt.Errorf("resolving custom template path %s: %w", path, err)
			}
			name := filepath.ToSlash(relPath)
			if _, err := root.New(name).Parse(string(content)); err != nil {
				return fmt.Errorf("parsing custom template %s: %w", path, err)
			}
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading custom templates: %w", err)
		}
	}

	return &templateEngine{templates: root}, nil
}

// swiftString escapes a value for a double-quoted Swift string literal.
// A raw #"..."# literal would terminate early on any `"#` sequence in
// the body, as a "#rrggbb" color enum produces.
func swiftString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func (e *templateEngine) execute(name string, data any) (string, error) {
	tmpl := e.templates.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("template not found: %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.String(), nil
}
