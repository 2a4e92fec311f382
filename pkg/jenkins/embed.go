package jenkins

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-jobgen/pkg/template"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// PackageCITemplateName is the embedded job definition driving the packaging
// pipeline: clone packaging and upstream repos, build and sign a source
// package, upload to a PPA, poll Launchpad, lint, notify the release webhook.
const PackageCITemplateName = "package-ci"

// TemplatesFS exposes the embedded job template bundle for consumers that
// want to inspect or override the built-in definitions.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// LoadTemplate reads a named job template from the embedded bundle.
func LoadTemplate(name string) (template.Template, error) {
	data, err := fs.ReadFile(embeddedTemplates, "templates/"+name+".xml.tmpl")
	if err != nil {
		return template.Template{}, fmt.Errorf("jenkins: load template %q: %w", name, err)
	}
	return template.New(string(data))
}

// PackageCITemplate returns the default packaging job template. It panics if
// the embedded bundle is corrupt.
func PackageCITemplate() template.Template {
	tpl, err := LoadTemplate(PackageCITemplateName)
	if err != nil {
		panic(err)
	}
	return tpl
}
