// Package renderer turns report structs into markdown strings.
// It is purely presentational: no computation happens here beyond
// formatting values that the sandbox package already derived.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// RenderRisk renders a risk report to a markdown string.
func RenderRisk(r *Risk) string {
	partials := map[string]string{
		"risk_title":    "risk_title.md",
		"risk_metrics":  "risk_metrics.md",
		"risk_drawdown": "risk_drawdown.md",
	}
	return renderTemplate("risk", "risk.md", partials, r)
}

// RenderSimulation renders a simulation report to a markdown string.
func RenderSimulation(s *Simulation) string {
	partials := map[string]string{
		"simulation_title":     "simulation_title.md",
		"simulation_terminals": "simulation_terminals.md",
	}
	return renderTemplate("simulation", "simulation.md", partials, s)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, "templates/"+file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
