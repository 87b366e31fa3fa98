// Package templates holds the templ components served by the web package.
//
// Components are authored in *.templ files; the *_templ.go files are
// generated with `templ generate`.
package templates

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/reorganizer/internal/core"
)

func outputTemplate(c core.Campaign) string {
	if strings.TrimSpace(c.OutputFilenameTemplate) == "" {
		return core.DefaultOutputFilenameTemplate
	}
	return c.OutputFilenameTemplate
}

// columnSummary lists output columns in order with their rule types.
func columnSummary(c core.Campaign) string {
	cfg := c.Config()
	parts := make([]string, len(cfg))
	for i, spec := range cfg {
		if len(spec.Rules) == 0 {
			parts[i] = spec.Name
			continue
		}
		kinds := make([]string, len(spec.Rules))
		for j, r := range spec.Rules {
			kinds[j] = string(r.Type)
		}
		parts[i] = fmt.Sprintf("%s (%s)", spec.Name, strings.Join(kinds, " > "))
	}
	return strings.Join(parts, ", ")
}

func updatedAt(c core.Campaign) string {
	return c.UpdatedAt.Format("2006-01-02 15:04")
}
