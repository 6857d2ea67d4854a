// Where: internal/notes/renderer.go
// What: Changelog URL templating.
// Why: Release notes URLs usually only differ by version; render them from one template.
package notes

import (
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// TemplateData is the context available to a changelog template.
type TemplateData struct {
	Version string
}

// RenderChangelogURL renders a changelog URL template for a version,
// e.g. "https://github.com/o/r/releases/tag/v{{ .Version }}".
// The result must be an absolute http(s) URL.
func RenderChangelogURL(templateText, version string) (string, error) {
	tmpl, err := template.New("changelog").Funcs(sprig.TxtFuncMap()).Parse(templateText)
	if err != nil {
		return "", fmt.Errorf("parse changelog template: %w", err)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, TemplateData{Version: version}); err != nil {
		return "", fmt.Errorf("render changelog template: %w", err)
	}

	rendered := strings.TrimSpace(sb.String())
	parsed, err := url.Parse(rendered)
	if err != nil || parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return "", fmt.Errorf("changelog template rendered %q, which is not an absolute http(s) URL", rendered)
	}
	return rendered, nil
}
