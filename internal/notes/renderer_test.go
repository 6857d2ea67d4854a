// Where: internal/notes/renderer_test.go
// What: Tests for changelog URL templating.
// Why: A malformed notes URL fails portal validation late; catch it locally.
package notes

import "testing"

func TestRenderChangelogURL(t *testing.T) {
	got, err := RenderChangelogURL("https://github.com/o/r/releases/tag/v{{ .Version }}", "1.2.0")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "https://github.com/o/r/releases/tag/v1.2.0" {
		t.Errorf("got %q", got)
	}
}

func TestRenderChangelogURLWithSprigFunctions(t *testing.T) {
	got, err := RenderChangelogURL(`https://example/notes/{{ .Version | replace "." "-" }}`, "1.2.0")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "https://example/notes/1-2-0" {
		t.Errorf("got %q", got)
	}
}

func TestRenderChangelogURLRejectsNonURL(t *testing.T) {
	if _, err := RenderChangelogURL("v{{ .Version }}", "1.2.0"); err == nil {
		t.Fatalf("expected error for non-URL result")
	}
}

func TestRenderChangelogURLBadTemplate(t *testing.T) {
	if _, err := RenderChangelogURL("https://example/{{ .Version", "1.2.0"); err == nil {
		t.Fatalf("expected parse error")
	}
}
