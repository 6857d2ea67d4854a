// Where: internal/manifest/manifest.go
// What: Package manifest parsing for the publish workflow.
// Why: Map manifest files (JSON or YAML, current or legacy keys) to version metadata.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"
)

// Compatibility is the range of core software versions a package
// version supports.
type Compatibility struct {
	Minimum  string
	Verified string
	Maximum  string
}

// Manifest holds the version metadata read from a package manifest
// file. Immutable once read; no field is written back to disk.
type Manifest struct {
	ID            string
	Title         string
	Version       string
	ManifestURL   string
	DownloadURL   string
	ChangelogURL  string
	Compatibility Compatibility
}

// Error reports a manifest that could not be read or understood.
type Error struct {
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("manifest %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("manifest %s: %s", e.Path, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Read parses and validates a manifest file. YAML manifests are
// converted to JSON before decoding, so both formats share one schema.
// Numeric version fields are coerced to strings, which is what the
// portal form ultimately accepts.
func Read(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Reason: "read file", Err: err}
	}

	jsonData := raw
	if !looksLikeJSON(raw) || isYAMLPath(path) {
		converted, err := yaml.YAMLToJSON(raw)
		if err != nil {
			return nil, &Error{Path: path, Reason: "convert yaml to json", Err: err}
		}
		jsonData = converted
	}

	var document any
	decoder := json.NewDecoder(strings.NewReader(string(jsonData)))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return nil, &Error{Path: path, Reason: "parse document", Err: err}
	}

	if err := validate(document); err != nil {
		return nil, &Error{Path: path, Reason: "schema validation", Err: err}
	}

	fields, ok := document.(map[string]any)
	if !ok {
		return nil, &Error{Path: path, Reason: "manifest must be an object"}
	}

	m := &Manifest{
		ID:           firstString(fields, "id", "name"),
		Title:        firstString(fields, "title"),
		Version:      firstString(fields, "version"),
		ManifestURL:  firstString(fields, "manifest"),
		DownloadURL:  firstString(fields, "download"),
		ChangelogURL: firstString(fields, "changelog"),
	}
	if m.Version == "" {
		return nil, &Error{Path: path, Reason: "missing required field \"version\""}
	}

	compat, _ := fields["compatibility"].(map[string]any)
	m.Compatibility = Compatibility{
		Minimum:  firstString(compat, "minimum"),
		Verified: firstString(compat, "verified"),
		Maximum:  firstString(compat, "maximum"),
	}
	// Legacy flat keys, superseded by the compatibility block.
	if m.Compatibility.Minimum == "" {
		m.Compatibility.Minimum = firstString(fields, "minimumCoreVersion")
	}
	if m.Compatibility.Verified == "" {
		m.Compatibility.Verified = firstString(fields, "compatibleCoreVersion")
	}

	return m, nil
}

// firstString returns the first present key coerced to a string.
func firstString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		value, ok := fields[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			return v
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func isYAMLPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

func looksLikeJSON(data []byte) bool {
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}
