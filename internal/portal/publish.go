// Where: internal/portal/publish.go
// What: New-version form submission and response classification.
// Why: The publish outcome drives the CLI's retry/exit behavior.
package portal

import (
	"context"
	"fmt"
	"strings"
)

// VersionFields holds the values written into the portal's package edit
// form. Version and ManifestURL are mandatory; empty optional fields
// leave the form's existing values untouched.
type VersionFields struct {
	Version      string
	ManifestURL  string
	Notes        string
	MinimumCore  string
	VerifiedCore string
	MaximumCore  string
}

// Form field names on the package edit page.
const (
	fieldVersion      = "version"
	fieldManifest     = "manifest"
	fieldNotes        = "notes"
	fieldMinimumCore  = "required_core_version"
	fieldVerifiedCore = "compatible_core_version"
	fieldMaximumCore  = "maximum_core_version"
)

// Result describes a successful publication.
type Result struct {
	Version string
}

// Publish fetches the package edit page, overlays the new version's
// fields onto the existing form (hidden inputs and CSRF token included),
// and submits it. The response is classified into success,
// DuplicateVersionError, ValidationError, AuthError, or TransientError.
func (c *Client) Publish(ctx context.Context, packageID string, fields VersionFields) (*Result, error) {
	if packageID == "" {
		return nil, fmt.Errorf("package id is required")
	}
	if fields.Version == "" {
		return nil, &ValidationError{Messages: []string{"version is required"}}
	}
	if fields.ManifestURL == "" {
		return nil, &ValidationError{Messages: []string{"manifest URL is required"}}
	}

	editPath := fmt.Sprintf("/packages/%s/edit", packageID)
	page, pageURL, err := c.fetchPage(ctx, editPath)
	if err != nil {
		return nil, err
	}

	form, err := parseForm(strings.NewReader(page), packageFormID)
	if err != nil {
		// The portal bounces unauthenticated sessions to the login page,
		// which has no package form.
		if strings.Contains(page, loginFormID) {
			return nil, &AuthError{Reason: "session rejected; redirected to login"}
		}
		return nil, &AuthError{Reason: "package form not found; is the package id correct and the session valid?", Err: err}
	}

	form.Values.Set(fieldVersion, fields.Version)
	form.Values.Set(fieldManifest, fields.ManifestURL)
	setIfPresent(form, fieldNotes, fields.Notes)
	setIfPresent(form, fieldMinimumCore, fields.MinimumCore)
	setIfPresent(form, fieldVerifiedCore, fields.VerifiedCore)
	setIfPresent(form, fieldMaximumCore, fields.MaximumCore)

	status, body, err := c.submitForm(ctx, form, pageURL)
	if err != nil {
		return nil, err
	}
	if err := classifyPublishResponse(status, body, fields.Version); err != nil {
		return nil, err
	}
	return &Result{Version: fields.Version}, nil
}

func setIfPresent(form *htmlForm, name, value string) {
	if value != "" {
		form.Values.Set(name, value)
	}
}

// classifyPublishResponse maps the portal's post-submit page to the
// error taxonomy. The portal is a server-rendered form app, so the
// classification is text-pattern based and centralized here.
func classifyPublishResponse(status int, body, version string) error {
	switch {
	case status == 401 || status == 403:
		return &AuthError{Reason: fmt.Sprintf("portal returned HTTP %d on submit", status)}
	case status >= 400:
		return fmt.Errorf("portal returned HTTP %d on submit", status)
	}

	messages := errorListMessages(strings.NewReader(body))
	if len(messages) == 0 {
		return nil
	}
	for _, message := range messages {
		if strings.Contains(strings.ToLower(message), "already exists") {
			return &DuplicateVersionError{Version: version}
		}
	}
	return &ValidationError{Messages: messages}
}
