// Where: internal/app/publish_test.go
// What: End-to-end tests for the publish command against a mock portal.
// Why: Pin the login → locate form → submit → classify sequence and exit codes.
package app

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/foundry-tools/fvtt-publish/internal/config"
)

const mockLoginPage = `<!DOCTYPE html>
<html><body>
<form id="login-form" action="/auth/login" method="post">
  <input type="hidden" name="csrfmiddlewaretoken" value="csrf-login">
  <input type="text" name="login_username" value="">
  <input type="password" name="login_password" value="">
</form>
</body></html>`

const mockEditPage = `<!DOCTYPE html>
<html><body>
<form id="package-form" action="" method="post">
  <input type="hidden" name="csrfmiddlewaretoken" value="csrf-edit">
  <input type="text" name="version" value="1.1.0">
  <input type="text" name="manifest" value="https://stable.example/module.json">
  <textarea name="notes"></textarea>
  <input type="text" name="required_core_version" value="">
  <input type="text" name="compatible_core_version" value="">
  <input type="text" name="maximum_core_version" value="">
</form>
</body></html>`

// mockPortal simulates the portal's login and package edit flow.
type mockPortal struct {
	server *httptest.Server

	// failSubmits makes the first N submits answer 503.
	failSubmits int
	// submitPage is the page returned for a non-failing submit.
	submitPage string
	// rejectLogin makes the login POST answer 401.
	rejectLogin bool

	requests   int
	loginPosts int
	editPosts  int
	lastSubmit url.Values
}

func newMockPortal(t *testing.T) *mockPortal {
	t.Helper()
	portal := &mockPortal{submitPage: "<html><body>saved</body></html>"}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, mockLoginPage)
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		portal.loginPosts++
		if portal.rejectLogin {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "sess-1", Path: "/"})
	})
	mux.HandleFunc("GET /packages/123/edit", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("sessionid"); err != nil {
			fmt.Fprint(w, mockLoginPage)
			return
		}
		fmt.Fprint(w, mockEditPage)
	})
	mux.HandleFunc("POST /packages/123/edit", func(w http.ResponseWriter, r *http.Request) {
		portal.editPosts++
		if portal.editPosts <= portal.failSubmits {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse submitted form: %v", err)
		}
		portal.lastSubmit = r.PostForm
		fmt.Fprint(w, portal.submitPage)
	})

	counting := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		portal.requests++
		mux.ServeHTTP(w, r)
	})
	portal.server = httptest.NewServer(counting)
	t.Cleanup(portal.server.Close)
	return portal
}

func writeTestManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "module.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest fixture: %v", err)
	}
	return path
}

// isolateDefaults points the defaults file at an empty temp location so
// a developer's real config never leaks into tests.
func isolateDefaults(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, filepath.Join(t.TempDir(), "config.yaml"))
}

func publishArgs(portalURL, manifestPath string) []string {
	return []string{
		"publish",
		"--portal-url", portalURL,
		"--username", "alice",
		"--password-source", "env",
		"--package-id", "123",
		"--manifest-url", "https://example/releases/1.2.0/module.json",
		"--manifest-file", manifestPath,
	}
}

const validManifest = `{
	"id": "pick-up-stix",
	"version": "1.2.0",
	"download": "https://example/module.zip",
	"compatibility": {"minimum": "10", "verified": "11"}
}`

func TestPublishEndToEndSuccess(t *testing.T) {
	isolateDefaults(t)
	t.Setenv("FVTT_PASSWORD", "hunter2")
	portal := newMockPortal(t)
	manifestPath := writeTestManifest(t, validManifest)

	var out bytes.Buffer
	exitCode := Run(publishArgs(portal.server.URL, manifestPath), Dependencies{Out: &out})

	if exitCode != 0 {
		t.Fatalf("expected exit 0, got %d\noutput: %s", exitCode, out.String())
	}
	if !strings.Contains(out.String(), "Published version 1.2.0") {
		t.Errorf("missing success message: %s", out.String())
	}
	if portal.loginPosts != 1 {
		t.Errorf("expected one login, got %d", portal.loginPosts)
	}
	if got := portal.lastSubmit.Get("version"); got != "1.2.0" {
		t.Errorf("submitted version: %q", got)
	}
	if got := portal.lastSubmit.Get("manifest"); got != "https://example/releases/1.2.0/module.json" {
		t.Errorf("submitted manifest URL: %q", got)
	}
	if got := portal.lastSubmit.Get("required_core_version"); got != "10" {
		t.Errorf("submitted minimum core: %q", got)
	}
	if got := portal.lastSubmit.Get("compatible_core_version"); got != "11" {
		t.Errorf("submitted verified core: %q", got)
	}
}

func TestPublishManifestMissingVersionNoNetwork(t *testing.T) {
	isolateDefaults(t)
	t.Setenv("FVTT_PASSWORD", "hunter2")
	portal := newMockPortal(t)
	manifestPath := writeTestManifest(t, `{"id": "no-version"}`)

	var out bytes.Buffer
	exitCode := Run(publishArgs(portal.server.URL, manifestPath), Dependencies{Out: &out})

	if exitCode == 0 {
		t.Fatalf("expected non-zero exit")
	}
	if !strings.Contains(out.String(), "manifest error") {
		t.Errorf("expected manifest error in output: %s", out.String())
	}
	if portal.requests != 0 {
		t.Errorf("manifest failures must not touch the portal; saw %d requests", portal.requests)
	}
}

func TestPublishRejectedCredentials(t *testing.T) {
	isolateDefaults(t)
	t.Setenv("FVTT_PASSWORD", "wrong")
	portal := newMockPortal(t)
	portal.rejectLogin = true
	manifestPath := writeTestManifest(t, validManifest)

	var out bytes.Buffer
	exitCode := Run(publishArgs(portal.server.URL, manifestPath), Dependencies{Out: &out})

	if exitCode == 0 {
		t.Fatalf("expected non-zero exit")
	}
	if !strings.Contains(out.String(), "auth error") {
		t.Errorf("expected auth error in output: %s", out.String())
	}
	if portal.editPosts != 0 {
		t.Errorf("failed login must not reach the edit form; got %d submits", portal.editPosts)
	}
}

func TestPublishDuplicateVersionNotRetried(t *testing.T) {
	isolateDefaults(t)
	t.Setenv("FVTT_PASSWORD", "hunter2")
	portal := newMockPortal(t)
	portal.submitPage = `<html><body>
	<ul class="errorlist"><li>Version 1.2.0 already exists for this package.</li></ul>
	</body></html>`
	manifestPath := writeTestManifest(t, validManifest)

	var out bytes.Buffer
	exitCode := Run(publishArgs(portal.server.URL, manifestPath), Dependencies{Out: &out})

	if exitCode == 0 {
		t.Fatalf("expected non-zero exit")
	}
	if !strings.Contains(out.String(), "duplicate version") {
		t.Errorf("expected duplicate version in output: %s", out.String())
	}
	if portal.editPosts != 1 {
		t.Errorf("duplicate must not be retried; got %d submits", portal.editPosts)
	}
}

func TestPublishRecoversFromTransientFailures(t *testing.T) {
	isolateDefaults(t)
	t.Setenv("FVTT_PASSWORD", "hunter2")
	portal := newMockPortal(t)
	portal.failSubmits = 2
	manifestPath := writeTestManifest(t, validManifest)

	var out bytes.Buffer
	exitCode := Run(publishArgs(portal.server.URL, manifestPath), Dependencies{Out: &out})

	if exitCode != 0 {
		t.Fatalf("expected success after retries, got %d\noutput: %s", exitCode, out.String())
	}
	if portal.editPosts != 3 {
		t.Errorf("expected exactly two retries (3 submits), got %d", portal.editPosts)
	}
}

func TestPublishSessionTokenSkipsLogin(t *testing.T) {
	isolateDefaults(t)
	portal := newMockPortal(t)
	manifestPath := writeTestManifest(t, validManifest)

	args := []string{
		"publish",
		"--portal-url", portal.server.URL,
		"--session-token", "sess-1",
		"--package-id", "123",
		"--manifest-url", "https://example/releases/1.2.0/module.json",
		"--manifest-file", manifestPath,
	}

	var out bytes.Buffer
	exitCode := Run(args, Dependencies{Out: &out})

	if exitCode != 0 {
		t.Fatalf("expected exit 0, got %d\noutput: %s", exitCode, out.String())
	}
	if portal.loginPosts != 0 {
		t.Errorf("session token must skip login; got %d login posts", portal.loginPosts)
	}
}

func TestPublishChangelogTemplate(t *testing.T) {
	isolateDefaults(t)
	t.Setenv("FVTT_PASSWORD", "hunter2")
	portal := newMockPortal(t)
	manifestPath := writeTestManifest(t, validManifest)

	args := append(publishArgs(portal.server.URL, manifestPath),
		"--changelog-template", "https://github.com/o/r/releases/tag/v{{ .Version }}")

	var out bytes.Buffer
	if exitCode := Run(args, Dependencies{Out: &out}); exitCode != 0 {
		t.Fatalf("expected exit 0, got %d\noutput: %s", exitCode, out.String())
	}
	if got := portal.lastSubmit.Get("notes"); got != "https://github.com/o/r/releases/tag/v1.2.0" {
		t.Errorf("submitted notes: %q", got)
	}
}

func TestPublishDryRunSkipsNetwork(t *testing.T) {
	isolateDefaults(t)
	portal := newMockPortal(t)
	manifestPath := writeTestManifest(t, validManifest)

	args := append(publishArgs(portal.server.URL, manifestPath), "--dry-run")

	var out bytes.Buffer
	exitCode := Run(args, Dependencies{Out: &out})

	if exitCode != 0 {
		t.Fatalf("expected exit 0, got %d\noutput: %s", exitCode, out.String())
	}
	if portal.requests != 0 {
		t.Errorf("dry run must not touch the portal; saw %d requests", portal.requests)
	}
	if !strings.Contains(out.String(), "1.2.0") {
		t.Errorf("dry run should print resolved fields: %s", out.String())
	}
}

func TestPublishMissingManifestURL(t *testing.T) {
	isolateDefaults(t)
	portal := newMockPortal(t)

	args := []string{
		"publish",
		"--portal-url", portal.server.URL,
		"--username", "alice",
		"--package-id", "123",
		"--module-version", "1.2.0",
	}

	var out bytes.Buffer
	if exitCode := Run(args, Dependencies{Out: &out}); exitCode == 0 {
		t.Fatalf("expected non-zero exit for missing manifest URL")
	}
	if portal.requests != 0 {
		t.Errorf("expected no portal traffic, saw %d requests", portal.requests)
	}
}

func TestResolveVersionFieldsPrecedence(t *testing.T) {
	manifestPath := writeTestManifest(t, `{
		"version": "1.2.0",
		"changelog": "https://example/manifest-changelog",
		"compatibility": {"minimum": "10"}
	}`)

	cmd := PublishCmd{
		ManifestFile:       manifestPath,
		ManifestURL:        "https://example/frozen/module.json",
		ModuleVersion:      "9.9.9",
		MinimumCoreVersion: "12",
	}

	fields, err := resolveVersionFields(cmd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if fields.Version != "9.9.9" {
		t.Errorf("flag must win over manifest version: %q", fields.Version)
	}
	if fields.MinimumCore != "12" {
		t.Errorf("flag must win over manifest compatibility: %q", fields.MinimumCore)
	}
	if fields.Notes != "https://example/manifest-changelog" {
		t.Errorf("manifest changelog should fill notes: %q", fields.Notes)
	}
}

func TestResolveVersionFieldsHiddenCompatAlias(t *testing.T) {
	cmd := PublishCmd{
		ModuleVersion:         "1.0.0",
		ManifestURL:           "https://example/m.json",
		CompatibleCoreVersion: "9",
	}

	fields, err := resolveVersionFields(cmd)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if fields.VerifiedCore != "9" {
		t.Errorf("deprecated alias should map to verified core: %q", fields.VerifiedCore)
	}
}
