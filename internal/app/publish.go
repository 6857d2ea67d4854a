// Where: internal/app/publish.go
// What: Publish command implementation.
// Why: Orchestrate manifest resolution, login, and form submission.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/foundry-tools/fvtt-publish/internal/config"
	"github.com/foundry-tools/fvtt-publish/internal/credentials"
	"github.com/foundry-tools/fvtt-publish/internal/manifest"
	"github.com/foundry-tools/fvtt-publish/internal/notes"
	"github.com/foundry-tools/fvtt-publish/internal/portal"
	"github.com/foundry-tools/fvtt-publish/internal/ui"
)

// PublishCmd defines the flags of the publish command. Field resolution
// order is: explicit flag, then changelog template, then manifest file,
// then stored config defaults (for username, package id, portal URL).
type PublishCmd struct {
	Username       string `help:"Portal account username (case-sensitive)"`
	PasswordSource string `name:"password-source" default:"input" enum:"input,prompt,raw-input,env,environment" help:"Where to read the password from: input (prompt or stdin line), raw-input (stdin until EOF), env (FVTT_PASSWORD)"`
	SessionToken   string `name:"session-token" env:"FVTT_SESSION_TOKEN" help:"Pre-obtained portal session cookie; skips login"`

	PackageID    string `name:"package-id" help:"Numeric id of the package on the portal"`
	ManifestURL  string `name:"manifest-url" help:"Version-specific manifest URL to register (not the stable 'latest' link from the manifest itself)"`
	ManifestFile string `name:"manifest-file" help:"Path of a manifest file to read version metadata from"`

	ModuleVersion         string `name:"module-version" help:"New version label to publish (defaults to the manifest's version)"`
	ChangelogURL          string `name:"changelog-url" help:"Release notes URL for this version"`
	ChangelogTemplate     string `name:"changelog-template" help:"Template rendering the release notes URL from {{ .Version }}"`
	MinimumCoreVersion    string `name:"minimum-core-version" help:"Oldest core version the package runs on"`
	VerifiedCoreVersion   string `name:"verified-core-version" help:"Newest core version the package is verified on"`
	CompatibleCoreVersion string `name:"compatible-core-version" hidden:""`
	MaximumCoreVersion    string `name:"maximum-core-version" help:"Newest core version the package runs on"`

	PortalURL string `name:"portal-url" help:"Portal base URL (default: https://foundryvtt.com)"`
	DryRun    bool   `name:"dry-run" help:"Resolve and print the form values without submitting"`
}

func runPublish(cli CLI, deps Dependencies, out io.Writer) int {
	cmd := cli.Publish
	console := ui.New(out)

	defaults := loadDefaults(console)
	username := firstNonEmpty(cmd.Username, defaults.Username)
	packageID := firstNonEmpty(cmd.PackageID, defaults.PackageID)
	portalURL := firstNonEmpty(cmd.PortalURL, defaults.PortalURL)

	fields, err := resolveVersionFields(cmd)
	if err != nil {
		console.Error(errorKind(err), err)
		return 1
	}
	if packageID == "" {
		console.Error("", fmt.Errorf("package id is required (--package-id or 'config set package_id')"))
		return 1
	}

	if cmd.DryRun {
		console.Header("📦", fmt.Sprintf("Would publish version %s of package %s", fields.Version, packageID))
		printFields(console, fields)
		return 0
	}

	ctx := context.Background()
	client, err := deps.NewPortalClient(portalURL)
	if err != nil {
		console.Error("", err)
		return 1
	}

	if cmd.SessionToken != "" {
		client.UseSession(cmd.SessionToken)
	} else {
		if username == "" {
			console.Error("", fmt.Errorf("username is required (--username or 'config set username')"))
			return 1
		}
		password, err := readPassword(cmd.PasswordSource, deps)
		if err != nil {
			console.Error("", err)
			return 1
		}
		if password == "" {
			console.Warn("Supplied password was empty!")
		}
		if err := client.Login(ctx, username, password); err != nil {
			console.Error(errorKind(err), err)
			return 1
		}
	}

	console.Header("📦", fmt.Sprintf("Publishing version %s of package %s", fields.Version, packageID))
	result, err := client.Publish(ctx, packageID, fields)
	if err != nil {
		console.Error(errorKind(err), err)
		return 1
	}

	console.Success(fmt.Sprintf("Published version %s", result.Version))
	return 0
}

// resolveVersionFields layers CLI flags, the changelog template, and the
// manifest file into the form values. The manifest's own "manifest" URL
// is deliberately never used: it is a stable link to the latest version,
// while the portal needs a link frozen to this specific version.
func resolveVersionFields(cmd PublishCmd) (portal.VersionFields, error) {
	fields := portal.VersionFields{
		Version:      cmd.ModuleVersion,
		ManifestURL:  cmd.ManifestURL,
		Notes:        cmd.ChangelogURL,
		MinimumCore:  cmd.MinimumCoreVersion,
		VerifiedCore: firstNonEmpty(cmd.VerifiedCoreVersion, cmd.CompatibleCoreVersion),
		MaximumCore:  cmd.MaximumCoreVersion,
	}

	var read *manifest.Manifest
	if cmd.ManifestFile != "" {
		m, err := manifest.Read(cmd.ManifestFile)
		if err != nil {
			return fields, err
		}
		read = m
		if fields.Version == "" {
			fields.Version = m.Version
		}
		if fields.MinimumCore == "" {
			fields.MinimumCore = m.Compatibility.Minimum
		}
		if fields.VerifiedCore == "" {
			fields.VerifiedCore = m.Compatibility.Verified
		}
		if fields.MaximumCore == "" {
			fields.MaximumCore = m.Compatibility.Maximum
		}
	}

	if fields.Version == "" {
		return fields, fmt.Errorf("module version is required (--module-version or --manifest-file)")
	}
	if fields.ManifestURL == "" {
		return fields, fmt.Errorf("manifest URL is required (--manifest-url)")
	}

	if fields.Notes == "" && cmd.ChangelogTemplate != "" {
		rendered, err := notes.RenderChangelogURL(cmd.ChangelogTemplate, fields.Version)
		if err != nil {
			return fields, err
		}
		fields.Notes = rendered
	}
	if fields.Notes == "" && read != nil {
		fields.Notes = read.ChangelogURL
	}

	return fields, nil
}

func readPassword(source string, deps Dependencies) (string, error) {
	parsed, err := credentials.ParseSource(source)
	if err != nil {
		return "", err
	}
	reader := credentials.Reader{
		Stdin:       deps.Stdin,
		Interactive: deps.Interactive,
		Prompt:      deps.PasswordPrompt,
	}
	return reader.Read(parsed)
}

func printFields(console *ui.Console, fields portal.VersionFields) {
	console.Item("Version", fields.Version)
	console.Item("Manifest URL", fields.ManifestURL)
	if fields.Notes != "" {
		console.Item("Changelog URL", fields.Notes)
	}
	if fields.MinimumCore != "" {
		console.Item("Minimum core", fields.MinimumCore)
	}
	if fields.VerifiedCore != "" {
		console.Item("Verified core", fields.VerifiedCore)
	}
	if fields.MaximumCore != "" {
		console.Item("Maximum core", fields.MaximumCore)
	}
}

// loadDefaults reads the per-user defaults file, warning instead of
// failing when it is unreadable.
func loadDefaults(console *ui.Console) config.Config {
	path, err := config.Path()
	if err != nil {
		return config.Config{}
	}
	cfg, err := config.Load(path)
	if err != nil {
		console.Warn(fmt.Sprintf("ignoring defaults file: %v", err))
		return config.Config{}
	}
	return cfg
}

// errorKind names the classified error category for CLI output.
func errorKind(err error) string {
	var authErr *portal.AuthError
	var dupErr *portal.DuplicateVersionError
	var valErr *portal.ValidationError
	var transientErr *portal.TransientError
	var manifestErr *manifest.Error

	switch {
	case errors.As(err, &authErr):
		return "auth error"
	case errors.As(err, &dupErr):
		return "duplicate version"
	case errors.As(err, &valErr):
		return "validation error"
	case errors.As(err, &transientErr):
		return "transient error (retries exhausted)"
	case errors.As(err, &manifestErr):
		return "manifest error"
	}
	return ""
}
