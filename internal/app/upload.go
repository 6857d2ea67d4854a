// Where: internal/app/upload.go
// What: Upload command implementation.
// Why: Give publish a version-frozen manifest URL by hosting release artifacts.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/foundry-tools/fvtt-publish/internal/artifact"
	"github.com/foundry-tools/fvtt-publish/internal/manifest"
	"github.com/foundry-tools/fvtt-publish/internal/ui"
)

// UploadCmd defines the flags of the upload command.
type UploadCmd struct {
	Archive      string `arg:"" help:"Path to the packaged release archive (.zip)"`
	ManifestFile string `name:"manifest-file" required:"" help:"Path of the manifest file for this release"`

	Bucket        string `help:"Destination bucket"`
	Region        string `help:"Bucket region"`
	Endpoint      string `help:"Custom S3-compatible endpoint (enables path-style addressing)"`
	Prefix        string `help:"Key prefix inside the bucket"`
	PublicBaseURL string `name:"public-base-url" help:"Base URL objects are served from (CDN or custom domain)"`
}

func runUpload(cli CLI, deps Dependencies, out io.Writer) int {
	cmd := cli.Upload
	console := ui.New(out)

	defaults := loadDefaults(console)
	bucket := firstNonEmpty(cmd.Bucket, defaults.Bucket)
	region := firstNonEmpty(cmd.Region, defaults.Region)
	endpoint := firstNonEmpty(cmd.Endpoint, defaults.Endpoint)
	publicBaseURL := firstNonEmpty(cmd.PublicBaseURL, defaults.PublicBaseURL)

	if bucket == "" {
		console.Error("", fmt.Errorf("bucket is required (--bucket or 'config set bucket')"))
		return 1
	}

	m, err := manifest.Read(cmd.ManifestFile)
	if err != nil {
		console.Error(errorKind(err), err)
		return 1
	}

	ctx := context.Background()
	client, err := deps.NewS3Client(ctx, region, endpoint)
	if err != nil {
		console.Error("", err)
		return 1
	}

	uploader := artifact.Uploader{
		Client:        client,
		Bucket:        bucket,
		Region:        region,
		Prefix:        cmd.Prefix,
		PublicBaseURL: publicBaseURL,
	}

	console.Header("☁️", fmt.Sprintf("Uploading release %s to %s", m.Version, bucket))
	release, err := uploader.UploadRelease(ctx, m.Version, cmd.Archive, cmd.ManifestFile)
	if err != nil {
		console.Error("", err)
		return 1
	}

	console.Success(fmt.Sprintf("Uploaded release %s", m.Version))
	console.Item("Archive URL", release.ArchiveURL)
	console.Item("Manifest URL", release.ManifestURL)
	console.Item("Next step", fmt.Sprintf("fvtt-publish publish --manifest-url %s", release.ManifestURL))
	return 0
}
