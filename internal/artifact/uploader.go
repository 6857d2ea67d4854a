// Where: internal/artifact/uploader.go
// What: Release artifact uploads to S3-compatible storage.
// Why: Publishers need stable, version-specific archive and manifest URLs.
package artifact

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
)

// S3API is the minimal object-store surface the uploader needs.
// Implemented by the AWS SDK adapter and by fakes in tests.
type S3API interface {
	PutObject(ctx context.Context, bucket, key, contentType string, body io.Reader) error
}

// Uploader pushes a packaged release (archive plus a frozen copy of its
// manifest) to a bucket and derives the public URLs for both.
type Uploader struct {
	Client        S3API
	Bucket        string
	Region        string
	Prefix        string
	PublicBaseURL string
}

// Release holds the uploaded object keys and their public URLs.
type Release struct {
	ArchiveKey  string
	ManifestKey string
	ArchiveURL  string
	ManifestURL string
}

// UploadRelease uploads the archive and manifest under
// {prefix}/{version}/. The returned manifest URL is the one to hand to
// the publish command: it designates this specific version forever,
// unlike the stable "latest" manifest link inside the manifest itself.
func (u *Uploader) UploadRelease(ctx context.Context, version, archivePath, manifestPath string) (*Release, error) {
	if u.Client == nil {
		return nil, fmt.Errorf("s3 client not configured")
	}
	if u.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	if version == "" {
		return nil, fmt.Errorf("version is required")
	}

	release := &Release{
		ArchiveKey:  u.objectKey(version, path.Base(archivePath)),
		ManifestKey: u.objectKey(version, path.Base(manifestPath)),
	}

	if err := u.putFile(ctx, release.ArchiveKey, archivePath, "application/zip"); err != nil {
		return nil, err
	}
	if err := u.putFile(ctx, release.ManifestKey, manifestPath, "application/json"); err != nil {
		return nil, err
	}

	var err error
	if release.ArchiveURL, err = u.publicURL(release.ArchiveKey); err != nil {
		return nil, err
	}
	if release.ManifestURL, err = u.publicURL(release.ManifestKey); err != nil {
		return nil, err
	}
	return release, nil
}

func (u *Uploader) putFile(ctx context.Context, key, filePath, contentType string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open %s: %w", filePath, err)
	}
	defer file.Close()

	if err := u.Client.PutObject(ctx, u.Bucket, key, contentType, file); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (u *Uploader) objectKey(version, fileName string) string {
	parts := []string{}
	if prefix := strings.Trim(u.Prefix, "/"); prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, version, fileName)
	return path.Join(parts...)
}

// publicURL derives the download URL for an object. A configured public
// base URL (CDN, custom domain) wins; otherwise the standard virtual-host
// S3 URL is used.
func (u *Uploader) publicURL(key string) (string, error) {
	if u.PublicBaseURL != "" {
		base, err := url.Parse(u.PublicBaseURL)
		if err != nil {
			return "", fmt.Errorf("parse public base URL: %w", err)
		}
		return base.JoinPath(key).String(), nil
	}
	if u.Region == "" {
		return "", fmt.Errorf("region is required to derive object URLs (or set a public base URL)")
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Bucket, u.Region, key), nil
}
