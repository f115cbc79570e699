// Package assets stores generated images and prepares social-card renditions.
package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	gcstorage "cloud.google.com/go/storage"

	"github.com/avablackwood/presskit/internal/cms"
)

// Uploader stores image bytes and returns a publicly addressable URL.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

// CMSUploader stores images as content-store assets.
type CMSUploader struct {
	store cms.Store
}

var _ Uploader = (*CMSUploader)(nil)

// NewCMSUploader wraps a content store as an Uploader.
func NewCMSUploader(store cms.Store) (*CMSUploader, error) {
	if store == nil {
		return nil, errors.New("assets: cms store is required")
	}
	return &CMSUploader{store: store}, nil
}

// Upload implements Uploader.
func (u *CMSUploader) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	asset, err := u.store.UploadImage(ctx, filename, contentType, data)
	if err != nil {
		return "", fmt.Errorf("assets: cms upload: %w", err)
	}
	return asset.URL, nil
}

// GCSUploader writes images to a Google Cloud Storage bucket.
type GCSUploader struct {
	client *gcstorage.Client
	bucket string
	prefix string
}

var _ Uploader = (*GCSUploader)(nil)

// NewGCSUploader creates a GCS-backed uploader. Objects land under the given
// prefix inside the bucket.
func NewGCSUploader(client *gcstorage.Client, bucket, prefix string) (*GCSUploader, error) {
	if client == nil {
		return nil, errors.New("assets: storage client is required")
	}
	if bucket == "" {
		return nil, errors.New("assets: bucket name is required")
	}
	return &GCSUploader{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Upload implements Uploader. The returned URL assumes the bucket allows
// public reads.
func (u *GCSUploader) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", errors.New("assets: filename is required")
	}
	path := filename
	if u.prefix != "" {
		path = u.prefix + "/" + filename
	}
	writer := u.client.Bucket(u.bucket).Object(path).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}
	if _, err := writer.Write(data); err != nil {
		closeErr := writer.Close()
		if closeErr != nil {
			return "", fmt.Errorf("assets: write object: %w (close writer: %v)", err, closeErr)
		}
		return "", fmt.Errorf("assets: write object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("assets: close writer: %w", err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, path), nil
}

// NoOpUploader discards images. Used when no asset backend is configured.
type NoOpUploader struct{}

var _ Uploader = (*NoOpUploader)(nil)

// Upload implements Uploader.
func (NoOpUploader) Upload(_ context.Context, filename, _ string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("assets: empty image data")
	}
	var b bytes.Buffer
	b.WriteString("noop://")
	b.WriteString(filename)
	return b.String(), nil
}
