package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
)

// ObjectDisk is a Disk on an S3 compatible bucket. Directories do not exist in
// object stores, so MakeDirectory is a no-op.
type ObjectDisk struct {
	client Client
	bucket string
	prefix string
}

// NewObjectDisk returns a disk writing to bucket, with every key under prefix.
func NewObjectDisk(client Client, bucket, prefix string) *ObjectDisk {
	return &ObjectDisk{client: client, bucket: bucket, prefix: CleanPath(prefix)}
}

func (d *ObjectDisk) key(p string) string {
	if d.prefix == "" {
		return CleanPath(p)
	}
	return d.prefix + "/" + CleanPath(p)
}

// EnsureBucket creates the bucket if it does not exist yet.
func (d *ObjectDisk) EnsureBucket(ctx context.Context) error {
	exists, err := d.client.BucketExists(ctx, d.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", d.bucket, err)
	}
	if exists {
		return nil
	}
	if err := d.client.MakeBucket(ctx, d.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", d.bucket, err)
	}
	return nil
}

func (d *ObjectDisk) Exists(ctx context.Context, p string) (bool, error) {
	_, err := d.client.StatObject(ctx, d.bucket, d.key(p), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d *ObjectDisk) Size(ctx context.Context, p string) (int64, error) {
	info, err := d.client.StatObject(ctx, d.bucket, d.key(p), minio.StatObjectOptions{})
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

func (d *ObjectDisk) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	return d.client.GetObject(ctx, d.bucket, d.key(p), minio.GetObjectOptions{})
}

func (d *ObjectDisk) Put(ctx context.Context, p string, r io.Reader, size int64) error {
	opts := minio.PutObjectOptions{ContentType: contentType(p)}
	_, err := d.client.PutObject(ctx, d.bucket, d.key(p), r, size, opts)
	return err
}

func (d *ObjectDisk) MakeDirectory(context.Context, string) error {
	return nil
}

func (d *ObjectDisk) Delete(ctx context.Context, p string) error {
	return d.client.RemoveObject(ctx, d.bucket, d.key(p), minio.RemoveObjectOptions{})
}

// mediaTypes covers extensions the system mime table often lacks.
var mediaTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".flv":  "video/x-flv",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

func contentType(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if t, ok := mediaTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
