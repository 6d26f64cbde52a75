package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Disk is a file store addressed by slash-separated relative paths.
// Both the legacy archive and the destination are Disks.
type Disk interface {
	// Exists reports whether a regular file exists at p.
	Exists(ctx context.Context, p string) (bool, error)
	// Size returns the size of the file at p in bytes.
	Size(ctx context.Context, p string) (int64, error)
	// Open opens the file at p for reading.
	Open(ctx context.Context, p string) (io.ReadCloser, error)
	// Put writes r to p, replacing any existing file. size may be -1 if unknown.
	Put(ctx context.Context, p string, r io.Reader, size int64) error
	// MakeDirectory creates p and any missing parents.
	MakeDirectory(ctx context.Context, p string) error
	// Delete removes the file at p. Missing files are not an error.
	Delete(ctx context.Context, p string) error
}

// LocalPather is implemented by disks backed by the OS filesystem. External tools
// such as ffmpeg need a real path.
type LocalPather interface {
	LocalPath(p string) (string, bool)
}

// Copy streams srcPath on src to dstPath on dst and returns the bytes copied.
func Copy(ctx context.Context, src Disk, srcPath string, dst Disk, dstPath string) (int64, error) {
	size, err := src.Size(ctx, srcPath)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", srcPath, err)
	}

	r, err := src.Open(ctx, srcPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer r.Close()

	if err := dst.Put(ctx, dstPath, r, size); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", dstPath, err)
	}
	return size, nil
}

// NewDisk builds the destination disk selected by cfg.Driver.
func NewDisk(cfg Config) (Disk, error) {
	switch cfg.Driver {
	case "", DriverLocal:
		return NewLocalDisk(cfg.Root), nil
	case DriverS3:
		client, err := NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return NewObjectDisk(client, cfg.Bucket, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// CleanPath normalises p to a relative slash path that cannot escape its root.
func CleanPath(p string) string {
	return strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
}
