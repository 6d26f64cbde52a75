package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

// LocalDisk is a Disk on an afero filesystem. NewLocalDisk roots it on the OS
// filesystem; NewFsDisk accepts any afero.Fs (tests use afero.NewMemMapFs).
type LocalDisk struct {
	fs   afero.Fs
	root string
}

// NewLocalDisk returns a disk rooted at root on the OS filesystem.
func NewLocalDisk(root string) *LocalDisk {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &LocalDisk{fs: afero.NewBasePathFs(afero.NewOsFs(), abs), root: abs}
}

// NewFsDisk returns a disk on an arbitrary afero filesystem. It has no local path.
func NewFsDisk(fsys afero.Fs) *LocalDisk {
	return &LocalDisk{fs: fsys}
}

// LocalPath returns the OS path of p when the disk is OS backed.
func (d *LocalDisk) LocalPath(p string) (string, bool) {
	if d.root == "" {
		return "", false
	}
	return filepath.Join(d.root, filepath.FromSlash(CleanPath(p))), true
}

func (d *LocalDisk) Exists(_ context.Context, p string) (bool, error) {
	info, err := d.fs.Stat(CleanPath(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

func (d *LocalDisk) Size(_ context.Context, p string) (int64, error) {
	info, err := d.fs.Stat(CleanPath(p))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (d *LocalDisk) Open(_ context.Context, p string) (io.ReadCloser, error) {
	return d.fs.Open(CleanPath(p))
}

// Put writes to a sibling ".part" file and renames it into place so readers never
// see a half written asset.
func (d *LocalDisk) Put(ctx context.Context, p string, r io.Reader, _ int64) error {
	target := CleanPath(p)
	if dir := path.Dir(target); dir != "." {
		if err := d.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := target + ".part"
	f, err := d.fs.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, contextReader{ctx: ctx, r: r}); err != nil {
		f.Close()
		_ = d.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = d.fs.Remove(tmp)
		return err
	}
	return d.fs.Rename(tmp, target)
}

func (d *LocalDisk) MakeDirectory(_ context.Context, p string) error {
	return d.fs.MkdirAll(CleanPath(p), 0o755)
}

func (d *LocalDisk) Delete(_ context.Context, p string) error {
	err := d.fs.Remove(CleanPath(p))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// contextReader stops a copy between reads once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
