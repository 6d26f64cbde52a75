package remux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrEmptyOutput is returned when the tool exited cleanly but produced nothing.
var ErrEmptyOutput = errors.New("remux produced no output")

// Runner rewrites a media container without re-encoding its streams.
type Runner interface {
	// Remux reads in and writes out. Success means out exists and is non-empty.
	Remux(ctx context.Context, in, out string) error
}

// FFmpeg runs the ffmpeg binary with stream copy.
type FFmpeg struct {
	// Path is the ffmpeg executable. Empty means "ffmpeg" from PATH.
	Path   string
	logger *zap.Logger
}

// NewFFmpeg creates a runner for the binary at path.
func NewFFmpeg(path string, logger *zap.Logger) *FFmpeg {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FFmpeg{Path: path, logger: logger}
}

// Args returns the ffmpeg arguments used for a remux of in into out.
func Args(in, out string) []string {
	return []string{"-y", "-hide_banner", "-loglevel", "error", "-i", in, "-map", "0", "-c", "copy", "-movflags", "+faststart", out}
}

// Remux runs ffmpeg synchronously. A partial or empty out is removed on failure.
func (f *FFmpeg) Remux(ctx context.Context, in, out string) error {
	bin := f.Path
	if bin == "" {
		bin = "ffmpeg"
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, Args(in, out)...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(out)
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > 500 {
			msg = msg[len(msg)-500:]
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, msg)
	}

	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		_ = os.Remove(out)
		return ErrEmptyOutput
	}
	return nil
}

// Supported reports whether path has a container remux can improve.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".mov":
		return true
	}
	return false
}

// WithRemuxed remuxes in into a temporary file and hands its path to use. The
// temporary file is removed before WithRemuxed returns, whatever the outcome.
//
// A remux failure is not an error: it is logged, use is not called and the
// result is false so the caller can fall back to the original. An error from use
// is returned as is.
func WithRemuxed(ctx context.Context, r Runner, in string, logger *zap.Logger, use func(path string) error) (bool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tmp, err := os.CreateTemp("", "remux-*"+strings.ToLower(filepath.Ext(in)))
	if err != nil {
		logger.Warn("Remux skipped, no temp file", zap.String("path", in), zap.Error(err))
		return false, nil
	}
	out := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(out)

	if err := r.Remux(ctx, in, out); err != nil {
		logger.Warn("Remux failed, keeping original", zap.String("path", in), zap.Error(err))
		return false, nil
	}

	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		logger.Warn("Remux produced no output, keeping original", zap.String("path", in))
		return false, nil
	}

	return true, use(out)
}
