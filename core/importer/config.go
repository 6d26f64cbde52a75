package importer

import (
	"time"

	"legacy-importer/core/remux"

	"go.uber.org/zap"
)

// Config holds the import settings shared by the CLI and the HTTP feature.
type Config struct {
	// TablePrefix is the table prefix used in the dump.
	TablePrefix string `mapstructure:"table_prefix" default:"wp_"`
	// PostType is the post type imported as videos.
	PostType string `mapstructure:"post_type" default:"post"`
	// PostStatus is the post status imported as videos.
	PostStatus string `mapstructure:"post_status" default:"publish"`
	// ArchiveRoot is the legacy uploads directory for the archive flow.
	ArchiveRoot string `mapstructure:"archive_root" default:""`
	// AssigneeID is the destination user records are attributed to.
	AssigneeID int64 `mapstructure:"assignee_id" default:"0"`
	// BatchSize is the number of entities per batch or step.
	BatchSize int `mapstructure:"batch_size" default:"25"`
	// BatchDelayMs is the pause between batches.
	BatchDelayMs int `mapstructure:"batch_delay_ms" default:"0"`
	// MaxErrorDetails caps the rolling error detail list.
	MaxErrorDetails int `mapstructure:"max_error_details" default:"100"`
	// RemuxEnabled turns on container remux of imported media.
	RemuxEnabled bool `mapstructure:"remux_enabled" default:"false"`
	// FFmpegPath is the ffmpeg binary used for remux.
	FFmpegPath string `mapstructure:"ffmpeg_path" default:"ffmpeg"`
	// RemuxConcurrency caps simultaneous remuxes across runs.
	RemuxConcurrency int `mapstructure:"remux_concurrency" default:"1"`
	// RemuxTimeoutSeconds bounds one remux. Zero means no limit.
	RemuxTimeoutSeconds int `mapstructure:"remux_timeout_seconds" default:"0"`
	// DestinationDir is the directory on the destination disk holding per-video folders.
	DestinationDir string `mapstructure:"destination_dir" default:"videos"`
	// CacheTTLSeconds is how long a projected dump is reused between step calls.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"600"`
	// AutoMigrate creates or updates destination tables on startup.
	AutoMigrate bool `mapstructure:"auto_migrate" default:"true"`
}

// BatchDelay returns BatchDelayMs as a duration.
func (c Config) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMs) * time.Millisecond
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Options builds executor options from the config.
func (c Config) Options(logger *zap.Logger) Options {
	return Options{
		Assignee:        c.AssigneeID,
		BatchSize:       c.BatchSize,
		BatchDelay:      c.BatchDelay(),
		MaxErrorDetails: c.MaxErrorDetails,
		Logger:          logger,
	}
}

// Remuxer returns the configured remux runner, or nil when remux is disabled.
func (c Config) Remuxer(logger *zap.Logger) remux.Runner {
	if !c.RemuxEnabled {
		return nil
	}
	timeout := time.Duration(c.RemuxTimeoutSeconds) * time.Second
	return remux.Limit(remux.NewFFmpeg(c.FFmpegPath, logger), int64(c.RemuxConcurrency), timeout)
}
