package cmd

import (
	"context"
	"fmt"
	"os"

	"legacy-importer/core/config"
	"legacy-importer/core/logger"
	"legacy-importer/core/storage"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "legacy-importer",
	Short: "Legacy CMS dump importer",
	Long: `Legacy Importer reads a SQL dump of a legacy CMS and imports its video posts,
embedded videos and users into the media library, copying media from the old
uploads archive to local or S3 storage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// CLI errors are reported on the console encoder with ISO8601 timestamps
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the logger shared by every command.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, l, nil
}

// openDestination builds the destination disk and makes sure an S3 bucket exists.
func openDestination(ctx context.Context, cfg storage.Config) (storage.Disk, error) {
	disk, err := storage.NewDisk(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open destination storage: %w", err)
	}
	if od, ok := disk.(*storage.ObjectDisk); ok {
		if err := od.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to prepare bucket: %w", err)
		}
	}
	return disk, nil
}
