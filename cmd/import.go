package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"legacy-importer/core/database"
	"legacy-importer/core/importer"
	"legacy-importer/core/storage"
	"legacy-importer/feature/imports"
	"legacy-importer/feature/legacy"
	"legacy-importer/feature/library"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags shared by the import subcommands
	importDump      string
	importPrefix    string
	importArchive   string
	importAssignee  int64
	importBatchSize int
	importDelayMs   int
	importDryRun    bool
	importRemux     bool
	yesConfirm      bool
)

// importCmd is the parent command of the three import flows.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import videos, embedded videos or users from a legacy SQL dump",
	Long: `Import one kind of legacy content from a SQL dump into the media library.

Imports are idempotent: entities imported before are skipped as duplicates, so an
interrupted import can simply be run again.

Examples:
  # Report what would be imported (no writes)
  import videos --dump legacy.sql.gz --archive /srv/old/uploads --dry-run

  # Import archive videos with auto-confirm, remuxing mp4/mov for streaming
  import videos --dump legacy.sql.gz --archive /srv/old/uploads --assignee 1 --remux --yes

  # Import embedded videos in batches of 50 with a pause in between
  import embeds --dump legacy.sql --batch-size 50 --delay 500

  # Import users
  import users --dump legacy.sql --assignee 1`,
}

var importVideosCmd = &cobra.Command{
	Use:   "videos",
	Short: "Import posts whose media file lives in the uploads archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, imports.KindVideos)
	},
}

var importEmbedsCmd = &cobra.Command{
	Use:   "embeds",
	Short: "Import posts played from an embedded player or remote URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, imports.KindEmbeds)
	},
}

var importUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Import legacy user accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, imports.KindUsers)
	},
}

func init() {
	flags := importCmd.PersistentFlags()
	flags.StringVar(&importDump, "dump", "", "Path to the SQL dump (.sql or .sql.gz)")
	flags.StringVar(&importPrefix, "prefix", "", "Table prefix used in the dump (default from IMPORT_TABLE_PREFIX)")
	flags.StringVar(&importArchive, "archive", "", "Legacy uploads directory (default from IMPORT_ARCHIVE_ROOT)")
	flags.Int64Var(&importAssignee, "assignee", 0, "Destination user id imported records are attributed to")
	flags.IntVar(&importBatchSize, "batch-size", 0, "Entities per batch")
	flags.IntVar(&importDelayMs, "delay", 0, "Pause between batches in milliseconds")
	flags.BoolVar(&importDryRun, "dry-run", false, "Validate and report only, write nothing")
	flags.BoolVar(&importRemux, "remux", false, "Remux mp4/m4v/mov files with ffmpeg before upload")
	flags.BoolVar(&yesConfirm, "yes", false, "Auto-confirm the import (non-interactive)")
	_ = importCmd.MarkPersistentFlagRequired("dump")

	importCmd.AddCommand(importVideosCmd, importEmbedsCmd, importUsersCmd)
	RootCmd.AddCommand(importCmd)
}

// applyImportFlags overrides the configuration with the flags that were set.
func applyImportFlags(cmd *cobra.Command, cfg *importer.Config) {
	flags := cmd.Flags()
	if flags.Changed("prefix") {
		cfg.TablePrefix = importPrefix
	}
	if flags.Changed("archive") {
		cfg.ArchiveRoot = importArchive
	}
	if flags.Changed("assignee") {
		cfg.AssigneeID = importAssignee
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = importBatchSize
	}
	if flags.Changed("delay") {
		cfg.BatchDelayMs = importDelayMs
	}
	if flags.Changed("remux") {
		cfg.RemuxEnabled = importRemux
	}
}

func runImport(cmd *cobra.Command, kind string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()
	applyImportFlags(cmd, &cfg.Import)

	if cfg.Import.AssigneeID <= 0 {
		return fmt.Errorf("%w: set --assignee or IMPORT_ASSIGNEE_ID", importer.ErrNoAssignee)
	}
	if kind == imports.KindVideos && cfg.Import.ArchiveRoot == "" {
		return errors.New("archive root is required: set --archive or IMPORT_ARCHIVE_ROOT")
	}

	proj := legacy.DefaultProjection()
	proj.Filter = legacy.Filter{PostType: cfg.Import.PostType, Status: cfg.Import.PostStatus}

	opts := legacy.LoadOptions{Prefix: cfg.Import.TablePrefix}
	if kind == imports.KindUsers {
		opts.Tables = legacy.UserTables
		opts.UserMetaKeys = proj.UserMetaKeys()
	} else {
		opts.Tables = legacy.VideoTables
		opts.MetaKeys = proj.MetaKeys()
	}

	l.Info("Scanning dump", zap.String("dump", importDump), zap.String("prefix", opts.Prefix))
	started := time.Now()
	idx, err := legacy.Load(ctx, importDump, opts, l)
	if err != nil {
		return err
	}
	stats := idx.Stats()
	l.Info("Dump scanned",
		zap.String("size", humanize.Bytes(uint64(stats.Bytes))),
		zap.Int("statements", stats.Statements),
		zap.Int("dropped_rows", stats.Dropped),
		zap.Duration("took", time.Since(started)),
	)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	store := library.NewStore(db)
	if cfg.Import.AutoMigrate && !importDryRun {
		if err := store.Migrate(); err != nil {
			return fmt.Errorf("failed to migrate library tables: %w", err)
		}
	} else if err := store.CheckSchema(); err != nil {
		return err
	}

	execOpts := cfg.Import.Options(l)
	execOpts.DryRun = importDryRun

	if kind == imports.KindUsers {
		members := proj.Members(idx)
		return executeImport(ctx, l, importer.NewExecutor[legacy.Member](library.NewMemberAdapter(store, l), execOpts), members)
	}

	videos := proj.Videos(idx)
	var archive storage.Disk
	if cfg.Import.ArchiveRoot != "" {
		archive = storage.NewLocalDisk(cfg.Import.ArchiveRoot)
	}
	if importDryRun && kind == imports.KindVideos {
		if err := printResolveReport(ctx, l, archive, videos); err != nil {
			return err
		}
	}

	// Dry runs never reach Import, so they need no destination.
	var dest storage.Disk
	if !importDryRun {
		if dest, err = openDestination(ctx, cfg.Storage); err != nil {
			return err
		}
	}

	terms := library.NewTermCache()
	var adapter importer.Adapter[legacy.Video]
	if kind == imports.KindEmbeds {
		adapter = library.NewEmbedAdapter(store, archive, dest, cfg.Import.DestinationDir, terms, l)
	} else {
		adapter = library.NewArchiveAdapter(store, archive, dest, library.ArchiveOptions{
			Dir:    cfg.Import.DestinationDir,
			Remux:  cfg.Import.Remuxer(l),
			Terms:  terms,
			Logger: l,
		})
	}
	return executeImport(ctx, l, importer.NewExecutor(adapter, execOpts), videos)
}

// executeImport asks for confirmation unless this is a dry run and runs the batch.
func executeImport[T any](ctx context.Context, l *zap.Logger, exec *importer.Executor[T], entities []T) error {
	l.Info("Entities projected", zap.Int("count", len(entities)))
	if len(entities) == 0 {
		l.Info("Nothing to import.")
		return nil
	}

	if !importDryRun && !confirmImport(len(entities)) {
		l.Warn("Import cancelled by user. No changes were made.")
		return nil
	}

	summary, err := exec.RunBatch(ctx, entities, func(r importer.Result) {
		if r.Status == importer.StatusError {
			l.Warn("Entity failed",
				zap.Int64("source_id", r.SourceID),
				zap.String("reason", r.Reason),
				zap.String("message", r.Message),
			)
		}
	})
	printImportSummary(l, summary)
	if err != nil {
		return fmt.Errorf("import stopped: %w", err)
	}
	if importDryRun {
		l.Info("Dry-run mode: No changes were made.")
	}
	return nil
}

// printResolveReport logs which archive files of the projected videos exist.
func printResolveReport(ctx context.Context, l *zap.Logger, archive storage.Disk, videos []legacy.Video) error {
	rep, err := legacy.Report(ctx, archive, videos)
	if err != nil {
		return err
	}
	l.Info("Archive report",
		zap.Int("videos", rep.Total),
		zap.Int("found", rep.Found),
		zap.Int("missing", rep.Missing),
		zap.Int("without_path", rep.WithoutPath),
		zap.Int("thumbnails_found", rep.ThumbnailsFound),
		zap.Int("thumbnails_missing", rep.ThumbnailsMissed),
		zap.String("total_size", humanize.Bytes(uint64(rep.TotalBytes))),
	)
	for _, p := range rep.MissingPaths {
		l.Info("Missing file", zap.String("path", p))
	}
	if rep.Missing > len(rep.MissingPaths) {
		l.Info("Additional missing files not shown", zap.Int("count", rep.Missing-len(rep.MissingPaths)))
	}
	return nil
}

// printImportSummary prints the outcome of a run using logger.
func printImportSummary(l *zap.Logger, s importer.Summary) {
	l.Info("Import summary",
		zap.Int("total", s.Total),
		zap.Int("imported", s.Imported),
		zap.Int("planned", s.Planned),
		zap.Int("skipped", s.Skipped),
		zap.Int("errors", s.Errors),
		zap.Any("reasons", s.Reasons),
	)
	for _, d := range s.ErrorDetails {
		l.Info("Error detail",
			zap.Int64("source_id", d.SourceID),
			zap.String("title", d.Title),
			zap.String("message", d.Message),
		)
	}
}

// confirmImport prompts the user for confirmation or uses --yes flag.
func confirmImport(n int) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  Type 'yes' to import %d entities: ", n)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
