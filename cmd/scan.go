package cmd

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"legacy-importer/core/storage"
	"legacy-importer/feature/legacy"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scanDump    string
	scanPrefix  string
	scanArchive string
	scanJSON    bool
)

// scanReport is the --json output of the scan command.
type scanReport struct {
	Dump    string                `json:"dump"`
	Took    string                `json:"took"`
	Lines   int64                 `json:"lines"`
	Bytes   int64                 `json:"bytes"`
	Rows    map[string]int        `json:"rows"`
	Dropped int                   `json:"dropped"`
	Indexed map[string]int        `json:"indexed"`
	Videos  int                   `json:"videos"`
	Embeds  int                   `json:"embeds"`
	Members int                   `json:"members"`
	Archive *legacy.ResolveReport `json:"archive,omitempty"`
}

// scanCmd reads a dump once and reports what an import would see.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a legacy SQL dump and report its content",
	Long: `Scans a legacy SQL dump in a single pass and reports rows per table, the number
of videos, embedded videos and users an import would project and, with --archive,
which media files resolve in the uploads archive. Nothing is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, l, err := bootstrap()
		if err != nil {
			return err
		}
		defer l.Sync()
		if cmd.Flags().Changed("prefix") {
			cfg.Import.TablePrefix = scanPrefix
		}
		if cmd.Flags().Changed("archive") {
			cfg.Import.ArchiveRoot = scanArchive
		}

		proj := legacy.DefaultProjection()
		proj.Filter = legacy.Filter{PostType: cfg.Import.PostType, Status: cfg.Import.PostStatus}

		started := time.Now()
		idx, err := legacy.Load(ctx, scanDump, legacy.LoadOptions{
			Prefix:       cfg.Import.TablePrefix,
			Tables:       append(append([]string{}, legacy.VideoTables...), legacy.UserTables...),
			MetaKeys:     proj.MetaKeys(),
			UserMetaKeys: proj.UserMetaKeys(),
		}, l)
		if err != nil {
			return err
		}

		stats := idx.Stats()
		videos := proj.Videos(idx)
		report := scanReport{
			Dump:    scanDump,
			Took:    time.Since(started).Round(time.Millisecond).String(),
			Lines:   stats.Lines,
			Bytes:   stats.Bytes,
			Rows:    stats.Rows,
			Dropped: stats.Dropped,
			Indexed: idx.Counts(),
			Members: len(proj.Members(idx)),
		}
		for _, v := range videos {
			if v.FilePath != nil {
				report.Videos++
			} else if v.EmbedURL != nil || v.RemoteURL != nil {
				report.Embeds++
			}
		}

		if cfg.Import.ArchiveRoot != "" {
			rep, err := legacy.Report(ctx, storage.NewLocalDisk(cfg.Import.ArchiveRoot), videos)
			if err != nil {
				return err
			}
			report.Archive = &rep
		}

		if scanJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		printScanReport(l, report)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanDump, "dump", "", "Path to the SQL dump (.sql or .sql.gz)")
	scanCmd.Flags().StringVar(&scanPrefix, "prefix", "", "Table prefix used in the dump (default from IMPORT_TABLE_PREFIX)")
	scanCmd.Flags().StringVar(&scanArchive, "archive", "", "Legacy uploads directory to resolve media against")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output the report as JSON")
	_ = scanCmd.MarkFlagRequired("dump")
	RootCmd.AddCommand(scanCmd)
}

func printScanReport(l *zap.Logger, r scanReport) {
	l.Info("Dump scanned",
		zap.String("dump", r.Dump),
		zap.String("size", humanize.Bytes(uint64(r.Bytes))),
		zap.String("lines", humanize.Comma(r.Lines)),
		zap.String("took", r.Took),
		zap.Int("dropped_rows", r.Dropped),
	)

	tables := make([]string, 0, len(r.Indexed))
	for t := range r.Indexed {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	for _, t := range tables {
		l.Info("Table", zap.String("table", t), zap.Int("rows", r.Rows[t]), zap.Int("indexed", r.Indexed[t]))
	}

	l.Info("Projection",
		zap.Int("videos", r.Videos),
		zap.Int("embeds", r.Embeds),
		zap.Int("users", r.Members),
	)
	if a := r.Archive; a != nil {
		l.Info("Archive",
			zap.Int("found", a.Found),
			zap.Int("missing", a.Missing),
			zap.String("total_size", humanize.Bytes(uint64(a.TotalBytes))),
		)
	}
	if r.Dropped > 0 {
		l.Warn("Malformed rows were dropped", zap.Int("count", r.Dropped))
	}
}
