package imports

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"legacy-importer/core/importer"
	"legacy-importer/core/remux"
	"legacy-importer/core/sqldump"
	"legacy-importer/core/storage"
	"legacy-importer/feature/legacy"
	"legacy-importer/feature/library"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrRunNotFound is returned for an unknown run id.
	ErrRunNotFound = errors.New("import run not found")
	// ErrInvalidKind is returned when a run names no known flow.
	ErrInvalidKind = errors.New("unknown import kind")
	// ErrArchiveRequired is returned when a video run has no archive root.
	ErrArchiveRequired = errors.New("archive root is required for video imports")
	// ErrStepConflict is returned when another step advanced the run first.
	ErrStepConflict = errors.New("run was advanced by a concurrent step")
)

// Service drives step-wise imports and persists their progress.
type Service struct {
	db     *gorm.DB
	store  *library.Store
	dest   storage.Disk
	cfg    importer.Config
	proj   legacy.Projection
	remux  remux.Runner
	logger *zap.Logger

	videos  *importer.Cache[[]legacy.Video]
	members *importer.Cache[[]legacy.Member]

	mu    sync.Mutex
	terms map[string]*library.TermCache
}

// NewService creates a new import service writing to db and dest.
func NewService(db *gorm.DB, dest storage.Disk, cfg importer.Config, logger *zap.Logger) *Service {
	proj := legacy.DefaultProjection()
	proj.Filter = legacy.Filter{PostType: cfg.PostType, Status: cfg.PostStatus}

	return &Service{
		db:      db,
		store:   library.NewStore(db),
		dest:    dest,
		cfg:     cfg,
		proj:    proj,
		remux:   cfg.Remuxer(logger),
		logger:  logger,
		videos:  importer.NewCache[[]legacy.Video](cfg.CacheTTL()),
		members: importer.NewCache[[]legacy.Member](cfg.CacheTTL()),
		terms:   make(map[string]*library.TermCache),
	}
}

// Migrate creates the run table.
func (s *Service) Migrate() error {
	return s.db.AutoMigrate(&Run{})
}

// CreateRun validates req, projects the dump once to size the run and persists it.
func (s *Service) CreateRun(ctx context.Context, req CreateRunRequest) (*Run, error) {
	run := &Run{
		ID:          uuid.NewString(),
		Kind:        req.Kind,
		DumpPath:    req.DumpPath,
		ArchiveRoot: cmp.Or(req.ArchiveRoot, s.cfg.ArchiveRoot),
		Prefix:      cmp.Or(req.Prefix, s.cfg.TablePrefix),
		AssigneeID:  cmp.Or(req.AssigneeID, s.cfg.AssigneeID),
		BatchSize:   cmp.Or(req.BatchSize, s.cfg.BatchSize),
		Status:      RunPending,
		Summary:     importer.Summary{MaxErrorDetails: s.cfg.MaxErrorDetails},
	}

	switch run.Kind {
	case KindVideos:
		if run.ArchiveRoot == "" {
			return nil, ErrArchiveRequired
		}
	case KindEmbeds, KindUsers:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, run.Kind)
	}
	if run.AssigneeID <= 0 {
		return nil, importer.ErrNoAssignee
	}

	total, err := s.count(ctx, run)
	if err != nil {
		return nil, err
	}
	run.Total = total

	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	s.logger.Info("Import run created",
		zap.String("run_id", run.ID),
		zap.String("kind", run.Kind),
		zap.Int("total", run.Total),
	)
	return run, nil
}

// GetRun loads a run by id.
func (s *Service) GetRun(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).Where(clause.Eq{Column: "id", Value: id}).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var runs []Run
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Next processes the next chunk of a run. The chunk is claimed by moving the
// cursor past it before anything is imported, so two concurrent calls never
// process the same entities; the loser gets ErrStepConflict and has done nothing.
func (s *Service) Next(ctx context.Context, id string) (*StepResponse, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Status == RunDone {
		return &StepResponse{Run: run, Done: true}, nil
	}

	total, err := s.count(ctx, run)
	if err != nil {
		return nil, err
	}
	// The last chunk is claimed but not merged yet.
	if run.Cursor >= total {
		return &StepResponse{Run: run, Done: true}, nil
	}

	prev := run.Cursor
	end := min(prev+max(run.BatchSize, 1), total)
	if err := s.claim(ctx, run, end); err != nil {
		return nil, err
	}

	step, stepErr := s.step(ctx, run.withCursor(prev))
	// Bookkeeping of a claimed chunk outlives a cancelled request.
	bookCtx := context.WithoutCancel(ctx)
	if stepErr != nil {
		if next := max(step.Next, prev); next < end {
			s.release(bookCtx, run, end, next)
		}
	}

	saved, err := s.merge(bookCtx, run.ID, step.Summary, step.Done)
	if err != nil {
		return nil, err
	}
	if stepErr != nil {
		return nil, stepErr
	}

	if step.Done {
		s.dropTerms(run.ID)
		s.logger.Info("Import run finished",
			zap.String("run_id", saved.ID),
			zap.Int("imported", saved.Summary.Imported),
			zap.Int("skipped", saved.Summary.Skipped),
			zap.Int("errors", saved.Summary.Errors),
		)
	}
	return &StepResponse{Run: saved, Results: step.Results, Done: step.Done}, nil
}

// claim moves the cursor of run from its current value to end. It fails with
// ErrStepConflict when the stored cursor no longer matches.
func (s *Service) claim(ctx context.Context, run *Run, end int) error {
	res := s.db.WithContext(ctx).Model(&Run{}).
		Where(clause.Eq{Column: "id", Value: run.ID}).
		Where(clause.Eq{Column: "cursor", Value: run.Cursor}).
		Updates(map[string]any{"cursor": end, "status": RunRunning})
	if res.Error != nil {
		return fmt.Errorf("failed to claim run: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStepConflict
	}
	run.Cursor = end
	run.Status = RunRunning
	return nil
}

// release hands back the unprocessed tail of a claimed chunk, unless the cursor
// has moved on since.
func (s *Service) release(ctx context.Context, run *Run, claimed, next int) {
	err := s.db.WithContext(ctx).Model(&Run{}).
		Where(clause.Eq{Column: "id", Value: run.ID}).
		Where(clause.Eq{Column: "cursor", Value: claimed}).
		Update("cursor", next).Error
	if err != nil {
		s.logger.Warn("Failed to release unprocessed entities",
			zap.String("run_id", run.ID),
			zap.Int("cursor", next),
			zap.Error(err),
		)
	}
}

const mergeAttempts = 10

// merge folds a chunk summary into the stored run. Concurrent merges are
// serialised by the revision column and retried.
func (s *Service) merge(ctx context.Context, id string, sum importer.Summary, done bool) (*Run, error) {
	for range mergeAttempts {
		run, err := s.GetRun(ctx, id)
		if err != nil {
			return nil, err
		}
		rev := run.Revision
		run.Summary.Merge(sum)
		run.Revision++
		if done && run.Status != RunDone {
			now := time.Now()
			run.Status = RunDone
			run.FinishedAt = &now
		}

		res := s.db.WithContext(ctx).Model(run).
			Where(clause.Eq{Column: "revision", Value: rev}).
			Select("summary", "status", "finished_at", "revision", "updated_at").
			Updates(run)
		if res.Error != nil {
			return nil, fmt.Errorf("failed to save run: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			return run, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: summary of run %s kept changing", ErrStepConflict, id)
}

// Report is a read-only view of a run: projected entity count and, for archive
// runs, which assets resolve on the archive.
func (s *Service) Report(ctx context.Context, id string) (*ReportResponse, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &ReportResponse{Run: run}
	switch run.Kind {
	case KindVideos, KindEmbeds:
		videos, err := s.loadVideos(ctx, run)
		if err != nil {
			return nil, err
		}
		resp.Entities = len(videos)
		if run.Kind == KindVideos {
			rep, err := legacy.Report(ctx, storage.NewLocalDisk(run.ArchiveRoot), videos)
			if err != nil {
				return nil, err
			}
			resp.Assets = &rep
			resp.AssetBytes = humanize.Bytes(uint64(max(rep.TotalBytes, 0)))
		}
	case KindUsers:
		members, err := s.loadMembers(ctx, run)
		if err != nil {
			return nil, err
		}
		resp.Entities = len(members)
	}
	resp.Remaining = max(resp.Entities-run.Cursor, 0)
	return resp, nil
}

func (s *Service) count(ctx context.Context, run *Run) (int, error) {
	if run.Kind == KindUsers {
		members, err := s.loadMembers(ctx, run)
		return len(members), err
	}
	videos, err := s.loadVideos(ctx, run)
	return len(videos), err
}

func (s *Service) step(ctx context.Context, run *Run) (importer.StepResult, error) {
	opts := importer.Options{
		Assignee:        run.AssigneeID,
		BatchSize:       run.BatchSize,
		MaxErrorDetails: s.cfg.MaxErrorDetails,
		Logger:          s.logger.With(zap.String("run_id", run.ID)),
	}

	if run.Kind == KindUsers {
		members, err := s.loadMembers(ctx, run)
		if err != nil {
			return importer.StepResult{}, err
		}
		adapter := library.NewMemberAdapter(s.store, s.logger)
		return importer.NewExecutor[legacy.Member](adapter, opts).Step(ctx, members, run.Cursor)
	}

	videos, err := s.loadVideos(ctx, run)
	if err != nil {
		return importer.StepResult{}, err
	}
	return importer.NewExecutor(s.videoAdapter(run), opts).Step(ctx, videos, run.Cursor)
}

func (s *Service) videoAdapter(run *Run) importer.Adapter[legacy.Video] {
	terms := s.termsFor(run.ID)
	archive := storage.NewLocalDisk(run.ArchiveRoot)
	if run.Kind == KindEmbeds {
		var thumbs storage.Disk
		if run.ArchiveRoot != "" {
			thumbs = archive
		}
		return library.NewEmbedAdapter(s.store, thumbs, s.dest, s.cfg.DestinationDir, terms, s.logger)
	}
	return library.NewArchiveAdapter(s.store, archive, s.dest, library.ArchiveOptions{
		Dir:    s.cfg.DestinationDir,
		Remux:  s.remux,
		Terms:  terms,
		Logger: s.logger,
	})
}

// cacheKey identifies one projection of one version of a dump.
func (s *Service) cacheKey(group string, run *Run) (string, error) {
	info, err := os.Stat(run.DumpPath)
	if err != nil {
		return "", fmt.Errorf("%w %s: %v", sqldump.ErrOpenDump, run.DumpPath, err)
	}
	return fmt.Sprintf("%s|%s|%s|%d|%d", group, run.DumpPath, run.Prefix, info.Size(), info.ModTime().UnixNano()), nil
}

func (s *Service) loadVideos(ctx context.Context, run *Run) ([]legacy.Video, error) {
	key, err := s.cacheKey("videos", run)
	if err != nil {
		return nil, err
	}
	return s.videos.GetOrBuild(ctx, key, func(ctx context.Context) ([]legacy.Video, error) {
		idx, err := legacy.Load(ctx, run.DumpPath, legacy.LoadOptions{
			Prefix:   run.Prefix,
			Tables:   legacy.VideoTables,
			MetaKeys: s.proj.MetaKeys(),
		}, s.logger)
		if err != nil {
			return nil, err
		}
		return s.proj.Videos(idx), nil
	})
}

func (s *Service) loadMembers(ctx context.Context, run *Run) ([]legacy.Member, error) {
	key, err := s.cacheKey("users", run)
	if err != nil {
		return nil, err
	}
	return s.members.GetOrBuild(ctx, key, func(ctx context.Context) ([]legacy.Member, error) {
		idx, err := legacy.Load(ctx, run.DumpPath, legacy.LoadOptions{
			Prefix:       run.Prefix,
			Tables:       legacy.UserTables,
			UserMetaKeys: s.proj.UserMetaKeys(),
		}, s.logger)
		if err != nil {
			return nil, err
		}
		return s.proj.Members(idx), nil
	})
}

// termsFor returns the term cache of a run. It lives until the run finishes or the
// process restarts, whichever comes first.
func (s *Service) termsFor(runID string) *library.TermCache {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.terms[runID]
	if !ok {
		c = library.NewTermCache()
		s.terms[runID] = c
	}
	return c
}

func (s *Service) dropTerms(runID string) {
	s.mu.Lock()
	delete(s.terms, runID)
	s.mu.Unlock()
}
