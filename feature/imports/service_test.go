package imports_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"legacy-importer/core/database"
	"legacy-importer/core/importer"
	"legacy-importer/core/sqldump"
	"legacy-importer/core/storage"
	"legacy-importer/feature/imports"
	"legacy-importer/feature/library"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const runDump = "INSERT INTO `wp_posts` (`ID`,`post_date`,`post_content`,`post_title`,`post_status`,`post_name`,`guid`,`post_type`) VALUES\n" +
	"(10,'2021-05-01 10:00:00','A clip','First Clip','publish','first-clip','http://old.example/?p=10','post'),\n" +
	"(11,'2021-05-02 10:00:00','','Embedded One','publish','embedded-one','http://old.example/?p=11','post'),\n" +
	"(12,'2021-05-03 10:00:00','','Missing File','publish','missing-file','http://old.example/?p=12','post');\n" +
	"INSERT INTO `wp_postmeta` (`meta_id`,`post_id`,`meta_key`,`meta_value`) VALUES\n" +
	"(1,10,'video_url','http://old.example/wp-content/uploads/2021/05/clip.mp4'),\n" +
	"(2,11,'embed','<iframe src=\"https://player.example/e/11\"></iframe>'),\n" +
	"(3,12,'video_file','2021/05/lost.mp4');\n" +
	"INSERT INTO `wp_users` (`ID`,`user_login`,`user_pass`,`user_email`,`user_registered`,`display_name`) VALUES\n" +
	"(1,'admin','$P$Bhash','admin@example.com','2019-01-01 00:00:00','Site Admin'),\n" +
	"(2,'ada','$P$Bada','ada@example.com','2019-02-01 00:00:00','');\n"

type fixture struct {
	db      *gorm.DB
	dest    storage.Disk
	destFs  afero.Fs
	cfg     importer.Config
	dump    string
	archive string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, library.NewStore(db).Migrate())

	dir := t.TempDir()
	dump := filepath.Join(dir, "legacy.sql")
	require.NoError(t, os.WriteFile(dump, []byte(runDump), 0o644))

	archive := filepath.Join(dir, "uploads")
	require.NoError(t, os.MkdirAll(filepath.Join(archive, "2021", "05"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(archive, "2021", "05", "clip.mp4"), []byte("mp4-bytes"), 0o644))

	destFs := afero.NewMemMapFs()
	return &fixture{
		db:     db,
		dest:   storage.NewFsDisk(destFs),
		destFs: destFs,
		cfg: importer.Config{
			TablePrefix:     "wp_",
			PostType:        "post",
			PostStatus:      "publish",
			AssigneeID:      3,
			BatchSize:       2,
			MaxErrorDetails: 100,
			DestinationDir:  "videos",
			CacheTTLSeconds: 60,
			AutoMigrate:     true,
		},
		dump:    dump,
		archive: archive,
	}
}

func (f *fixture) service(t *testing.T) *imports.Service {
	t.Helper()
	svc := imports.NewService(f.db, f.dest, f.cfg, zap.NewNop())
	require.NoError(t, svc.Migrate())
	return svc
}

func TestService_CreateRunValidation(t *testing.T) {
	f := setup(t)
	svc := f.service(t)
	ctx := context.Background()

	_, err := svc.CreateRun(ctx, imports.CreateRunRequest{Kind: "posts", DumpPath: f.dump})
	assert.ErrorIs(t, err, imports.ErrInvalidKind)

	_, err = svc.CreateRun(ctx, imports.CreateRunRequest{Kind: imports.KindVideos, DumpPath: f.dump})
	assert.ErrorIs(t, err, imports.ErrArchiveRequired)

	_, err = svc.CreateRun(ctx, imports.CreateRunRequest{Kind: imports.KindEmbeds, DumpPath: filepath.Join(t.TempDir(), "nope.sql")})
	assert.ErrorIs(t, err, sqldump.ErrOpenDump)

	f.cfg.AssigneeID = 0
	_, err = f.service(t).CreateRun(ctx, imports.CreateRunRequest{Kind: imports.KindUsers, DumpPath: f.dump})
	assert.ErrorIs(t, err, importer.ErrNoAssignee)

	runs, err := svc.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestService_VideoRunResumes(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	run, err := f.service(t).CreateRun(ctx, imports.CreateRunRequest{
		Kind:        imports.KindVideos,
		DumpPath:    f.dump,
		ArchiveRoot: f.archive,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, run.Total)
	assert.Equal(t, imports.RunPending, run.Status)

	step, err := f.service(t).Next(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, step.Results, 2)
	assert.Equal(t, importer.StatusImported, step.Results[0].Status)
	assert.Equal(t, importer.ReasonNoAsset, step.Results[1].Reason)
	assert.False(t, step.Done)
	assert.Equal(t, 2, step.Run.Cursor)
	assert.Equal(t, imports.RunRunning, step.Run.Status)

	// A fresh service only sees what was persisted.
	svc := f.service(t)
	step, err = svc.Next(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, step.Results, 1)
	assert.Equal(t, int64(12), step.Results[0].SourceID)
	assert.True(t, step.Done)

	got, err := svc.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Cursor)
	assert.Equal(t, imports.RunDone, got.Status)
	assert.NotNil(t, got.FinishedAt)
	assert.Equal(t, 3, got.Summary.Total)
	assert.Equal(t, 1, got.Summary.Imported)
	assert.Equal(t, 2, got.Summary.Reasons[importer.ReasonNoAsset])

	step, err = svc.Next(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, step.Done)
	assert.Empty(t, step.Results)

	body, err := afero.ReadFile(f.destFs, "videos/first-clip/video.mp4")
	require.NoError(t, err)
	assert.Equal(t, "mp4-bytes", string(body))
}

func TestService_ConcurrentNextKeepsTotals(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	run, err := f.service(t).CreateRun(ctx, imports.CreateRunRequest{
		Kind:        imports.KindVideos,
		DumpPath:    f.dump,
		ArchiveRoot: f.archive,
		BatchSize:   1,
	})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed []int64
	)
	for range 4 {
		svc := f.service(t)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				step, err := svc.Next(ctx, run.ID)
				if errors.Is(err, imports.ErrStepConflict) {
					continue
				}
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				for _, res := range step.Results {
					processed = append(processed, res.SourceID)
				}
				mu.Unlock()
				if step.Done {
					return
				}
			}
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []int64{10, 11, 12}, processed)

	got, err := f.service(t).GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, imports.RunDone, got.Status)
	assert.Equal(t, 3, got.Cursor)
	assert.Equal(t, 3, got.Summary.Total)
	assert.Equal(t, 1, got.Summary.Imported)
	assert.Zero(t, got.Summary.Reasons[importer.ReasonDuplicate])

	var n int64
	require.NoError(t, f.db.Model(&library.Video{}).Count(&n).Error)
	assert.Equal(t, int64(got.Summary.Imported), n)
}

func TestService_EmbedRunSharesVideoKeys(t *testing.T) {
	f := setup(t)
	svc := f.service(t)
	ctx := context.Background()

	videos, err := svc.CreateRun(ctx, imports.CreateRunRequest{Kind: imports.KindVideos, DumpPath: f.dump, ArchiveRoot: f.archive, BatchSize: 10})
	require.NoError(t, err)
	_, err = svc.Next(ctx, videos.ID)
	require.NoError(t, err)

	embeds, err := svc.CreateRun(ctx, imports.CreateRunRequest{Kind: imports.KindEmbeds, DumpPath: f.dump, BatchSize: 10})
	require.NoError(t, err)
	step, err := svc.Next(ctx, embeds.ID)
	require.NoError(t, err)
	require.Len(t, step.Results, 3)
	assert.Equal(t, importer.ReasonDuplicate, step.Results[0].Reason)
	assert.Equal(t, importer.StatusImported, step.Results[1].Status)
	assert.Equal(t, importer.ReasonNoAsset, step.Results[2].Reason)
	assert.True(t, step.Done)

	var n int64
	require.NoError(t, f.db.Model(&library.Video{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestService_UserRun(t *testing.T) {
	f := setup(t)
	svc := f.service(t)
	ctx := context.Background()

	run, err := svc.CreateRun(ctx, imports.CreateRunRequest{Kind: imports.KindUsers, DumpPath: f.dump})
	require.NoError(t, err)
	assert.Equal(t, 2, run.Total)

	step, err := svc.Next(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, step.Done)
	assert.Equal(t, 2, step.Run.Summary.Imported)

	var users []library.User
	require.NoError(t, f.db.Order("id").Find(&users).Error)
	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0].Username)
	assert.True(t, users[0].MustResetPassword)
}

func TestService_Report(t *testing.T) {
	f := setup(t)
	svc := f.service(t)
	ctx := context.Background()

	run, err := svc.CreateRun(ctx, imports.CreateRunRequest{Kind: imports.KindVideos, DumpPath: f.dump, ArchiveRoot: f.archive})
	require.NoError(t, err)

	rep, err := svc.Report(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Entities)
	assert.Equal(t, 3, rep.Remaining)
	require.NotNil(t, rep.Assets)
	assert.Equal(t, 1, rep.Assets.Found)
	assert.Equal(t, 1, rep.Assets.Missing)
	assert.Equal(t, 1, rep.Assets.WithoutPath)
	assert.Equal(t, []string{"2021/05/lost.mp4"}, rep.Assets.MissingPaths)
	assert.Equal(t, "9 B", rep.AssetBytes)

	_, err = svc.Report(ctx, "missing")
	assert.ErrorIs(t, err, imports.ErrRunNotFound)
}
