package library

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"legacy-importer/core/importer"
	"legacy-importer/core/remux"
	"legacy-importer/core/storage"
	"legacy-importer/core/utils"
	"legacy-importer/feature/legacy"

	"go.uber.org/zap"
)

// KindVideo is the source tag kind of imported posts. Both video flows share it,
// so a post imported through one flow is a duplicate for the other.
const KindVideo = "video"

// KindUser is the source tag kind of imported users.
const KindUser = "user"

// videoBase holds what the archive and embed adapters share.
type videoBase struct {
	store  *Store
	terms  *TermCache
	logger *zap.Logger
}

func (b videoBase) SourceID(v legacy.Video) int64 { return v.SourceID }
func (b videoBase) Title(v legacy.Video) string   { return v.Title }
func (b videoBase) Key(v legacy.Video) string     { return importer.SourceTag(KindVideo, v.SourceID) }

func (b videoBase) Exists(ctx context.Context, key string) (bool, error) {
	return b.store.ExistsBy(ctx, &Video{}, "source_tag", key)
}

func (b videoBase) slug(ctx context.Context, v legacy.Video) (string, error) {
	// Non-ASCII post names are stored percent-encoded.
	name := v.Slug
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	base := importer.Slugify(name)
	if base == "" {
		base = importer.Slugify(v.Title)
	}
	if base == "" {
		base = fmt.Sprintf("video-%d", v.SourceID)
	}
	return importer.UniqueSlug(ctx, base, b.store.Taken(&Video{}, "slug"))
}

func (b videoBase) record(v legacy.Video, slug string, assignee int64) *Video {
	rec := &Video{
		UserID:          assignee,
		Title:           videoTitle(v),
		Slug:            slug,
		Description:     v.Description,
		SourceTag:       importer.SourceTag(KindVideo, v.SourceID),
		Status:          StatusPublished,
		DurationSeconds: v.DurationSeconds,
		Views:           v.Views,
		Likes:           v.Likes,
		Dislikes:        v.Dislikes,
	}
	if !v.PublishedAt.IsZero() {
		t := v.PublishedAt
		rec.PublishedAt = &t
	}
	return rec
}

func (b videoBase) create(ctx context.Context, rec *Video, v legacy.Video) error {
	return b.store.CreateVideo(ctx, rec, VideoTerms{Category: v.Category, Tags: v.Tags, Actors: v.Actors}, b.terms)
}

func videoTitle(v legacy.Video) string {
	if t := strings.TrimSpace(v.Title); t != "" {
		return utils.Truncate(t, 255)
	}
	return fmt.Sprintf("Video %d", v.SourceID)
}

// thumbnailExists reports whether the thumbnail of v is on archive. A lookup
// failure is logged and counts as missing.
func (b videoBase) thumbnailExists(ctx context.Context, archive storage.Disk, v legacy.Video) bool {
	ok, err := archive.Exists(ctx, *v.ThumbnailPath)
	if err != nil {
		b.logger.Warn("Thumbnail lookup failed",
			zap.Int64("source_id", v.SourceID),
			zap.String("path", *v.ThumbnailPath),
			zap.Error(err),
		)
		return false
	}
	return ok
}

// ArchiveAdapter imports videos whose media file lives in the legacy uploads
// archive. Files are copied into a per-video directory on the destination disk.
type ArchiveAdapter struct {
	videoBase
	archive storage.Disk
	dest    storage.Disk
	dir     string
	remux   remux.Runner
}

// ArchiveOptions configures an ArchiveAdapter.
type ArchiveOptions struct {
	// Dir is the destination directory holding per-video folders.
	Dir string
	// Remux, when set, remuxes supported containers before upload.
	Remux remux.Runner
	// Terms is the run's term cache. Nil disables caching.
	Terms  *TermCache
	Logger *zap.Logger
}

// NewArchiveAdapter creates an archive adapter.
func NewArchiveAdapter(store *Store, archive, dest storage.Disk, opts ArchiveOptions) *ArchiveAdapter {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := opts.Dir
	if dir == "" {
		dir = "videos"
	}
	return &ArchiveAdapter{
		videoBase: videoBase{store: store, terms: opts.Terms, logger: logger},
		archive:   archive,
		dest:      dest,
		dir:       dir,
		remux:     opts.Remux,
	}
}

func (a *ArchiveAdapter) Name() string { return "videos" }

// HasAsset reports whether the primary media file exists in the archive.
func (a *ArchiveAdapter) HasAsset(ctx context.Context, v legacy.Video) (bool, error) {
	if v.FilePath == nil {
		return false, nil
	}
	return a.archive.Exists(ctx, *v.FilePath)
}

// Import copies the assets and creates the record. Copied files are removed
// again when the record cannot be created.
func (a *ArchiveAdapter) Import(ctx context.Context, v legacy.Video, assignee int64) (string, error) {
	slug, err := a.slug(ctx, v)
	if err != nil {
		return "", err
	}

	dir := path.Join(a.dir, slug)
	if err := a.dest.MakeDirectory(ctx, dir); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	var written []string
	cleanup := func() {
		for _, p := range written {
			if err := a.dest.Delete(context.WithoutCancel(ctx), p); err != nil {
				a.logger.Warn("Failed to remove copied file", zap.String("path", p), zap.Error(err))
			}
		}
	}

	rec := a.record(v, slug, assignee)

	primary := path.Join(dir, "video"+strings.ToLower(path.Ext(*v.FilePath)))
	size, remuxed, err := a.copyPrimary(ctx, *v.FilePath, primary)
	if err != nil {
		cleanup()
		return "", err
	}
	written = append(written, primary)
	rec.FilePath = &primary
	rec.FileSize = size
	rec.Remuxed = remuxed

	if v.ThumbnailPath != nil {
		thumb := path.Join(dir, "thumbnail"+strings.ToLower(path.Ext(*v.ThumbnailPath)))
		if a.thumbnailExists(ctx, a.archive, v) {
			if _, err := storage.Copy(ctx, a.archive, *v.ThumbnailPath, a.dest, thumb); err != nil {
				a.logger.Warn("Thumbnail copy failed", zap.Int64("source_id", v.SourceID), zap.Error(err))
			} else {
				written = append(written, thumb)
				rec.ThumbnailPath = &thumb
			}
		}
	} else if v.ThumbnailURL != nil {
		rec.ThumbnailURL = v.ThumbnailURL
	}

	if err := a.create(ctx, rec, v); err != nil {
		cleanup()
		return "", err
	}
	return slug, nil
}

// copyPrimary uploads the media file, remuxed when possible.
func (a *ArchiveAdapter) copyPrimary(ctx context.Context, src, dst string) (int64, bool, error) {
	if a.remux != nil && remux.Supported(src) {
		if lp, ok := a.archive.(storage.LocalPather); ok {
			if local, ok := lp.LocalPath(src); ok {
				var size int64
				remuxed, err := remux.WithRemuxed(ctx, a.remux, local, a.logger, func(out string) error {
					return a.upload(ctx, out, dst, &size)
				})
				if err != nil {
					return 0, false, err
				}
				if remuxed {
					return size, true, nil
				}
			}
		}
	}

	size, err := storage.Copy(ctx, a.archive, src, a.dest, dst)
	if err != nil {
		return 0, false, err
	}
	return size, false, nil
}

func (a *ArchiveAdapter) upload(ctx context.Context, local, dst string, size *int64) error {
	f, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("failed to open remuxed file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat remuxed file: %w", err)
	}
	if err := a.dest.Put(ctx, dst, f, info.Size()); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	*size = info.Size()
	return nil
}

// EmbedAdapter imports videos played from an embedded player or a remote URL.
// It copies no media; a local thumbnail is copied when an archive is given.
type EmbedAdapter struct {
	videoBase
	archive storage.Disk
	dest    storage.Disk
	dir     string
}

// NewEmbedAdapter creates an embed adapter. archive and dest may be nil.
func NewEmbedAdapter(store *Store, archive, dest storage.Disk, dir string, terms *TermCache, logger *zap.Logger) *EmbedAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		dir = "videos"
	}
	return &EmbedAdapter{
		videoBase: videoBase{store: store, terms: terms, logger: logger},
		archive:   archive,
		dest:      dest,
		dir:       dir,
	}
}

func (a *EmbedAdapter) Name() string { return "embeds" }

// HasAsset reports whether the video has a player or remote URL.
func (a *EmbedAdapter) HasAsset(_ context.Context, v legacy.Video) (bool, error) {
	return v.EmbedURL != nil || v.RemoteURL != nil, nil
}

// Import creates the record.
func (a *EmbedAdapter) Import(ctx context.Context, v legacy.Video, assignee int64) (string, error) {
	slug, err := a.slug(ctx, v)
	if err != nil {
		return "", err
	}

	rec := a.record(v, slug, assignee)
	rec.EmbedURL = v.EmbedURL
	rec.RemoteURL = v.RemoteURL
	rec.ThumbnailURL = v.ThumbnailURL

	var thumb string
	if v.ThumbnailPath != nil && a.archive != nil && a.dest != nil {
		if a.thumbnailExists(ctx, a.archive, v) {
			thumb = path.Join(a.dir, slug, "thumbnail"+strings.ToLower(path.Ext(*v.ThumbnailPath)))
			if _, err := storage.Copy(ctx, a.archive, *v.ThumbnailPath, a.dest, thumb); err != nil {
				a.logger.Warn("Thumbnail copy failed", zap.Int64("source_id", v.SourceID), zap.Error(err))
				thumb = ""
			} else {
				rec.ThumbnailPath = &thumb
			}
		}
	}

	if err := a.create(ctx, rec, v); err != nil {
		if thumb != "" {
			_ = a.dest.Delete(context.WithoutCancel(ctx), thumb)
		}
		return "", err
	}
	return slug, nil
}

// MemberAdapter imports legacy users. The idempotency key is the lower-cased email.
type MemberAdapter struct {
	store  *Store
	logger *zap.Logger
}

// NewMemberAdapter creates a member adapter.
func NewMemberAdapter(store *Store, logger *zap.Logger) *MemberAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberAdapter{store: store, logger: logger}
}

func (a *MemberAdapter) Name() string                   { return "users" }
func (a *MemberAdapter) SourceID(m legacy.Member) int64 { return m.SourceID }
func (a *MemberAdapter) Title(m legacy.Member) string   { return m.Email }
func (a *MemberAdapter) Key(m legacy.Member) string     { return strings.ToLower(strings.TrimSpace(m.Email)) }

func (a *MemberAdapter) Exists(ctx context.Context, key string) (bool, error) {
	return a.store.ExistsBy(ctx, &User{}, "email", key)
}

// HasAsset is always true: users carry no files.
func (a *MemberAdapter) HasAsset(context.Context, legacy.Member) (bool, error) {
	return true, nil
}

// Import creates the user under a collision-free username.
func (a *MemberAdapter) Import(ctx context.Context, m legacy.Member, assignee int64) (string, error) {
	base := importer.Slugify(m.Login)
	if base == "" {
		local, _, _ := strings.Cut(m.Email, "@")
		base = importer.Slugify(local)
	}
	if base == "" {
		base = fmt.Sprintf("user-%d", m.SourceID)
	}
	username, err := importer.UniqueSlug(ctx, utils.Truncate(base, 60), a.store.Taken(&User{}, "username"))
	if err != nil {
		return "", err
	}

	u := &User{
		Username:           username,
		Email:              a.Key(m),
		DisplayName:        utils.Truncate(m.DisplayName, 255),
		FirstName:          utils.Truncate(m.FirstName, 255),
		LastName:           utils.Truncate(m.LastName, 255),
		Website:            utils.Truncate(m.Website, 255),
		Bio:                m.Bio,
		LegacyPasswordHash: m.PasswordHash,
		MustResetPassword:  true,
		SourceTag:          importer.SourceTag(KindUser, m.SourceID),
		ImportedBy:         &assignee,
	}
	if !m.RegisteredAt.IsZero() {
		t := m.RegisteredAt
		u.RegisteredAt = &t
	}
	if u.DisplayName == "" {
		u.DisplayName = username
	}

	if err := a.store.CreateMember(ctx, u); err != nil {
		return "", err
	}
	if username != base {
		a.logger.Debug("Username taken, renamed", zap.String("login", m.Login), zap.String("username", username))
	}
	return username, nil
}
