package legacy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjection_Videos(t *testing.T) {
	idx := loadSite(t, VideoTables)
	videos := DefaultProjection().Videos(idx)

	require.Len(t, videos, 2)
	assert.Equal(t, int64(10), videos[0].SourceID)
	assert.Equal(t, int64(12), videos[1].SourceID)

	v := videos[0]
	assert.Equal(t, "First Clip", v.Title)
	assert.Equal(t, "first-clip", v.Slug)
	assert.Equal(t, "First clip", v.Description)
	assert.Equal(t, time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), v.PublishedAt)
	require.NotNil(t, v.FilePath)
	assert.Equal(t, "2020/01/first clip.mp4", *v.FilePath)
	require.NotNil(t, v.ThumbnailPath)
	assert.Equal(t, "2020/03/thumb.jpg", *v.ThumbnailPath)
	assert.Nil(t, v.EmbedURL)
	assert.Equal(t, 3723, v.DurationSeconds)
	assert.Equal(t, int64(1234), v.Views)
	assert.Equal(t, "Music", v.Category)
	assert.Equal(t, []string{"Live", "Studio"}, v.Tags)
	assert.Equal(t, []string{"Jane Doe"}, v.Actors)

	e := videos[1]
	assert.Nil(t, e.FilePath)
	require.NotNil(t, e.EmbedURL)
	assert.Equal(t, "https://player.example/e/abc", *e.EmbedURL)
	assert.Zero(t, e.DurationSeconds)
	assert.Equal(t, int64(7), e.Likes)
	assert.Empty(t, e.Category)
	assert.Nil(t, e.Tags)
}

func TestProjection_StableOrder(t *testing.T) {
	proj := DefaultProjection()
	first := proj.Videos(loadSite(t, VideoTables))
	second := proj.Videos(loadSite(t, VideoTables))
	assert.Equal(t, first, second)
}

func TestProjection_Filter(t *testing.T) {
	proj := DefaultProjection()
	proj.Filter = Filter{PostType: "post", Status: "draft"}

	videos := proj.Videos(loadSite(t, VideoTables))
	require.Len(t, videos, 1)
	assert.Equal(t, "Draft Clip", videos[0].Title)
	assert.Equal(t, "draft excerpt", videos[0].Description, "excerpt fills an empty content")
}

func TestProjection_MissingMetaDefaults(t *testing.T) {
	idx := NewIndex(nil, nil)
	idx.UpsertPost(PostRecord{ID: 1, Type: "post", Status: "publish", Title: "Bare"})

	videos := DefaultProjection().Videos(idx)
	require.Len(t, videos, 1)
	v := videos[0]
	assert.Nil(t, v.FilePath)
	assert.Nil(t, v.ThumbnailPath)
	assert.Nil(t, v.EmbedURL)
	assert.Nil(t, v.RemoteURL)
	assert.Zero(t, v.DurationSeconds)
	assert.Zero(t, v.Views)
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, int64(1234), parseCount(" 1,234 "))
	assert.Equal(t, int64(7), parseCount("7"))
	assert.Zero(t, parseCount("n/a"))
	assert.Zero(t, parseCount("-5"))
	assert.Zero(t, parseCount("99999999999999999999"), "out of range")
}

func TestProjection_RemoteAndThumbURL(t *testing.T) {
	proj := DefaultProjection()
	idx := NewIndex(proj.MetaKeys(), nil)
	idx.UpsertPost(PostRecord{ID: 1, Type: "post", Status: "publish"})
	idx.PutMeta(1, "video_url", "https://cdn.example/v/1.mp4")
	idx.PutMeta(1, "thumb", "https://cdn.example/t/1.jpg")
	idx.PutMeta(1, "embed", `<iframe width="560" src='https://player.example/e/1'></iframe>`)

	v := proj.Videos(idx)[0]
	assert.Nil(t, v.FilePath)
	require.NotNil(t, v.RemoteURL)
	assert.Equal(t, "https://cdn.example/v/1.mp4", *v.RemoteURL)
	require.NotNil(t, v.ThumbnailURL)
	assert.Equal(t, "https://cdn.example/t/1.jpg", *v.ThumbnailURL)
	require.NotNil(t, v.EmbedURL)
	assert.Equal(t, "https://player.example/e/1", *v.EmbedURL)
}

func TestProjection_Members(t *testing.T) {
	members := DefaultProjection().Members(loadSite(t, UserTables))

	require.Len(t, members, 1, "users without an email are skipped")
	m := members[0]
	assert.Equal(t, int64(1), m.SourceID)
	assert.Equal(t, "admin@example.com", m.Email)
	assert.Equal(t, "admin", m.Login)
	assert.Equal(t, "Site Admin", m.DisplayName)
	assert.Equal(t, "Ada", m.FirstName)
	assert.Empty(t, m.LastName)
	assert.Equal(t, "$P$Bhash", m.PasswordHash)
}

func TestProjection_MetaKeys(t *testing.T) {
	keys := DefaultProjection().MetaKeys()
	assert.Contains(t, keys, "video_url")
	assert.Contains(t, keys, MetaThumbnailID)
	assert.Contains(t, keys, MetaAttachedFile)
	assert.NotContains(t, keys, "")
}
