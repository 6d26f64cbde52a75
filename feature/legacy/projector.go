package legacy

import (
	"strings"

	"legacy-importer/core/utils"
)

// Filter selects posts by exact type and status.
type Filter struct {
	PostType string
	Status   string
}

// Projection describes how posts and users of the legacy schema map onto
// importable entities. The zero value is not useful; start from DefaultProjection.
type Projection struct {
	Filter Filter

	CategoryTaxonomy string
	TagTaxonomy      string
	ActorTaxonomy    string

	// VideoKeys are checked in order for the primary video resource.
	VideoKeys    []string
	EmbedKey     string
	ThumbnailKey string
	DurationKey  string
	ViewsKey     string
	LikesKey     string
	DislikesKey  string

	// PathSegments mark where the archive-relative part of an asset URL begins.
	PathSegments []string

	// UserMetaKeys are the user meta keys read for members.
	FirstNameKey string
	LastNameKey  string
	BioKey       string
}

// DefaultProjection returns the mapping used by the video theme the legacy
// platform ran on.
func DefaultProjection() Projection {
	return Projection{
		Filter:           Filter{PostType: "post", Status: "publish"},
		CategoryTaxonomy: "category",
		TagTaxonomy:      "post_tag",
		ActorTaxonomy:    "actors",
		VideoKeys:        []string{"video_url", "video_file"},
		EmbedKey:         "embed",
		ThumbnailKey:     "thumb",
		DurationKey:      "duration",
		ViewsKey:         "post_views_count",
		LikesKey:         "likes_count",
		DislikesKey:      "dislikes_count",
		PathSegments:     DefaultPathSegments,
		FirstNameKey:     "first_name",
		LastNameKey:      "last_name",
		BioKey:           "description",
	}
}

// MetaKeys is the post meta allow-list the projection reads. Pass it to Load so the
// index never holds anything else.
func (p Projection) MetaKeys() []string {
	keys := append([]string{}, p.VideoKeys...)
	for _, k := range []string{p.EmbedKey, p.ThumbnailKey, p.DurationKey, p.ViewsKey, p.LikesKey, p.DislikesKey, MetaThumbnailID, MetaAttachedFile} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// UserMetaKeys is the user meta allow-list the projection reads.
func (p Projection) UserMetaKeys() []string {
	var keys []string
	for _, k := range []string{p.FirstNameKey, p.LastNameKey, p.BioKey} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Videos projects every post matching the filter, in index insertion order.
// Missing optional meta silently falls back to zero values.
func (p Projection) Videos(idx *Index) []Video {
	var out []Video
	for _, post := range idx.Posts() {
		if post.Type != p.Filter.PostType || post.Status != p.Filter.Status {
			continue
		}
		out = append(out, p.video(idx, post))
	}
	return out
}

func (p Projection) video(idx *Index, post PostRecord) Video {
	meta := idx.Meta(post.ID)

	v := Video{
		SourceID:        post.ID,
		Title:           strings.TrimSpace(post.Title),
		Slug:            post.Name,
		Description:     strings.TrimSpace(post.Content),
		PublishedAt:     post.Date,
		DurationSeconds: ParseDuration(meta[p.DurationKey]),
		Views:           parseCount(meta[p.ViewsKey]),
		Likes:           parseCount(meta[p.LikesKey]),
		Dislikes:        parseCount(meta[p.DislikesKey]),
		Tags:            termNames(idx.TermsFor(post.ID, p.TagTaxonomy)),
		Actors:          termNames(idx.TermsFor(post.ID, p.ActorTaxonomy)),
	}
	if v.Description == "" {
		v.Description = strings.TrimSpace(post.Excerpt)
	}
	if cats := idx.TermsFor(post.ID, p.CategoryTaxonomy); len(cats) > 0 {
		v.Category = cats[0].Name
	}

	for _, key := range p.VideoKeys {
		raw, ok := meta[key]
		if !ok {
			continue
		}
		if rel, ok := localPath(raw, p.PathSegments); ok {
			v.FilePath = &rel
			break
		}
		if u, ok := remoteURL(raw); ok && v.RemoteURL == nil {
			v.RemoteURL = &u
		}
	}

	if raw, ok := meta[p.EmbedKey]; ok {
		if u, ok := embedURL(raw); ok {
			v.EmbedURL = &u
		}
	}
	if v.EmbedURL == nil && v.FilePath == nil && v.RemoteURL == nil {
		if strings.Contains(post.Content, "<iframe") {
			if u, ok := embedURL(post.Content); ok {
				v.EmbedURL = &u
			}
		}
	}

	if raw, ok := meta[p.ThumbnailKey]; ok {
		if rel, ok := localPath(raw, p.PathSegments); ok {
			v.ThumbnailPath = &rel
		} else if u, ok := remoteURL(raw); ok {
			v.ThumbnailURL = &u
		}
	}
	if v.ThumbnailPath == nil {
		if id := parseCount(meta[MetaThumbnailID]); id > 0 {
			if rel, ok := idx.AttachmentPath(id); ok {
				v.ThumbnailPath = &rel
			}
		}
	}

	return v
}

// Members projects every user with an email address, in index insertion order.
func (p Projection) Members(idx *Index) []Member {
	var out []Member
	for _, u := range idx.Users() {
		email := strings.ToLower(strings.TrimSpace(u.Email))
		if email == "" {
			continue
		}
		m := Member{
			SourceID:     u.ID,
			Login:        strings.TrimSpace(u.Login),
			Email:        email,
			DisplayName:  strings.TrimSpace(u.DisplayName),
			Website:      strings.TrimSpace(u.URL),
			PasswordHash: u.PasswordHash,
			RegisteredAt: u.Registered,
		}
		m.FirstName, _ = idx.UserMetaValue(u.ID, p.FirstNameKey)
		m.LastName, _ = idx.UserMetaValue(u.ID, p.LastNameKey)
		m.Bio, _ = idx.UserMetaValue(u.ID, p.BioKey)
		if m.DisplayName == "" {
			m.DisplayName = m.Login
		}
		out = append(out, m)
	}
	return out
}

func termNames(terms []TermRecord) []string {
	if len(terms) == 0 {
		return nil
	}
	names := make([]string, 0, len(terms))
	for _, t := range terms {
		if name := strings.TrimSpace(t.Name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// parseCount reads a counter meta value. Some themes store "1,234". Anything that
// is not a non-negative int64 counts as 0.
func parseCount(s string) int64 {
	return max(utils.ParseInt64(strings.ReplaceAll(s, ",", "")), 0)
}
