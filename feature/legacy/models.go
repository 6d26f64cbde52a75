package legacy

import "time"

// PostRecord is one row of the posts table.
type PostRecord struct {
	ID       int64
	Author   int64
	Date     time.Time
	Content  string
	Title    string
	Excerpt  string
	Status   string
	Name     string
	Modified time.Time
	Parent   int64
	GUID     string
	Type     string
	MimeType string
}

// TermRecord is one row of the terms table.
type TermRecord struct {
	ID   int64
	Name string
	Slug string
}

// TermTaxonomyRecord binds a term to a taxonomy (category, post_tag, ...).
type TermTaxonomyRecord struct {
	ID       int64
	TermID   int64
	Taxonomy string
	Parent   int64
}

// UserRecord is one row of the users table.
type UserRecord struct {
	ID           int64
	Login        string
	PasswordHash string
	Nicename     string
	Email        string
	URL          string
	Registered   time.Time
	DisplayName  string
}

// Video is a post projected into an importable entity. It is built once by the
// projector and never modified afterwards; its slices are owned by the value.
type Video struct {
	SourceID    int64
	Title       string
	Slug        string
	Description string
	PublishedAt time.Time

	// FilePath is the primary asset relative to the archive root, if local.
	FilePath *string
	// ThumbnailPath is the thumbnail relative to the archive root, if local.
	ThumbnailPath *string
	// EmbedURL is the player URL of an embedded video.
	EmbedURL *string
	// RemoteURL is a direct http(s) link to a video hosted elsewhere.
	RemoteURL *string
	// ThumbnailURL is a thumbnail hosted elsewhere.
	ThumbnailURL *string

	DurationSeconds int
	Views           int64
	Likes           int64
	Dislikes        int64

	Category string
	Tags     []string
	Actors   []string
}

// Member is a user projected into an importable entity.
type Member struct {
	SourceID     int64
	Login        string
	Email        string
	DisplayName  string
	FirstName    string
	LastName     string
	Website      string
	Bio          string
	PasswordHash string
	RegisteredAt time.Time
}
