package library

import (
	"time"

	"gorm.io/gorm"
)

// Video statuses.
const (
	StatusPublished = "published"
)

// Term is the shared shape of categories, tags and actors.
type Term struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:191;not null" json:"name"`
	Slug       string    `gorm:"size:191;not null;uniqueIndex" json:"slug"`
	UsageCount int64     `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Category groups videos. A video has at most one.
type Category struct {
	Term
}

// Tag is a free-form video label.
type Tag struct {
	Term
}

// Actor is a person appearing in a video.
type Actor struct {
	Term
}

// Video is a destination video record.
type Video struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      int64  `gorm:"index;not null" json:"user_id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Slug        string `gorm:"size:191;not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	// SourceTag is the idempotency key of the legacy row this record came from.
	SourceTag string `gorm:"size:64;uniqueIndex" json:"source_tag"`
	Status    string `gorm:"size:32;not null;default:published" json:"status"`

	FilePath      *string `gorm:"size:512" json:"file_path"`
	ThumbnailPath *string `gorm:"size:512" json:"thumbnail_path"`
	EmbedURL      *string `gorm:"type:text" json:"embed_url"`
	RemoteURL     *string `gorm:"type:text" json:"remote_url"`
	ThumbnailURL  *string `gorm:"type:text" json:"thumbnail_url"`
	FileSize      int64   `json:"file_size"`
	Remuxed       bool    `json:"remuxed"`

	DurationSeconds int   `json:"duration_seconds"`
	Views           int64 `json:"views"`
	Likes           int64 `json:"likes"`
	Dislikes        int64 `json:"dislikes"`

	CategoryID *uint     `gorm:"index" json:"category_id"`
	Category   *Category `json:"category,omitempty"`
	Tags       []Tag     `gorm:"many2many:video_tags" json:"tags,omitempty"`
	Actors     []Actor   `gorm:"many2many:video_actors" json:"actors,omitempty"`

	PublishedAt *time.Time     `json:"published_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// User is a destination account.
type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Username    string `gorm:"size:191;not null;uniqueIndex" json:"username"`
	Email       string `gorm:"size:191;not null;uniqueIndex" json:"email"`
	DisplayName string `gorm:"size:255" json:"display_name"`
	FirstName   string `gorm:"size:255" json:"first_name"`
	LastName    string `gorm:"size:255" json:"last_name"`
	Website     string `gorm:"size:255" json:"website"`
	Bio         string `gorm:"type:text" json:"bio"`

	// LegacyPasswordHash keeps the old platform's hash so a login can be migrated later.
	LegacyPasswordHash string `gorm:"size:255" json:"-"`
	MustResetPassword  bool   `gorm:"not null;default:false" json:"must_reset_password"`
	SourceTag          string `gorm:"size:64;index" json:"source_tag"`
	ImportedBy         *int64 `json:"imported_by"`

	RegisteredAt *time.Time     `json:"registered_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Models lists every table the library owns, in migration order.
func Models() []any {
	return []any{&Category{}, &Tag{}, &Actor{}, &User{}, &Video{}}
}
