package imports

import (
	"time"

	"legacy-importer/core/importer"
	"legacy-importer/feature/legacy"
)

// Run kinds.
const (
	KindVideos = "videos"
	KindEmbeds = "embeds"
	KindUsers  = "users"
)

// Run states.
const (
	RunPending = "pending"
	RunRunning = "running"
	RunDone    = "done"
)

// Run is the persisted bookkeeping of a step-driven import. It survives process
// restarts so an external poller can resume where it left off.
type Run struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Kind        string `gorm:"size:16;not null" json:"kind"`
	DumpPath    string `gorm:"size:1024;not null" json:"dump_path"`
	ArchiveRoot string `gorm:"size:1024" json:"archive_root"`
	Prefix      string `gorm:"size:64" json:"prefix"`
	AssigneeID  int64  `gorm:"not null" json:"assignee_id"`
	BatchSize   int    `gorm:"not null" json:"batch_size"`

	Status string `gorm:"size:16;not null;index" json:"status"`
	Cursor int    `gorm:"not null;default:0" json:"cursor"`
	Total  int    `gorm:"not null;default:0" json:"total"`

	Summary  importer.Summary `gorm:"serializer:json;type:text" json:"summary"`
	Revision int              `gorm:"not null;default:0" json:"revision"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

// TableName overrides the table name.
func (Run) TableName() string {
	return "import_runs"
}

func (r Run) withCursor(cursor int) *Run {
	r.Cursor = cursor
	return &r
}

// CreateRunRequest starts a run.
type CreateRunRequest struct {
	// Kind is one of videos, embeds, users.
	Kind string `json:"kind" example:"videos"`
	// DumpPath is the SQL dump on the server's filesystem.
	DumpPath string `json:"dump_path" example:"/data/legacy.sql.gz"`
	// ArchiveRoot overrides the configured uploads directory.
	ArchiveRoot string `json:"archive_root,omitempty" example:"/data/uploads"`
	// Prefix overrides the configured table prefix.
	Prefix string `json:"prefix,omitempty" example:"wp_"`
	// AssigneeID overrides the configured assignee.
	AssigneeID int64 `json:"assignee_id,omitempty" example:"1"`
	// BatchSize overrides the configured number of entities per step.
	BatchSize int `json:"batch_size,omitempty" example:"25"`
}

// StepResponse is returned by the "process next" endpoint.
type StepResponse struct {
	Run     *Run              `json:"run"`
	Results []importer.Result `json:"results"`
	Done    bool              `json:"done"`
}

// ReportResponse is a dry-run view of a run.
type ReportResponse struct {
	Run *Run `json:"run"`
	// Entities is the number of projected entities.
	Entities int `json:"entities"`
	// Assets is the archive resolution report; only set for video runs with an archive.
	Assets *legacy.ResolveReport `json:"assets,omitempty"`
	// AssetBytes is Assets.TotalBytes in human form.
	AssetBytes string `json:"asset_bytes,omitempty"`
	// Remaining is the number of entities after the cursor.
	Remaining int `json:"remaining"`
}
