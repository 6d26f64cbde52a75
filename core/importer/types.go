package importer

import (
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// ErrNoAssignee is returned before any entity is processed when a run has no
// importing user configured.
var ErrNoAssignee = errors.New("no assignee configured for import")

// Status is the terminal state of one attempted entity.
type Status string

const (
	// StatusImported means a destination record was created.
	StatusImported Status = "imported"
	// StatusSkipped means the entity was left alone; Reason says why.
	StatusSkipped Status = "skipped"
	// StatusError means the import was attempted and failed.
	StatusError Status = "error"
	// StatusPlanned means the entity passed validation during a dry run.
	StatusPlanned Status = "planned"
)

// Skip and error reasons.
const (
	ReasonNoAssignee = "no-assignee"
	ReasonDuplicate  = "duplicate"
	ReasonNoAsset    = "no-asset"
	ReasonLookup     = "lookup-failed"
	ReasonFailed     = "import-failed"
	ReasonDryRun     = "dry-run"
)

// DefaultMaxErrorDetails bounds Summary.ErrorDetails when Options leaves it unset.
const DefaultMaxErrorDetails = 100

// SourceTag returns the idempotency key stored on records created from a legacy
// source row, e.g. "legacy:video:42".
func SourceTag(kind string, id int64) string {
	return "legacy:" + kind + ":" + strconv.FormatInt(id, 10)
}

// Result is the outcome of one attempted entity.
type Result struct {
	// SourceID is the legacy primary key of the entity.
	SourceID int64 `json:"source_id"`

	// Title is a human label used in reports.
	Title string `json:"title"`

	// Key is the idempotency key the entity was checked against.
	Key string `json:"key"`

	// Status is the terminal state.
	Status Status `json:"status"`

	// Reason classifies skips and errors.
	Reason string `json:"reason,omitempty"`

	// Message carries the created reference on success or the underlying error text.
	Message string `json:"message,omitempty"`
}

// ErrorDetail is kept for operator triage of failed entities.
type ErrorDetail struct {
	SourceID int64  `json:"source_id"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

// Summary aggregates results of a run.
type Summary struct {
	Total    int `json:"total"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
	Planned  int `json:"planned"`

	// Reasons counts skips and errors by reason.
	Reasons map[string]int `json:"reasons"`

	// ErrorDetails holds the most recent failures, at most MaxErrorDetails.
	ErrorDetails []ErrorDetail `json:"error_details"`

	// MaxErrorDetails caps ErrorDetails. Zero means DefaultMaxErrorDetails.
	MaxErrorDetails int `json:"max_error_details"`
}

// Add records r in the summary.
func (s *Summary) Add(r Result) {
	s.Total++
	switch r.Status {
	case StatusImported:
		s.Imported++
	case StatusSkipped:
		s.Skipped++
	case StatusPlanned:
		s.Planned++
	case StatusError:
		s.Errors++
		s.pushError(ErrorDetail{SourceID: r.SourceID, Title: r.Title, Message: r.Message})
	}
	if r.Reason != "" && r.Reason != ReasonDryRun {
		if s.Reasons == nil {
			s.Reasons = make(map[string]int)
		}
		s.Reasons[r.Reason]++
	}
}

// Merge folds o into s. Error details of o are appended after those of s and the
// cap of s is applied.
func (s *Summary) Merge(o Summary) {
	s.Total += o.Total
	s.Imported += o.Imported
	s.Skipped += o.Skipped
	s.Errors += o.Errors
	s.Planned += o.Planned
	for k, v := range o.Reasons {
		if s.Reasons == nil {
			s.Reasons = make(map[string]int)
		}
		s.Reasons[k] += v
	}
	for _, d := range o.ErrorDetails {
		s.pushError(d)
	}
}

func (s *Summary) pushError(d ErrorDetail) {
	limit := s.MaxErrorDetails
	if limit <= 0 {
		limit = DefaultMaxErrorDetails
	}
	s.ErrorDetails = append(s.ErrorDetails, d)
	if over := len(s.ErrorDetails) - limit; over > 0 {
		s.ErrorDetails = append(s.ErrorDetails[:0], s.ErrorDetails[over:]...)
	}
}

// Options controls an Executor.
type Options struct {
	// Assignee is the destination user id records are attributed to. Required.
	Assignee int64

	// BatchSize is the number of entities per batch. Zero or less means one batch.
	BatchSize int

	// BatchDelay is slept between batches.
	BatchDelay time.Duration

	// MaxErrorDetails caps the error detail list of summaries.
	MaxErrorDetails int

	// DryRun runs the validation steps only and never calls Import.
	DryRun bool

	// Logger receives per-entity diagnostics. Nil disables logging.
	Logger *zap.Logger
}
