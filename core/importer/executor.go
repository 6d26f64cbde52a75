package importer

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Executor runs an Adapter over projected entities. It holds no state between
// calls; every call is safe to repeat because of the duplicate check.
type Executor[T any] struct {
	adapter Adapter[T]
	opts    Options
	logger  *zap.Logger
}

// NewExecutor creates an executor for adapter.
func NewExecutor[T any](adapter Adapter[T], opts Options) *Executor[T] {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor[T]{
		adapter: adapter,
		opts:    opts,
		logger:  logger.With(zap.String("adapter", adapter.Name())),
	}
}

// Execute processes a single entity and never returns an error: every failure
// becomes part of the Result.
func (e *Executor[T]) Execute(ctx context.Context, entity T) Result {
	a := e.adapter
	res := Result{
		SourceID: a.SourceID(entity),
		Title:    a.Title(entity),
		Key:      a.Key(entity),
	}

	if e.opts.Assignee <= 0 {
		return e.fail(res, ReasonNoAssignee, ErrNoAssignee)
	}

	exists, err := a.Exists(ctx, res.Key)
	if err != nil {
		return e.fail(res, ReasonLookup, err)
	}
	if exists {
		res.Status = StatusSkipped
		res.Reason = ReasonDuplicate
		return res
	}

	ok, err := a.HasAsset(ctx, entity)
	if err != nil {
		return e.fail(res, ReasonLookup, err)
	}
	if !ok {
		res.Status = StatusSkipped
		res.Reason = ReasonNoAsset
		e.logger.Debug("Asset not found", zap.Int64("source_id", res.SourceID), zap.String("title", res.Title))
		return res
	}

	if e.opts.DryRun {
		res.Status = StatusPlanned
		res.Reason = ReasonDryRun
		return res
	}

	ref, err := a.Import(ctx, entity, e.opts.Assignee)
	if err != nil {
		return e.fail(res, ReasonFailed, err)
	}
	res.Status = StatusImported
	res.Message = ref
	e.logger.Info("Imported", zap.Int64("source_id", res.SourceID), zap.String("ref", ref))
	return res
}

func (e *Executor[T]) fail(res Result, reason string, err error) Result {
	res.Status = StatusError
	res.Reason = reason
	res.Message = err.Error()
	e.logger.Warn("Import failed",
		zap.Int64("source_id", res.SourceID),
		zap.String("title", res.Title),
		zap.String("reason", reason),
		zap.Error(err),
	)
	return res
}

// RunBatch processes entities in batches of Options.BatchSize, sleeping
// Options.BatchDelay between batches. onResult, if not nil, is called after each
// entity. A missing assignee aborts before any entity is touched. Cancellation
// stops the run between entities and returns the partial summary with ctx.Err().
func (e *Executor[T]) RunBatch(ctx context.Context, entities []T, onResult func(Result)) (Summary, error) {
	summary := Summary{MaxErrorDetails: e.opts.MaxErrorDetails}
	if e.opts.Assignee <= 0 {
		return summary, ErrNoAssignee
	}

	size := e.opts.BatchSize
	if size <= 0 {
		size = len(entities)
	}

	for start := 0; start < len(entities); start += size {
		if start > 0 && e.opts.BatchDelay > 0 {
			if err := sleep(ctx, e.opts.BatchDelay); err != nil {
				return summary, err
			}
		}

		end := min(start+size, len(entities))
		for _, entity := range entities[start:end] {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			res := e.Execute(ctx, entity)
			summary.Add(res)
			if onResult != nil {
				onResult(res)
			}
		}

		e.logger.Info("Batch done",
			zap.Int("processed", end),
			zap.Int("total", len(entities)),
			zap.Int("imported", summary.Imported),
			zap.Int("skipped", summary.Skipped),
			zap.Int("errors", summary.Errors),
		)
	}
	return summary, nil
}

// StepResult is the outcome of one Step call.
type StepResult struct {
	// Results holds one entry per processed entity, in order.
	Results []Result `json:"results"`

	// Summary aggregates Results only.
	Summary Summary `json:"summary"`

	// Next is the cursor to pass to the following call.
	Next int `json:"next"`

	// Done is true when no entities remain after Next.
	Done bool `json:"done"`
}

// Step processes at most Options.BatchSize entities starting at cursor (at least
// one). It is meant to be driven by an external poller that persists Next between
// calls. A cursor past the end returns an empty, done result.
func (e *Executor[T]) Step(ctx context.Context, entities []T, cursor int) (StepResult, error) {
	if e.opts.Assignee <= 0 {
		return StepResult{Next: cursor}, ErrNoAssignee
	}
	if cursor < 0 {
		cursor = 0
	}

	step := StepResult{Summary: Summary{MaxErrorDetails: e.opts.MaxErrorDetails}, Next: cursor}
	if cursor >= len(entities) {
		step.Next = len(entities)
		step.Done = true
		return step, nil
	}

	size := max(e.opts.BatchSize, 1)
	end := min(cursor+size, len(entities))
	for _, entity := range entities[cursor:end] {
		if err := ctx.Err(); err != nil {
			return step, err
		}
		res := e.Execute(ctx, entity)
		step.Results = append(step.Results, res)
		step.Summary.Add(res)
		step.Next++
	}
	step.Done = step.Next >= len(entities)
	return step, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
