// Package importer provides the generic, idempotent import engine shared by the
// video, embed and user flows.
//
// An Executor drives an Adapter over a list of projected entities. For every
// entity it checks, in order:
//   - an assignee is configured for the run (otherwise error)
//   - no destination record carries the entity's idempotency key (otherwise skipped, duplicate)
//   - the entity's required asset is available (otherwise skipped, no-asset)
//
// and only then asks the adapter to import it. Per-entity failures never abort a
// run; they become Results that a Summary aggregates, keeping a bounded, rolling
// list of error details.
//
// # Driving a run
//
// RunBatch processes everything in batches with an optional delay in between and
// is used by the CLI. Step processes one batch from a cursor and is meant for an
// external poller (see feature/imports), so a long import can be paused and
// resumed without holding a process open. Both are safe to repeat: a second pass
// over the same entities reports every one as a duplicate.
//
// # Usage Example
//
//	exec := importer.NewExecutor[legacy.Video](adapter, importer.Options{
//	    Assignee:  1,
//	    BatchSize: 50,
//	})
//	summary, err := exec.RunBatch(ctx, videos, nil)
//
// UniqueSlug and Slugify derive collision-free names, and Cache shares expensive
// projections between step calls.
package importer
