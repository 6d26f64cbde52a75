// Package imports exposes the legacy import flows over HTTP as resumable runs.
//
// A run is created for one dump and one flow (videos, embeds or users). Each call
// to the "next" endpoint imports one batch and persists the cursor and the merged
// summary in the import_runs table, so an external poller can drive a large import
// in small requests and resume after a restart. Imports are idempotent; replaying a
// batch only yields duplicate skips.
//
// Projected dumps are cached per file version for a configurable TTL. Concurrent
// polls for the same dump share a single scan.
package imports
