// Package library is the destination side of an import: the video and user
// tables, their taxonomies, and the adapters that turn projected legacy
// entities into records.
//
// # Adapters
//
// Three adapters plug into the generic importer.Executor:
//   - ArchiveAdapter copies a video's media file (optionally remuxed) and
//     thumbnail from the legacy archive into videos/<slug>/ on the destination
//     disk, then creates the record. Copied files are removed when the record
//     cannot be created.
//   - EmbedAdapter creates records for videos played from an embedded player or
//     a remote URL. No media is copied.
//   - MemberAdapter creates user accounts keyed by email, keeping the legacy
//     password hash and flagging the account for a password reset.
//
// Both video adapters share the idempotency key legacy:video:<post id>, stored
// in videos.source_tag under a unique index.
//
// # Store
//
// Store wraps GORM. Lookups used for idempotency and slug probing are unscoped,
// so soft-deleted rows still count. CreateVideo writes the video, its taxonomy
// links and the usage counter increments in one transaction.
package library
