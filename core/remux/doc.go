// Package remux rewrites media containers with an external ffmpeg binary
// (stream copy, no re-encode) so imported files start playing before they are
// fully downloaded.
//
// Remuxing is optional and never fatal to an import: WithRemuxed reports a
// failed remux instead of returning it, and callers keep the original file.
//
// Limit wraps a Runner so a server running several imports at once never starts
// more than a configured number of ffmpeg processes.
package remux
