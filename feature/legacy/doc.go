// Package legacy reconstructs the relevant part of a legacy publishing
// platform's database from an SQL dump and projects it into importable videos
// and members.
//
// Load runs a single scan into an Index. A Projection then filters and joins
// the index into Video and Member values, and Resolve checks which referenced
// assets actually exist on the archive disk. Nothing in this package writes to
// a destination.
package legacy
