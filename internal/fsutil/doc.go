// Package fsutil provides crash-safe file writes.
//
// WriteNew publishes a file under a name that must not exist yet, so a report
// is never observed half-written and never overwrites an earlier one.
// WriteAtomic replaces a file in place and is used for cache entries.
package fsutil
