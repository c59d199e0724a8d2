// Package models defines the in-memory entities shared by every stage of a libsort run.
//
// The package contains three groups of types:
//
// 1. Track data: the canonical representation of one library entry
//   - [Track] : metadata, optional tempo and duration, raw and resolved location
//   - [PathStatus] : tri-state existence of the resolved path (unknown, exists, missing)
//   - [PathIssue] : why a path is unknown (no location, undecodable, stat failure)
//
// 2. Buckets: tracks grouped for one output file
//   - [Playlist] : ordered track references plus deduplication counters
//   - [WriteResult] : what the playlist writer did with a [Playlist]
//
// 3. Reporting: the write-once summary of a run
//   - [Report] : totals, path diagnostics, per-bucket outcomes and a path sample
//
// Nothing here is persisted; every value lives for exactly one run.
package models
