// Package tasks turns a library export into tempo and genre playlists with real-time progress reporting.
//
// # Pipeline
//
// [Engine.Run] executes one linear pass with no retries or resume:
//
//  1. Parse: read the library export into tracks ([library.ParseFile])
//  2. Resolve: decode each location and check the file exists ([library.Resolver])
//  3. Classify: group tracks into BPM buckets and genre buckets ([classify])
//  4. Dedupe: drop repeated title/artist pairs within each bucket ([Dedupe])
//  5. Shuffle: randomize each bucket's order ([Shuffler])
//  6. Write: serialize one M3U file per bucket ([formatter.PlaylistWriter])
//  7. Report: aggregate counts and check they agree ([BuildReport])
//
// Failures while parsing abort before any file is written. Problems with a single track (no location, no tempo,
// a missing file) are counted and never abort the run. The context is checked between stages.
//
// [Engine.Analyze] stops after classification and reports what each file would receive. [Engine.DedupeExports]
// applies steps 2 and 4 through 6 to a directory of tab-separated playlist exports.
//
// # Progress Reporting
//
// All operations accept an optional channel for [ProgressUpdate] values. Sends use select with default, so a slow or
// absent reader never blocks the pipeline.
package tasks
