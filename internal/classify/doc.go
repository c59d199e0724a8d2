// Package classify assigns tracks to tempo and genre buckets.
//
// Both classifiers are pure: membership depends only on the track and the immutable configuration value the
// classifier was built from, never on the order tracks are presented in.
//
//   - [BPMBuckets] : half-open tempo ranges that partition the non-negative reals
//   - [GenreGrouper] : one bucket per distinct normalized genre string
package classify
