package classify

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/libsort/internal/models"
	"github.com/desertthunder/libsort/internal/shared"
)

// BPMBucket is the half-open tempo range [Min, Max). Max is +Inf for the last bucket.
type BPMBucket struct {
	Label string
	Min   float64
	Max   float64
}

// Contains reports whether bpm falls inside the bucket.
func (b BPMBucket) Contains(bpm float64) bool {
	return bpm >= b.Min && bpm < b.Max
}

// Open reports whether the bucket has no upper bound.
func (b BPMBucket) Open() bool {
	return math.IsInf(b.Max, 1)
}

// Range formats the bounds for file names and reports: "0-80", "161+".
func (b BPMBucket) Range() string {
	if b.Open() {
		return formatBound(b.Min) + "+"
	}
	return formatBound(b.Min) + "-" + formatBound(b.Max)
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// BPMBuckets is an ordered, validated partition of [0, +Inf).
type BPMBuckets struct {
	buckets []BPMBucket
}

// NewBPMBuckets builds the partition from lower bounds.
//
// The first bucket must start at 0, bounds must be finite and strictly increasing, and labels non-empty and unique.
// Each bucket ends where the next begins; the last is open-ended.
func NewBPMBuckets(defs []shared.BPMBucketConfig) (*BPMBuckets, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no BPM buckets configured", shared.ErrInvalidConfig)
	}
	if defs[0].Min != 0 {
		return nil, fmt.Errorf("%w: first BPM bucket must start at 0, got %v", shared.ErrInvalidConfig, defs[0].Min)
	}

	seen := make(map[string]bool, len(defs))
	buckets := make([]BPMBucket, len(defs))
	for i, d := range defs {
		label := strings.TrimSpace(d.Label)
		if label == "" {
			return nil, fmt.Errorf("%w: BPM bucket %d has no label", shared.ErrInvalidConfig, i)
		}
		if seen[label] {
			return nil, fmt.Errorf("%w: duplicate BPM bucket label %q", shared.ErrInvalidConfig, label)
		}
		seen[label] = true

		if math.IsNaN(d.Min) || math.IsInf(d.Min, 0) {
			return nil, fmt.Errorf("%w: BPM bucket %q has a non-finite bound", shared.ErrInvalidConfig, label)
		}
		if i > 0 && d.Min <= defs[i-1].Min {
			return nil, fmt.Errorf("%w: BPM bucket %q starts at %v, not above %v", shared.ErrInvalidConfig, label, d.Min, defs[i-1].Min)
		}

		buckets[i] = BPMBucket{Label: label, Min: d.Min, Max: math.Inf(1)}
		if i > 0 {
			buckets[i-1].Max = d.Min
		}
	}

	return &BPMBuckets{buckets: buckets}, nil
}

// Buckets returns a copy of the partition in ascending order.
func (b *BPMBuckets) Buckets() []BPMBucket {
	out := make([]BPMBucket, len(b.buckets))
	copy(out, b.buckets)
	return out
}

// Lookup returns the index of the bucket containing bpm, or -1 for negative or NaN values.
func (b *BPMBuckets) Lookup(bpm float64) int {
	if math.IsNaN(bpm) || bpm < 0 {
		return -1
	}
	// first bucket whose Min is above bpm, minus one
	return sort.Search(len(b.buckets), func(i int) bool { return b.buckets[i].Min > bpm }) - 1
}

// Classify returns the bucket for the track's tempo. Tracks without a tempo belong to no bucket.
func (b *BPMBuckets) Classify(t *models.Track) (BPMBucket, bool) {
	if !t.HasBPM() {
		return BPMBucket{}, false
	}
	i := b.Lookup(*t.BPM)
	if i < 0 {
		return BPMBucket{}, false
	}
	return b.buckets[i], true
}

// Group builds one playlist per bucket that receives at least one track, in bucket order.
// Tracks keep their relative input order within a bucket.
func (b *BPMBuckets) Group(tracks []*models.Track) (playlists []*models.Playlist, unclassified int) {
	members := make([][]*models.Track, len(b.buckets))
	for _, t := range tracks {
		if !t.HasBPM() {
			unclassified++
			continue
		}
		i := b.Lookup(*t.BPM)
		if i < 0 {
			unclassified++
			continue
		}
		members[i] = append(members[i], t)
	}

	for i, m := range members {
		if len(m) == 0 {
			continue
		}
		playlists = append(playlists, &models.Playlist{
			Kind:   models.KindBPM,
			Label:  b.buckets[i].Label,
			Range:  b.buckets[i].Range(),
			Tracks: m,
			Before: len(m),
		})
	}
	return playlists, unclassified
}
