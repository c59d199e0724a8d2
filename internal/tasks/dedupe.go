package tasks

import (
	"github.com/desertthunder/libsort/internal/models"
	"github.com/desertthunder/libsort/internal/shared"
)

// Dedupe drops tracks that repeat an earlier track's title and artist, compared through [shared.NormalizeTrackKey].
// The first occurrence survives and the relative order of kept tracks is unchanged.
func Dedupe(tracks []*models.Track) (kept []*models.Track, removed int) {
	seen := make(map[string]bool, len(tracks))
	kept = make([]*models.Track, 0, len(tracks))
	for _, t := range tracks {
		key := shared.NormalizeTrackKey(t.Name, t.Artist)
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		kept = append(kept, t)
	}
	return kept, removed
}

// DedupePlaylist deduplicates pl in place and records how many tracks were removed.
func DedupePlaylist(pl *models.Playlist) {
	pl.Tracks, pl.Removed = Dedupe(pl.Tracks)
}
