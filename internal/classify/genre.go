package classify

import (
	"github.com/desertthunder/libsort/internal/models"
	"github.com/desertthunder/libsort/internal/shared"
)

// GenreGrouper groups tracks by normalized genre.
type GenreGrouper struct {
	caseSensitive bool
}

// NewGenreGrouper returns a grouper for the given configuration.
func NewGenreGrouper(cfg shared.GenreConfig) *GenreGrouper {
	return &GenreGrouper{caseSensitive: cfg.CaseSensitive}
}

// Key returns the bucket key for a genre string. Blank genres have no key.
func (g *GenreGrouper) Key(genre string) (string, bool) {
	var key string
	if g.caseSensitive {
		key = shared.NormalizeText(genre)
	} else {
		key = shared.FoldText(genre)
	}
	return key, key != ""
}

// Group builds one playlist per distinct genre key, in order of first appearance.
// The playlist label is the first spelling seen for that key.
func (g *GenreGrouper) Group(tracks []*models.Track) (playlists []*models.Playlist, unclassified int) {
	index := make(map[string]*models.Playlist)
	for _, t := range tracks {
		key, ok := g.Key(t.Genre)
		if !ok {
			unclassified++
			continue
		}

		pl, ok := index[key]
		if !ok {
			pl = &models.Playlist{Kind: models.KindGenre, Label: shared.NormalizeText(t.Genre)}
			index[key] = pl
			playlists = append(playlists, pl)
		}
		pl.Tracks = append(pl.Tracks, t)
		pl.Before++
	}
	return playlists, unclassified
}
