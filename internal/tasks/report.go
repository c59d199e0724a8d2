package tasks

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/desertthunder/libsort/internal/classify"
	"github.com/desertthunder/libsort/internal/library"
	"github.com/desertthunder/libsort/internal/models"
	"github.com/desertthunder/libsort/internal/shared"
)

// ReportOpts controls the optional sections of a [models.Report].
type ReportOpts struct {
	RunID      string
	SampleSize int                // tracks with location data listed for diagnosis
	TopGenres  int                // genres listed by size
	Genre      shared.GenreConfig // how genres are keyed for counting
	DryRun     bool
}

// BuildReport aggregates the run into a [models.Report].
//
// tracks is the full resolved track set in parse order and parse, when non-nil, supplies the parser's skip counts.
// Counts that must agree with each other are checked; a disagreement is returned as [shared.ErrReportInvariant].
func BuildReport(tracks []*models.Track, parse *library.ParseResult, playlists []*models.Playlist, opts ReportOpts) (*models.Report, error) {
	r := &models.Report{RunID: opts.RunID, TotalTracks: len(tracks), DryRun: opts.DryRun}
	if parse != nil {
		r.SkippedNoID = parse.SkippedNoID
		r.SkippedDuplicateID = parse.SkippedDuplicateID
	}

	var (
		bpmSum         float64
		bpmMin, bpmMax = math.Inf(1), math.Inf(-1)
		bpmCount       int
		grouper        = classify.NewGenreGrouper(opts.Genre)
		genreCounts    = make(map[string]*models.GenreCount)
		genreOrder     []string
	)

	for _, t := range tracks {
		if t.HasLocation() {
			r.WithLocation++
			if library.IsFileURL(t.Location) {
				r.FileURLs++
			}
			if len(r.Sample) < opts.SampleSize {
				r.Sample = append(r.Sample, models.SamplePath{
					Title:    t.Title(),
					Location: t.Location,
					Path:     t.Path,
					Status:   t.Exists.String(),
					Issue:    t.Issue.String(),
				})
			}
		} else {
			r.WithoutLocation++
		}

		switch {
		case t.Path != "":
			r.Resolved++
			switch {
			case t.Exists == models.PathExists:
				r.Existing++
			case t.Exists == models.PathMissing:
				r.Missing++
			case t.Issue == models.IssueStatFailed:
				r.StatFailed++
			default:
				r.Unchecked++
			}
		case t.Issue == models.IssueUndecodable:
			r.Undecodable++
		}

		if t.HasBPM() {
			bpm := *t.BPM
			bpmCount++
			bpmSum += bpm
			bpmMin = math.Min(bpmMin, bpm)
			bpmMax = math.Max(bpmMax, bpm)
		} else {
			r.NoBPM++
		}

		key, ok := grouper.Key(t.Genre)
		if !ok {
			r.NoGenre++
			continue
		}
		gc, ok := genreCounts[key]
		if !ok {
			gc = &models.GenreCount{Genre: shared.NormalizeText(t.Genre)}
			genreCounts[key] = gc
			genreOrder = append(genreOrder, key)
		}
		gc.Count++
	}

	if bpmCount > 0 {
		r.BPM = &models.BPMStats{Count: bpmCount, Mean: bpmSum / float64(bpmCount), Min: bpmMin, Max: bpmMax}
	}
	r.TopGenres = topGenres(genreCounts, genreOrder, opts.TopGenres)

	for _, pl := range playlists {
		br := models.BucketReport{
			Kind:   pl.Kind.String(),
			Label:  pl.Label,
			Range:  pl.Range,
			Before: pl.Before,
			After:  len(pl.Tracks),
			Held:   pl.Held,
		}
		if res := pl.Result; res != nil {
			br.File = res.File
			br.Written = res.Written
			br.Skipped = res.Skipped
			br.Unverified = res.Unverified
		}
		r.Buckets = append(r.Buckets, br)
		r.DuplicatesRemoved += pl.Removed
		r.TracksWritten += br.Written
		r.TracksSkipped += br.Skipped
	}

	if err := checkReport(r, playlists); err != nil {
		return nil, err
	}
	return r, nil
}

// topGenres orders genres by count, largest first, keeping first-seen order between equal counts.
func topGenres(counts map[string]*models.GenreCount, order []string, n int) []models.GenreCount {
	if n <= 0 || len(order) == 0 {
		return nil
	}
	out := make([]models.GenreCount, 0, len(order))
	for _, key := range order {
		out = append(out, *counts[key])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func checkReport(r *models.Report, playlists []*models.Playlist) error {
	var errs []error
	if r.WithLocation+r.WithoutLocation != r.TotalTracks {
		errs = append(errs, fmt.Errorf("location counts %d+%d do not sum to %d tracks", r.WithLocation, r.WithoutLocation, r.TotalTracks))
	}
	if r.Existing+r.Missing+r.StatFailed+r.Unchecked != r.Resolved {
		errs = append(errs, fmt.Errorf("path status counts do not sum to %d resolved paths", r.Resolved))
	}
	if r.Resolved+r.Undecodable > r.WithLocation {
		errs = append(errs, fmt.Errorf("%d resolved or undecodable paths exceed %d locations", r.Resolved+r.Undecodable, r.WithLocation))
	}

	for i, b := range r.Buckets {
		pl := playlists[i]
		name := b.Kind + " " + b.Label
		if b.After > b.Before {
			errs = append(errs, fmt.Errorf("%s: %d tracks after dedup exceeds %d before", name, b.After, b.Before))
		}
		if b.Before-pl.Removed != b.After {
			errs = append(errs, fmt.Errorf("%s: %d before minus %d removed is not %d", name, b.Before, pl.Removed, b.After))
		}
		if pl.Result != nil && b.Written+b.Skipped != b.After {
			errs = append(errs, fmt.Errorf("%s: written %d + skipped %d is not %d", name, b.Written, b.Skipped, b.After))
		}
		if b.Unverified > b.Written {
			errs = append(errs, fmt.Errorf("%s: %d unverified exceeds %d written", name, b.Unverified, b.Written))
		}
	}

	if err := errors.Join(errs...); err != nil {
		msg := strings.ReplaceAll(err.Error(), "\n", "; ")
		return fmt.Errorf("%w: %s", shared.ErrReportInvariant, msg)
	}
	return nil
}
