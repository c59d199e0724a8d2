package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/desertthunder/libsort/internal/models"
	"github.com/desertthunder/libsort/internal/ui"
)

// RenderReport writes the human readable library analysis report to w, styled with p.
func RenderReport(w io.Writer, r *models.Report, p ui.Painter) error {
	var sb strings.Builder
	line := func(format string, args ...any) {
		sb.WriteString(fmt.Sprintf(format, args...))
		sb.WriteString("\n")
	}
	count := func(n int) string { return humanize.Comma(int64(n)) }

	line("%s", p.Title("Library Analysis"))
	line("  Total tracks:           %s", count(r.TotalTracks))
	if skipped := r.SkippedNoID + r.SkippedDuplicateID; skipped > 0 {
		line("  Skipped entries:        %s", p.Warn(fmt.Sprintf("%s (%d without an identifier, %d repeated)", count(skipped), r.SkippedNoID, r.SkippedDuplicateID)))
	}
	line("  With location data:     %s (%s)", count(r.WithLocation), percent(r.WithLocation, r.TotalTracks))
	line("  Without location data:  %s", count(r.WithoutLocation))
	line("  file:// locations:      %s", count(r.FileURLs))
	line("  Existing files:         %s", p.OK(count(r.Existing)))
	if r.Missing > 0 {
		line("  Missing files:          %s", p.Err(count(r.Missing)))
	}
	if r.Undecodable > 0 {
		line("  Undecodable locations:  %s", p.Warn(count(r.Undecodable)))
	}
	if r.StatFailed > 0 {
		line("  Unreadable paths:       %s", p.Warn(count(r.StatFailed)))
	}
	if r.Unchecked > 0 {
		line("  Unchecked paths:        %s", count(r.Unchecked))
	}

	sb.WriteString("\n")
	line("%s", p.Title("Tempo"))
	if r.BPM != nil {
		line("  Tracks with BPM:        %s", count(r.BPM.Count))
		line("  Average BPM:            %.1f", r.BPM.Mean)
		line("  Range:                  %s - %s", humanize.Ftoa(r.BPM.Min), humanize.Ftoa(r.BPM.Max))
	}
	line("  Without BPM:            %s", count(r.NoBPM))

	if len(r.TopGenres) > 0 {
		sb.WriteString("\n")
		line("%s", p.Title("Top Genres"))
		for i, g := range r.TopGenres {
			line("  %2d. %-28s %s", i+1, g.Genre, count(g.Count))
		}
	}
	if r.NoGenre > 0 {
		line("  %s", p.Help(fmt.Sprintf("%s tracks have no genre", count(r.NoGenre))))
	}

	if len(r.Buckets) > 0 {
		sb.WriteString("\n")
		title := "Playlists"
		if r.DryRun {
			title += " (dry run)"
		}
		line("%s", p.Title(title))
		for _, b := range r.Buckets {
			line("  %s", bucketLine(b, p))
		}
		line("  %s written, %s skipped, %s duplicates removed", p.OK(count(r.TracksWritten)), count(r.TracksSkipped), count(r.DuplicatesRemoved))
	}

	if empty := emptyBuckets(r); empty > 0 {
		sb.WriteString("\n")
		line("%s", p.Warn(fmt.Sprintf("%d playlists contain no valid paths. Likely causes:", empty)))
		line("  %s", p.Help("- the export carries no file locations (cloud or streaming tracks)"))
		line("  %s", p.Help("- the files were moved or deleted after the export"))
		line("  %s", p.Help("- the library was exported on another machine; see [[paths.rewrite]]"))
	}

	if len(r.Sample) > 0 {
		sb.WriteString("\n")
		line("%s", p.Title("Sample Paths"))
		for _, s := range r.Sample {
			line("  [%s] %s", statusMark(s, p), s.Title)
			if s.Path != "" {
				line("      %s", p.Help(s.Path))
			} else {
				line("      %s", p.Help(s.Location))
			}
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func bucketLine(b models.BucketReport, p ui.Painter) string {
	name := b.Label
	if b.Range != "" {
		name += " (" + b.Range + ")"
	}
	if b.Kind == models.KindGenre.String() {
		name = "Genre: " + name
	}

	counts := fmt.Sprintf("%d tracks", b.After)
	if b.Before != b.After {
		counts = fmt.Sprintf("%d → %d tracks", b.Before, b.After)
	}
	if b.Held {
		return fmt.Sprintf("%-32s %-18s %s", name, counts, p.Help("held, below minimum size"))
	}

	status := p.OK(fmt.Sprintf("%d written", b.Written))
	if b.Written == 0 {
		status = p.Err("0 written")
	}
	if b.Skipped > 0 {
		status += ", " + p.Warn(fmt.Sprintf("%d skipped", b.Skipped))
	}
	if b.Unverified > 0 {
		status += ", " + p.Help(fmt.Sprintf("%d unverified", b.Unverified))
	}
	return fmt.Sprintf("%-32s %-18s %s", name, counts, status)
}

func emptyBuckets(r *models.Report) int {
	n := 0
	for _, b := range r.Buckets {
		if !b.Held && b.After > 0 && b.Written == 0 {
			n++
		}
	}
	return n
}

func statusMark(s models.SamplePath, p ui.Painter) string {
	switch s.Status {
	case models.PathExists.String():
		return p.OK("ok")
	case models.PathMissing.String():
		return p.Err("missing")
	default:
		if s.Issue != "" {
			return p.Warn(s.Issue)
		}
		return p.Help("unchecked")
	}
}

func percent(n, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}
