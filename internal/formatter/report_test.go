package formatter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/desertthunder/libsort/internal/models"
	tu "github.com/desertthunder/libsort/internal/testing"
	"github.com/desertthunder/libsort/internal/ui"
)

func sampleReport() *models.Report {
	return &models.Report{
		TotalTracks:     1234,
		WithLocation:    1200,
		WithoutLocation: 34,
		FileURLs:        1200,
		Resolved:        1200,
		Existing:        1100,
		Missing:         100,
		NoBPM:           200,
		BPM:             &models.BPMStats{Count: 1034, Mean: 118.31, Min: 60, Max: 174},
		TopGenres:       []models.GenreCount{{Genre: "Electronic", Count: 600}, {Genre: "Rock", Count: 300}},
		Buckets: []models.BucketReport{
			{Kind: "bpm", Label: "Slow", Range: "0-80", Before: 10, After: 9, Written: 8, Skipped: 1},
			{Kind: "bpm", Label: "Extreme", Range: "161+", Before: 3, After: 3, Written: 0, Skipped: 3},
			{Kind: "genre", Label: "Jazz", Before: 1, After: 1, Held: true},
		},
		Sample: []models.SamplePath{
			{Title: "A - One", Location: "file:///a.mp3", Path: "/a.mp3", Status: "exists"},
			{Title: "B - Two", Location: "http://x/b.mp3", Status: "unknown", Issue: "undecodable"},
		},
		DuplicatesRemoved: 1,
		TracksWritten:     8,
		TracksSkipped:     4,
	}
}

func TestRenderReport(t *testing.T) {
	t.Run("includes required sections", func(t *testing.T) {
		var buf bytes.Buffer
		if err := RenderReport(&buf, sampleReport(), ui.NewPalette(&buf)); err != nil {
			t.Fatalf("RenderReport failed: %v", err)
		}
		out := buf.String()

		for _, want := range []string{
			"Total tracks:           1,234",
			"With location data:     1,200 (97.2%)",
			"Without location data:  34",
			"Missing files:          100",
			"Average BPM:            118.3",
			"Electronic",
			"Slow (0-80)",
			"10 → 9 tracks",
			"8 written, 1 skipped",
			"Extreme (161+)",
			"0 written, 3 skipped",
			"Genre: Jazz",
			"held, below minimum size",
			"1 playlists contain no valid paths",
			"[ok] A - One",
			"[undecodable] B - Two",
			"http://x/b.mp3",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("report missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("no colors for non-terminal output", func(t *testing.T) {
		var buf bytes.Buffer
		if err := RenderReport(&buf, sampleReport(), ui.NewPalette(&buf)); err != nil {
			t.Fatalf("RenderReport failed: %v", err)
		}
		if strings.Contains(buf.String(), "\x1b[") {
			t.Error("report contains ANSI escapes")
		}
	})

	t.Run("empty library", func(t *testing.T) {
		var buf bytes.Buffer
		if err := RenderReport(&buf, &models.Report{}, ui.NewPalette(&buf)); err != nil {
			t.Fatalf("RenderReport failed: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "Total tracks:           0") {
			t.Errorf("expected zero total, got:\n%s", out)
		}
		if strings.Contains(out, "Playlists") {
			t.Errorf("empty report should have no playlist section:\n%s", out)
		}
	})

	t.Run("write failure", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderReport(&tu.FWriter{}, sampleReport(), ui.NewPalette(&buf))
		if err == nil {
			t.Error("expected error from failing writer")
		}
	})
}
