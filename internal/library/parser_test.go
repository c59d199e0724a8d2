package library

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/libsort/internal/shared"
	tu "github.com/desertthunder/libsort/internal/testing"
)

func TestParse(t *testing.T) {
	t.Run("reads tracks in document order", func(t *testing.T) {
		doc := tu.LibraryXML(
			tu.TrackFixture{ID: 300, Name: "Third", Artist: "C", Album: "X", Genre: "Rock", BPM: 128, TotalMS: 215000, Location: "file://localhost/Music/c.mp3"},
			tu.TrackFixture{ID: 100, Name: "First", Artist: "A", Genre: "Jazz"},
			tu.TrackFixture{ID: 200, Name: "Second & More", Artist: "B"},
		)

		res, err := Parse(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(res.Tracks) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(res.Tracks))
		}

		first := res.Tracks[0]
		if first.ID != "300" || first.Name != "Third" || first.Artist != "C" || first.Album != "X" || first.Genre != "Rock" {
			t.Errorf("unexpected first track: %+v", first)
		}
		if first.BPM == nil || *first.BPM != 128 {
			t.Errorf("expected BPM 128, got %v", first.BPM)
		}
		if first.Duration == nil || *first.Duration != 215*time.Second {
			t.Errorf("expected duration 215s, got %v", first.Duration)
		}
		if first.Location != "file://localhost/Music/c.mp3" {
			t.Errorf("unexpected location %q", first.Location)
		}

		for i, tr := range res.Tracks {
			if tr.Index != i {
				t.Errorf("track %s: expected index %d, got %d", tr.ID, i, tr.Index)
			}
		}
		if res.Tracks[2].Name != "Second & More" {
			t.Errorf("expected entity to be decoded, got %q", res.Tracks[2].Name)
		}
		if res.Tracks[1].BPM != nil || res.Tracks[1].Duration != nil || res.Tracks[1].Location != "" {
			t.Errorf("expected absent fields to stay nil/empty: %+v", res.Tracks[1])
		}
	})

	t.Run("zero BPM is a value", func(t *testing.T) {
		res, err := Parse(strings.NewReader(tu.LibraryXML(tu.TrackFixture{ID: 1, Name: "n", HasBPM: true, BPM: 0})))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Tracks[0].BPM == nil || *res.Tracks[0].BPM != 0 {
			t.Errorf("expected BPM 0, got %v", res.Tracks[0].BPM)
		}
	})

	t.Run("negative and non-numeric BPM are absent", func(t *testing.T) {
		doc := `<plist><dict><key>Tracks</key><dict>
			<key>1</key><dict><key>Track ID</key><integer>1</integer><key>BPM</key><integer>-5</integer></dict>
			<key>2</key><dict><key>Track ID</key><integer>2</integer><key>BPM</key><string>fast</string></dict>
			<key>3</key><dict><key>Track ID</key><integer>3</integer><key>BPM</key><real>97.5</real></dict>
			<key>4</key><dict><key>Track ID</key><integer>4</integer><key>BPM</key><true/></dict>
		</dict></dict></plist>`
		res, err := Parse(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(res.Tracks) != 4 {
			t.Fatalf("expected 4 tracks, got %d", len(res.Tracks))
		}
		for _, i := range []int{0, 1, 3} {
			if res.Tracks[i].BPM != nil {
				t.Errorf("track %s: expected nil BPM, got %v", res.Tracks[i].ID, *res.Tracks[i].BPM)
			}
		}
		if res.Tracks[2].BPM == nil || *res.Tracks[2].BPM != 97.5 {
			t.Errorf("expected real BPM 97.5, got %v", res.Tracks[2].BPM)
		}
	})

	t.Run("ignores unknown keys and nested values", func(t *testing.T) {
		doc := `<plist version="1.0"><dict>
			<key>Features</key><dict><key>a</key><array><integer>1</integer></array></dict>
			<key>Tracks</key><dict>
				<key>7</key><dict>
					<key>Track ID</key><integer>7</integer>
					<key>Artwork</key><data>AAAA</data>
					<key>Date Added</key><date>2020-01-01T00:00:00Z</date>
					<key>Extra</key><dict><key>x</key><string>y</string></dict>
					<key>Name</key><string>Kept</string>
					<key>Compilation</key><true/>
				</dict>
			</dict>
			<key>Playlists</key><array><dict><key>Name</key><string>p</string></dict></array>
		</dict></plist>`
		res, err := Parse(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(res.Tracks) != 1 || res.Tracks[0].Name != "Kept" {
			t.Errorf("expected one track named Kept, got %+v", res.Tracks)
		}
	})

	t.Run("identifier fallbacks and skips", func(t *testing.T) {
		doc := `<plist><dict><key>Tracks</key><dict>
			<key>10</key><dict><key>Persistent ID</key><string>ABCDEF</string><key>Name</key><string>pid</string></dict>
			<key>11</key><dict><key>Name</key><string>dict key</string></dict>
			<key></key><dict><key>Name</key><string>nothing</string></dict>
			<key>12</key><dict><key>Track ID</key><integer>12</integer></dict>
			<key>13</key><dict><key>Track ID</key><integer>12</integer><key>Name</key><string>dup</string></dict>
			<key>14</key><string>not a dict</string>
		</dict></dict></plist>`
		res, err := Parse(strings.NewReader(doc))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		ids := []string{}
		for _, tr := range res.Tracks {
			ids = append(ids, tr.ID)
		}
		if strings.Join(ids, ",") != "ABCDEF,11,12" {
			t.Errorf("expected ids ABCDEF,11,12 got %v", ids)
		}
		if res.SkippedNoID != 2 {
			t.Errorf("expected 2 entries without identity, got %d", res.SkippedNoID)
		}
		if res.SkippedDuplicateID != 1 {
			t.Errorf("expected 1 duplicate identity, got %d", res.SkippedDuplicateID)
		}
		if res.Skipped() != 3 {
			t.Errorf("expected 3 skipped, got %d", res.Skipped())
		}
	})

	t.Run("document without tracks is empty, not an error", func(t *testing.T) {
		res, err := Parse(strings.NewReader(`<plist><dict><key>Major Version</key><integer>1</integer></dict></plist>`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(res.Tracks) != 0 {
			t.Errorf("expected no tracks, got %d", len(res.Tracks))
		}
	})

	t.Run("malformed documents", func(t *testing.T) {
		tc := []struct {
			name string
			doc  string
		}{
			{name: "empty", doc: ""},
			{name: "plain text", doc: "this is not xml"},
			{name: "truncated", doc: `<plist><dict><key>Tracks</key><dict><key>1</key><dict>`},
			{name: "mismatched tags", doc: `<plist><dict></plist></dict>`},
			{name: "wrong root", doc: `<html><body/></html>`},
			{name: "root not dict", doc: `<plist><array/></plist>`},
			{name: "tracks not dict", doc: `<plist><dict><key>Tracks</key><array/></dict></plist>`},
			{name: "value without key", doc: `<plist><dict><string>x</string></dict></plist>`},
			{name: "key without value", doc: `<plist><dict><key>Tracks</key></dict></plist>`},
			{name: "garbage after root", doc: `<plist><dict/></plist><`},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Parse(strings.NewReader(tt.doc))
				if !errors.Is(err, shared.ErrMalformedLibrary) {
					t.Errorf("expected ErrMalformedLibrary, got %v", err)
				}
			})
		}
	})
}

func TestParseFile(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := ParseFile(filepath.Join(t.TempDir(), "Library.xml"))
		if !errors.Is(err, shared.ErrLibraryNotFound) {
			t.Errorf("expected ErrLibraryNotFound, got %v", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		_, err := ParseFile(t.TempDir())
		if !errors.Is(err, shared.ErrLibraryNotFound) {
			t.Errorf("expected ErrLibraryNotFound, got %v", err)
		}
	})

	t.Run("malformed file keeps the path in the message", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "Library.xml")
		tu.MustWriteFile(t, path, []byte("<plist><dict>"))

		_, err := ParseFile(path)
		if !errors.Is(err, shared.ErrMalformedLibrary) {
			t.Fatalf("expected ErrMalformedLibrary, got %v", err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Errorf("expected path in error, got %v", err)
		}
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "Library.xml")
		if err := os.WriteFile(path, []byte(tu.LibraryXML(tu.TrackFixture{ID: 1, Name: "One"})), 0644); err != nil {
			t.Fatalf("failed to write library: %v", err)
		}
		res, err := ParseFile(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(res.Tracks) != 1 {
			t.Errorf("expected 1 track, got %d", len(res.Tracks))
		}
	})
}
