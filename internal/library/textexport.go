package library

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/desertthunder/libsort/internal/models"
	"github.com/desertthunder/libsort/internal/shared"
)

// TextExportOptions configures [ParseTextExport].
type TextExportOptions struct {
	VolumePrefix string   // joined in front of relative locations, e.g. "/Volumes"
	Extensions   []string // keep only files with these extensions (".aif"); empty keeps everything
}

var requiredColumns = []string{"Name", "Artist", "Location"}

// ParseTextExport reads a tab-separated playlist export.
//
// The input may be UTF-16 (either byte order) with a byte order mark, or UTF-8. The first row names the columns;
// Name, Artist and Location are required. Rows whose location is empty or filtered out by extension are dropped.
func ParseTextExport(r io.Reader, opts TextExportOptions) ([]*models.Track, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedLibrary, err)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("%w: missing header row", shared.ErrMalformedLibrary)
	}

	cols := make(map[string]int)
	for i, name := range strings.Split(lines[0], "\t") {
		name = strings.TrimSpace(name)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("%w: missing %q column", shared.ErrMalformedLibrary, c)
		}
	}

	field := func(fields []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	var tracks []*models.Track
	for n, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")

		loc := field(fields, "Location")
		if loc == "" || !keepExtension(loc, opts.Extensions) {
			continue
		}
		if opts.VolumePrefix != "" && !filepath.IsAbs(loc) {
			loc = filepath.Join(opts.VolumePrefix, loc)
		}

		t := &models.Track{
			ID:       strconv.Itoa(n + 1),
			Name:     field(fields, "Name"),
			Artist:   field(fields, "Artist"),
			Album:    field(fields, "Album"),
			Genre:    field(fields, "Genre"),
			Location: loc,
			Index:    len(tracks),
		}
		if f, err := strconv.ParseFloat(field(fields, "BPM"), 64); err == nil && f >= 0 {
			t.BPM = &f
		}
		if d, ok := parseExportTime(field(fields, "Time")); ok {
			t.Duration = &d
		}
		tracks = append(tracks, t)
	}

	return tracks, nil
}

func keepExtension(loc string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(loc)
	for _, e := range exts {
		if strings.EqualFold(ext, "."+strings.TrimPrefix(e, ".")) {
			return true
		}
	}
	return false
}

// parseExportTime accepts whole seconds ("225") or "m:ss" / "h:mm:ss".
func parseExportTime(s string) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}
	var total int
	for _, part := range strings.Split(s, ":") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, false
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, true
}
