// package formatter serializes playlists to M3U files and renders the library analysis report
package formatter

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/desertthunder/libsort/internal/models"
	"github.com/desertthunder/libsort/internal/shared"
)

// ExportToM3U renders a playlist as M3U and reports which tracks made it in.
//
// Tracks without a usable single-line path or whose file is known to be missing are left out and counted as skipped.
// Tracks whose existence is unknown are written and counted as unverified. With extended set, every path is
// preceded by an #EXTINF line carrying duration and "Artist - Name".
func ExportToM3U(pl *models.Playlist, extended bool) ([]byte, *models.WriteResult) {
	var buf bytes.Buffer
	res := &models.WriteResult{}

	buf.WriteString("#EXTM3U\n")
	buf.WriteString(fmt.Sprintf("#PLAYLIST:%s\n", oneLine(pl.Title())))

	for _, t := range pl.Tracks {
		if !t.Writable() || strings.ContainsAny(t.Path, "\r\n") {
			res.Skipped++
			continue
		}
		if extended {
			buf.WriteString(fmt.Sprintf("#EXTINF:%d,%s\n", t.Seconds(), oneLine(t.Title())))
		}
		buf.WriteString(t.Path + "\n")

		res.Written++
		if t.Exists == models.PathUnknown {
			res.Unverified++
		}
	}

	return buf.Bytes(), res
}

func oneLine(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }), " ")
}

// PlaylistWriterOptions configures a [PlaylistWriter].
type PlaylistWriterOptions struct {
	Extended bool // write #EXTINF lines
	DryRun   bool // compute results and names without touching the filesystem
}

// PlaylistWriter writes playlists as M3U files into one directory, handing out collision-free file names.
type PlaylistWriter struct {
	dir   string
	opts  PlaylistWriterOptions
	names map[string]bool
}

// NewPlaylistWriter creates a writer for dir. The directory is created on first write.
func NewPlaylistWriter(dir string, opts PlaylistWriterOptions) *PlaylistWriter {
	return &PlaylistWriter{dir: dir, opts: opts, names: make(map[string]bool)}
}

// Dir returns the output directory.
func (w *PlaylistWriter) Dir() string {
	return w.dir
}

// FileName reserves and returns the file name for a playlist.
//
// Names derive from the bucket kind and label ("BPM_Slow_0-80.m3u", "Genre_Hip-Hop.m3u"). A name already handed
// out by this writer, compared case-insensitively, gets a numeric suffix, so the result depends only on the order
// playlists are presented in.
func (w *PlaylistWriter) FileName(pl *models.Playlist) string {
	var base string
	switch pl.Kind {
	case models.KindBPM:
		base = "BPM_" + SanitizeLabel(pl.Label) + "_" + SanitizeLabel(pl.Range)
	case models.KindGenre:
		base = "Genre_" + SanitizeLabel(pl.Label)
	default:
		base = SanitizeLabel(pl.Label)
	}

	name := base + ".m3u"
	for n := 2; w.names[strings.ToLower(name)]; n++ {
		name = fmt.Sprintf("%s_%d.m3u", base, n)
	}
	w.names[strings.ToLower(name)] = true
	return name
}

// Write serializes pl into the output directory, replacing any existing file of the same name.
//
// A playlist with no writable tracks still produces a file holding only the header.
func (w *PlaylistWriter) Write(pl *models.Playlist) (*models.WriteResult, error) {
	path := filepath.Join(w.dir, w.FileName(pl))
	data, res := ExportToM3U(pl, w.opts.Extended)

	if w.opts.DryRun {
		return res, nil
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create directory: %v", shared.ErrWritePlaylist, err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrWritePlaylist, path, err)
	}

	res.File = path
	return res, nil
}

// writeFileAtomic writes through a temp file in the same directory and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".libsort-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// SanitizeLabel turns a bucket label into a file name fragment: letters, digits, '-', '+', '.' and '_' are kept,
// whitespace and path separators become '_', everything else is dropped.
func SanitizeLabel(label string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(label) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '+' || r == '.':
			sb.WriteRune(r)
		case unicode.IsSpace(r) || r == '/' || r == '\\' || r == '_':
			sb.WriteRune('_')
		}
	}

	s := sb.String()
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.Trim(s, "_.")
	if s == "" {
		return "Untitled"
	}
	return s
}

// ReadM3U returns the path lines of an M3U file, skipping comments and blank lines.
func ReadM3U(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open playlist: %w", err)
	}
	defer f.Close()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}
	return paths, nil
}
