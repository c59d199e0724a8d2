// package testing contains shared testing utilities
package testing

import (
	"errors"
	"fmt"
	"html"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf16"
)

// TrackFixture describes one track entry of a generated Library.xml. Zero values are omitted from the document.
type TrackFixture struct {
	ID       int
	Name     string
	Artist   string
	Album    string
	Genre    string
	BPM      int
	HasBPM   bool
	TotalMS  int
	Location string
}

// LibraryXML renders a plist library export containing the given tracks, in order.
func LibraryXML(tracks ...TrackFixture) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple Computer//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Major Version</key><integer>1</integer>
	<key>Application Version</key><string>1.4.5.7</string>
	<key>Music Folder</key><string>file:///Users/test/Music/</string>
	<key>Tracks</key>
	<dict>
`)
	for _, t := range tracks {
		fmt.Fprintf(&sb, "\t\t<key>%d</key>\n\t\t<dict>\n", t.ID)
		fmt.Fprintf(&sb, "\t\t\t<key>Track ID</key><integer>%d</integer>\n", t.ID)
		writeString(&sb, "Name", t.Name)
		writeString(&sb, "Artist", t.Artist)
		writeString(&sb, "Album", t.Album)
		writeString(&sb, "Genre", t.Genre)
		if t.HasBPM || t.BPM != 0 {
			fmt.Fprintf(&sb, "\t\t\t<key>BPM</key><integer>%d</integer>\n", t.BPM)
		}
		if t.TotalMS != 0 {
			fmt.Fprintf(&sb, "\t\t\t<key>Total Time</key><integer>%d</integer>\n", t.TotalMS)
		}
		writeString(&sb, "Location", t.Location)
		sb.WriteString("\t\t\t<key>Kind</key><string>MPEG audio file</string>\n")
		sb.WriteString("\t\t</dict>\n")
	}
	sb.WriteString(`	</dict>
	<key>Playlists</key>
	<array>
		<dict><key>Name</key><string>Library</string><key>Master</key><true/></dict>
	</array>
</dict>
</plist>
`)
	return sb.String()
}

func writeString(sb *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "\t\t\t<key>%s</key><string>%s</string>\n", key, html.EscapeString(value))
}

// FileURL builds an iTunes style file://localhost URL for an absolute path, escaping spaces.
func FileURL(path string) string {
	return "file://localhost" + strings.ReplaceAll(filepath.ToSlash(path), " ", "%20")
}

// UTF16LE encodes s as UTF-16 little endian with a byte order mark, the way iTunes writes text exports.
func UTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := []byte{0xFF, 0xFE}
	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}
	return out
}

// FileInfo is a minimal [fs.FileInfo] for stubbed stat calls.
type FileInfo struct {
	FileName string
	Dir      bool
}

func (f FileInfo) Name() string       { return f.FileName }
func (f FileInfo) Size() int64        { return 0 }
func (f FileInfo) ModTime() time.Time { return time.Time{} }
func (f FileInfo) IsDir() bool        { return f.Dir }
func (f FileInfo) Sys() any           { return nil }

func (f FileInfo) Mode() fs.FileMode {
	if f.Dir {
		return fs.ModeDir
	}
	return 0
}

// StatStub answers stat calls from a fixed table and counts them. Paths not in the table do not exist.
type StatStub struct {
	Files  map[string]bool  // path -> is directory
	Errors map[string]error // path -> error to return
	Calls  int
}

func (s *StatStub) Stat(name string) (fs.FileInfo, error) {
	s.Calls++
	if err, ok := s.Errors[name]; ok {
		return nil, err
	}
	if dir, ok := s.Files[name]; ok {
		return FileInfo{FileName: filepath.Base(name), Dir: dir}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MustWriteFile writes content to path, creating parent directories.
func MustWriteFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// MustTouch creates empty files at each path and returns them.
func MustTouch(t *testing.T, paths ...string) []string {
	t.Helper()
	for _, p := range paths {
		MustWriteFile(t, p, nil)
	}
	return paths
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func AssertNoFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		t.Fatalf("Failed to read directory %s: %v", dir, err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no files in %s, found %d", dir, len(entries))
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
