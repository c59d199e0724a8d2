// package models defines the in-memory data model for library analysis and playlist generation
package models

import (
	"time"
)

// PathStatus is the tri-state result of checking whether a track's audio file exists.
type PathStatus int

const (
	PathUnknown PathStatus = iota // not checked, undecodable location, or the check itself failed
	PathExists                    // the resolved path is a regular file
	PathMissing                   // the resolved path does not exist
)

func (s PathStatus) String() string {
	switch s {
	case PathExists:
		return "exists"
	case PathMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// PathIssue explains why a track's [PathStatus] is what it is.
type PathIssue int

const (
	IssueNone        PathIssue = iota
	IssueNoLocation            // the export carried no location for the track
	IssueUndecodable           // the location could not be decoded into a filesystem path
	IssueStatFailed            // the filesystem returned an error other than "not exist"
)

func (i PathIssue) String() string {
	switch i {
	case IssueNoLocation:
		return "no_location"
	case IssueUndecodable:
		return "undecodable"
	case IssueStatFailed:
		return "stat_failed"
	default:
		return ""
	}
}

// Track is one entry of the library export.
//
// Fields that the export may omit are resolved once at parse time: a nil BPM or Duration means the value was
// absent or unusable. Path, Exists, Issue and Checked are owned by the path resolver.
type Track struct {
	ID           string         // Unique within one run
	PersistentID string         // iTunes persistent ID, when present
	Name         string         // Track title
	Artist       string         // Track artist
	Album        string         // Album title
	Genre        string         // Raw genre string
	BPM          *float64       // Tempo; nil when absent, negative or non-numeric
	Duration     *time.Duration // Length; nil when absent
	Location     string         // Location as stored in the export (URL-encoded or plain path)
	Path         string         // Decoded absolute filesystem path, empty when unavailable
	Exists       PathStatus     // Existence of Path
	Issue        PathIssue      // Reason behind Exists/Path
	Checked      bool           // Resolution has run for this track
	Index        int            // Zero-based parse order
}

// HasBPM reports whether the track carries a usable tempo.
func (t *Track) HasBPM() bool {
	return t.BPM != nil
}

// HasLocation reports whether the export carried location data for the track.
func (t *Track) HasLocation() bool {
	return t.Location != ""
}

// Writable reports whether the track can be referenced from a playlist file.
func (t *Track) Writable() bool {
	return t.Path != "" && t.Exists != PathMissing
}

// Title returns the "Artist - Name" display string used in playlist and report output.
func (t *Track) Title() string {
	switch {
	case t.Artist == "":
		return t.Name
	case t.Name == "":
		return t.Artist
	default:
		return t.Artist + " - " + t.Name
	}
}

// Seconds returns the duration in whole seconds, or -1 when unknown.
func (t *Track) Seconds() int {
	if t.Duration == nil {
		return -1
	}
	return int(t.Duration.Seconds())
}

// BucketKind distinguishes the two classification axes.
type BucketKind int

const (
	KindBPM BucketKind = iota
	KindGenre
	KindExport // a playlist read from a text export, not a classification bucket
)

func (k BucketKind) String() string {
	switch k {
	case KindBPM:
		return "bpm"
	case KindGenre:
		return "genre"
	case KindExport:
		return "export"
	default:
		return ""
	}
}

// Playlist is the ordered list of track references destined for one output file.
type Playlist struct {
	Kind    BucketKind
	Label   string   // Bucket label (e.g. "Slow" or "Hip-Hop/Rap")
	Range   string   // Printable bounds for BPM buckets (e.g. "0-80", "161+")
	Tracks  []*Track // References into the run's track set
	Before  int      // Track count before deduplication
	Removed int      // Duplicates dropped by deduplication
	Held    bool     // Below the configured minimum size, not written

	Result *WriteResult // Outcome of serialization; nil until written and for held playlists
}

// Title returns the human readable playlist title written into the file header.
func (p *Playlist) Title() string {
	switch p.Kind {
	case KindBPM:
		return p.Label + " (" + p.Range + " BPM)"
	case KindGenre:
		return "Genre: " + p.Label
	default:
		return p.Label
	}
}

// WriteResult records the outcome of serializing one playlist.
type WriteResult struct {
	File       string // Path of the written file, empty on dry runs
	Written    int    // Tracks referenced in the file
	Skipped    int    // Tracks left out for a missing or invalid path
	Unverified int    // Written tracks whose existence could not be confirmed
}
