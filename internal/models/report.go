package models

// Report is the library analysis summary produced once per run.
type Report struct {
	RunID string `json:"run_id"`

	TotalTracks        int `json:"total_tracks"`
	SkippedNoID        int `json:"skipped_no_id"`
	SkippedDuplicateID int `json:"skipped_duplicate_id"`

	WithLocation    int `json:"with_location"`
	WithoutLocation int `json:"without_location"`
	FileURLs        int `json:"file_urls"`
	Resolved        int `json:"resolved"`
	Undecodable     int `json:"undecodable"`
	Existing        int `json:"existing"`
	Missing         int `json:"missing"`
	StatFailed      int `json:"stat_failed"`
	Unchecked       int `json:"unchecked"`

	NoBPM   int       `json:"no_bpm"`
	NoGenre int       `json:"no_genre"`
	BPM     *BPMStats `json:"bpm_stats,omitempty"`

	Buckets   []BucketReport `json:"buckets"`
	TopGenres []GenreCount   `json:"top_genres,omitempty"`
	Sample    []SamplePath   `json:"sample,omitempty"`

	DuplicatesRemoved int  `json:"duplicates_removed"`
	TracksWritten     int  `json:"tracks_written"`
	TracksSkipped     int  `json:"tracks_skipped"`
	DryRun            bool `json:"dry_run,omitempty"`
}

// BPMStats summarizes tempo values across tracks that have one.
type BPMStats struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// BucketReport is one bucket's line in the report.
type BucketReport struct {
	Kind       string `json:"kind"`
	Label      string `json:"label"`
	Range      string `json:"range,omitempty"`
	File       string `json:"file,omitempty"`
	Before     int    `json:"before_dedup"`
	After      int    `json:"after_dedup"`
	Written    int    `json:"written"`
	Skipped    int    `json:"skipped"`
	Unverified int    `json:"unverified"`
	Held       bool   `json:"held,omitempty"`
}

// GenreCount pairs a genre label with its track count.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// SamplePath is one diagnostic line: a track with location data and what became of it.
type SamplePath struct {
	Title    string `json:"title"`
	Location string `json:"location"`
	Path     string `json:"path,omitempty"`
	Status   string `json:"status"`
	Issue    string `json:"issue,omitempty"`
}
