package tasks

import (
	"fmt"

	"github.com/desertthunder/libsort/internal/models"
)

// ProgressUpdate represents a progress event during a pipeline run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Pipeline stage
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Pipeline stage enumeration, in execution order
type Phase int

const (
	ParseLibrary Phase = iota
	ResolvePaths
	ClassifyTracks
	DedupeTracks
	ShuffleTracks
	WritePlaylists
	BuildSummary
)

func (p Phase) String() string {
	switch p {
	case ParseLibrary:
		return "parse"
	case ResolvePaths:
		return "resolve"
	case ClassifyTracks:
		return "classify"
	case DedupeTracks:
		return "dedupe"
	case ShuffleTracks:
		return "shuffle"
	case WritePlaylists:
		return "write"
	case BuildSummary:
		return "report"
	default:
		return ""
	}
}

func parsingUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ParseLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Parsing %s...", path),
	}
}

func resolvingUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolvePaths,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving %d track locations...", total),
	}
}

func classifiedUpdate(playlists []*models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClassifyTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Classified tracks into %d buckets", len(playlists)),
		Data:    playlists,
	}
}

func dedupedUpdate(removed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DedupeTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Removed %d duplicates", removed),
	}
}

func shuffleUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ShuffleTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Shuffling %d playlists...", count),
	}
}

func writingUpdate(step, total int, pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WritePlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Writing: %s...", step, total, pl.Title()),
	}
}

func writtenUpdate(step, total int, pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WritePlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tracks)", step, total, pl.Title(), pl.Result.Written),
		Data:    pl,
	}
}

func reportUpdate(r *models.Report) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildSummary,
		Step:    1,
		Total:   1,
		Message: "Building library report...",
		Data:    r,
	}
}
