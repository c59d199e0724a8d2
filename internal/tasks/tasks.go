// package tasks runs the library analysis pipeline: parse, resolve, classify, dedupe, shuffle, write, report.
//
// The core abstraction is Engine, which orchestrates one run over a library export or a directory of text exports.
// Operations emit progress updates via channels for non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/libsort/internal/classify"
	"github.com/desertthunder/libsort/internal/formatter"
	"github.com/desertthunder/libsort/internal/library"
	"github.com/desertthunder/libsort/internal/models"
	"github.com/desertthunder/libsort/internal/shared"
)

// EngineOpts contains the dependencies of an [Engine].
type EngineOpts struct {
	Config   *shared.Config
	Logger   *log.Logger
	Stat     library.StatFunc // defaults to os.Stat
	Shuffler *Shuffler        // defaults to a randomly seeded shuffler
	DryRun   bool             // build everything, write nothing
}

// Engine runs the pipeline. It holds only configuration; every run starts from scratch.
type Engine struct {
	config   *shared.Config
	logger   *log.Logger
	stat     library.StatFunc
	shuffler *Shuffler
	buckets  *classify.BPMBuckets
	genres   *classify.GenreGrouper
	dryRun   bool
}

// NewEngine validates the bucket configuration and creates an Engine.
func NewEngine(opts EngineOpts) (*Engine, error) {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Shuffler == nil {
		opts.Shuffler = NewShuffler(nil)
	}

	buckets, err := classify.NewBPMBuckets(opts.Config.BPM.Buckets)
	if err != nil {
		return nil, err
	}

	return &Engine{
		config:   opts.Config,
		logger:   opts.Logger,
		stat:     opts.Stat,
		shuffler: opts.Shuffler,
		buckets:  buckets,
		genres:   classify.NewGenreGrouper(opts.Config.Genre),
		dryRun:   opts.DryRun,
	}, nil
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run executes the full pipeline against the configured library and writes one playlist file per bucket.
//
// Parse failures return before the output directory is touched. Per-track problems are counted in the report.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate) (*models.Report, error) {
	return e.run(ctx, progress, false)
}

// Analyze parses, resolves and classifies the library and reports what each playlist would receive.
// Nothing is deduplicated, shuffled or written.
func (e *Engine) Analyze(ctx context.Context, progress chan<- ProgressUpdate) (*models.Report, error) {
	return e.run(ctx, progress, true)
}

func (e *Engine) run(ctx context.Context, progress chan<- ProgressUpdate, analyze bool) (*models.Report, error) {
	runID := shared.GenerateID()
	logger := shared.WithLogger(e.logger, "run", runID)
	path := e.config.Library.Path

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.sendProgress(progress, parsingUpdate(path))
	parsed, err := library.ParseFile(path)
	if err != nil {
		return nil, err
	}
	logger.Info("parsed library", "path", path, "tracks", len(parsed.Tracks), "skipped", parsed.Skipped())
	if parsed.SkippedDuplicateID > 0 {
		logger.Warn("tracks with a repeated identifier were dropped", "count", parsed.SkippedDuplicateID)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.resolve(parsed.Tracks, filepath.Dir(path), false, logger, progress)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	playlists := e.classify(parsed.Tracks, logger)
	e.sendProgress(progress, classifiedUpdate(playlists))

	if !analyze {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.dedupe(playlists, progress)

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.shuffle(playlists, progress)
	}
	e.hold(playlists, logger)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dryRun := e.dryRun || analyze
	if err := e.write(playlists, dryRun, logger, progress); err != nil {
		return nil, err
	}

	report, err := BuildReport(parsed.Tracks, parsed, playlists, e.reportOpts(runID, dryRun))
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, reportUpdate(report))
	logger.Info("run complete", "written", report.TracksWritten, "skipped", report.TracksSkipped, "duplicates", report.DuplicatesRemoved)
	return report, nil
}

// DedupeExports deduplicates and shuffles every "*.txt" playlist export in dir, writing
// "<name>_deduplicated.m3u" for each into the output directory.
func (e *Engine) DedupeExports(ctx context.Context, dir string, opts library.TextExportOptions, progress chan<- ProgressUpdate) (*models.Report, error) {
	runID := shared.GenerateID()
	logger := shared.WithLogger(e.logger, "run", runID)

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", shared.ErrLibraryNotFound, dir)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLibraryUnreadable, err)
	}
	if len(files) == 0 {
		logger.Warn("no playlist exports found", "dir", dir)
	}

	var tracks []*models.Track
	var playlists []*models.Playlist
	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.sendProgress(progress, ProgressUpdate{Phase: ParseLibrary, Step: i + 1, Total: len(files), Message: fmt.Sprintf("[%d/%d] Parsing %s...", i+1, len(files), filepath.Base(file))})

		parsed, err := parseExportFile(file, opts)
		if err != nil {
			return nil, err
		}
		stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		tracks = appendExportTracks(tracks, stem, parsed)

		pl := &models.Playlist{Kind: models.KindExport, Label: stem + "_deduplicated", Tracks: parsed, Before: len(parsed)}
		playlists = append(playlists, pl)
		logger.Debug("parsed playlist export", "file", file, "tracks", len(parsed))
	}

	e.resolve(tracks, dir, true, logger, progress)
	e.dedupe(playlists, progress)
	e.shuffle(playlists, progress)
	if err := e.write(playlists, e.dryRun, logger, progress); err != nil {
		return nil, err
	}

	return BuildReport(tracks, nil, playlists, e.reportOpts(runID, e.dryRun))
}

// appendExportTracks adds one export's tracks to the run, qualifying row ids with the export's name so they
// stay unique across files.
func appendExportTracks(tracks []*models.Track, stem string, parsed []*models.Track) []*models.Track {
	for _, t := range parsed {
		t.ID = stem + ":" + t.ID
		t.Index = len(tracks)
		tracks = append(tracks, t)
	}
	return tracks
}

func parseExportFile(path string, opts library.TextExportOptions) ([]*models.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrLibraryUnreadable, err)
	}
	defer f.Close()

	tracks, err := library.ParseTextExport(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tracks, nil
}

func (e *Engine) resolve(tracks []*models.Track, baseDir string, literal bool, logger *log.Logger, progress chan<- ProgressUpdate) {
	e.sendProgress(progress, resolvingUpdate(len(tracks)))
	resolver := library.NewResolver(library.ResolverOptions{
		CheckExists: e.config.Paths.CheckExists,
		Rewrite:     e.config.Paths.Rewrite,
		BaseDir:     baseDir,
		Literal:     literal,
		Stat:        e.stat,
	})
	resolver.ResolveAll(tracks)
	logger.Debug("resolved track locations", "tracks", len(tracks), "stat_calls", resolver.StatCalls())
}

// classify returns the BPM playlists in bucket order followed by the genre playlists in first-seen order.
func (e *Engine) classify(tracks []*models.Track, logger *log.Logger) []*models.Playlist {
	playlists, noTempo := e.buckets.Group(tracks)
	logger.Info("classified by tempo", "buckets", len(playlists), "unclassified", noTempo)

	if e.config.Genre.Enabled {
		genres, noGenre := e.genres.Group(tracks)
		logger.Info("grouped by genre", "genres", len(genres), "unclassified", noGenre)
		playlists = append(playlists, genres...)
	}
	return playlists
}

func (e *Engine) dedupe(playlists []*models.Playlist, progress chan<- ProgressUpdate) {
	removed := 0
	for _, pl := range playlists {
		DedupePlaylist(pl)
		removed += pl.Removed
	}
	e.sendProgress(progress, dedupedUpdate(removed))
}

func (e *Engine) shuffle(playlists []*models.Playlist, progress chan<- ProgressUpdate) {
	e.sendProgress(progress, shuffleUpdate(len(playlists)))
	for _, pl := range playlists {
		e.shuffler.Shuffle(pl.Tracks)
	}
}

// hold marks genre playlists smaller than genre.min_tracks so they are reported but not written.
func (e *Engine) hold(playlists []*models.Playlist, logger *log.Logger) {
	for _, pl := range playlists {
		if pl.Kind == models.KindGenre && len(pl.Tracks) < e.config.Genre.MinTracks {
			pl.Held = true
			logger.Debug("genre below minimum size", "genre", pl.Label, "tracks", len(pl.Tracks), "min", e.config.Genre.MinTracks)
		}
	}
}

func (e *Engine) write(playlists []*models.Playlist, dryRun bool, logger *log.Logger, progress chan<- ProgressUpdate) error {
	writer := formatter.NewPlaylistWriter(e.config.Output.Dir, formatter.PlaylistWriterOptions{
		Extended: e.config.Output.Extended,
		DryRun:   dryRun,
	})

	total := len(playlists)
	for i, pl := range playlists {
		if pl.Held {
			continue
		}
		e.sendProgress(progress, writingUpdate(i+1, total, pl))

		res, err := writer.Write(pl)
		if err != nil {
			return err
		}
		pl.Result = res

		if res.Written == 0 {
			logger.Warn("playlist has no valid paths", "playlist", pl.Title(), "skipped", res.Skipped)
		} else if res.Unverified > 0 {
			logger.Debug("playlist has unverified paths", "playlist", pl.Title(), "unverified", res.Unverified)
		}
		e.sendProgress(progress, writtenUpdate(i+1, total, pl))
	}
	return nil
}

func (e *Engine) reportOpts(runID string, dryRun bool) ReportOpts {
	return ReportOpts{
		RunID:      runID,
		SampleSize: e.config.Output.SampleSize,
		TopGenres:  e.config.Output.TopGenres,
		Genre:      e.config.Genre,
		DryRun:     dryRun,
	}
}
