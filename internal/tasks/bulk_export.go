package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/jingletube/internal/formatter"
	"github.com/desertthunder/jingletube/internal/models"
	"github.com/desertthunder/jingletube/internal/shared"
	"github.com/desertthunder/jingletube/internal/youtube"
	"golang.org/x/time/rate"
)

// ExportOpts contains configuration for bulk songbook exports.
type ExportOpts struct {
	OutputDir      string                                                    // Base output directory (default: jingletube_export_{epoch})
	NumWorkers     int                                                       // Concurrent workers (default: 5)
	RateLimit      float64                                                   // Thumbnail downloads per second (default: 5)
	Thumbnails     bool                                                      // Download a thumbnail for songs with a video id
	FetchThumbnail func(ctx context.Context, videoID string) ([]byte, error) // Fetcher override for tests
}

// Export writes every song in the songbook to disk concurrently with rate
// limiting and progress tracking.
//
// This method implements a worker pool pattern. Each song becomes one JSON
// file named by its library key, plus a thumbnail image when requested and
// available. Thumbnail downloads go through the rate limiter; partial
// failures are recorded per song and the run finishes with a manifest file
// summarizing the results.
func (e *SongbookEngine) Export(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	export *models.SongbookExport,
	opts ExportOpts,
) (*ExportResult, error) {
	if export == nil {
		return nil, fmt.Errorf("%w: no songbook to export", shared.ErrInvalidInput)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("jingletube_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.FetchThumbnail == nil {
		opts.FetchThumbnail = fetchThumbnail
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	total := len(export.Songs)
	result := &ExportResult{
		TotalSongs:      total,
		OutputDirectory: opts.OutputDir,
		Results:         make([]SongExportResult, 0, total),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan SongExportJob, total)
	results := make(chan SongExportResult, total)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, limiter, jobs, results, opts)
	}

	go func() {
		e.sendProgress(prog, exportStartUpdate(total))
		for i, song := range export.Songs {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			jobs <- SongExportJob{
				Key:  song.Key,
				Song: song,
			}

			e.sendProgress(prog, exportingSongUpdate(i+1, total, song.Title))
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(
				completed,
				total,
				res.SongTitle,
				len(res.Files),
			))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(
				completed,
				total,
				res.SongTitle,
				res.Error,
			))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := e.writeManifest(export, result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// exportWorker is a worker goroutine that exports songs from the jobs channel.
func (e *SongbookEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan SongExportJob,
	results chan<- SongExportResult,
	opts ExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := e.exportSingleSong(ctx, limiter, job, opts)
		results <- res
	}
}

// exportSingleSong writes one song's JSON file and its optional thumbnail.
func (e *SongbookEngine) exportSingleSong(
	ctx context.Context,
	limiter *rate.Limiter,
	j SongExportJob,
	opts ExportOpts,
) SongExportResult {
	result := SongExportResult{
		SongKey:   j.Key,
		SongTitle: j.Song.Title,
		Success:   false,
		Files:     []string{},
	}

	data, err := shared.MarshalJSON(j.Song, true)
	if err != nil {
		result.Error = fmt.Errorf("JSON marshal failed: %w", err)
		return result
	}

	songPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.json", j.Key))
	if err := os.WriteFile(songPath, data, 0644); err != nil {
		result.Error = fmt.Errorf("JSON write failed: %w", err)
		return result
	}
	result.Files = append(result.Files, songPath)
	result.Success = true

	if !opts.Thumbnails || j.Song.VideoID == "" {
		return result
	}

	// Thumbnail failures leave the song exported without an image.
	if err := limiter.Wait(ctx); err != nil {
		return result
	}
	imageData, err := opts.FetchThumbnail(ctx, j.Song.VideoID)
	if err != nil {
		return result
	}

	thumbPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.jpg", j.Key))
	if err := os.WriteFile(thumbPath, imageData, 0644); err != nil {
		return result
	}
	result.Files = append(result.Files, thumbPath)
	return result
}

// writeManifest summarizes the export run as export_manifest.json.
func (e *SongbookEngine) writeManifest(export *models.SongbookExport, result *ExportResult, path string) error {
	entries := make([]map[string]any, 0, len(result.Results))
	for _, res := range result.Results {
		entry := map[string]any{
			"key":    res.SongKey,
			"title":  res.SongTitle,
			"status": "success",
			"files":  res.Files,
		}
		if !res.Success {
			entry["status"] = "failed"
			if res.Error != nil {
				entry["error"] = res.Error.Error()
			}
		}
		entries = append(entries, entry)
	}

	manifest := map[string]any{
		"name":               export.Name,
		"exported_at":        time.Now().UTC().Format(time.RFC3339),
		"output_directory":   result.OutputDirectory,
		"total_songs":        result.TotalSongs,
		"successful_exports": result.SuccessfulExports,
		"failed_exports":     result.FailedExports,
		"results":            entries,
	}

	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// fetchThumbnail is the default thumbnail fetcher.
func fetchThumbnail(_ context.Context, videoID string) ([]byte, error) {
	return formatter.DownloadImage(youtube.ThumbnailURL(videoID, youtube.DefaultQuality))
}
