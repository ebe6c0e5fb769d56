// package tasks implements long-running songbook operations.
//
// The core abstraction is ExportEngine, which orchestrates bulk exports and server snapshots.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/jingletube/internal/models"
	"github.com/desertthunder/jingletube/internal/services"
	"github.com/desertthunder/jingletube/internal/shared"
)

// SongExportJob is one unit of work for the export worker pool.
type SongExportJob struct {
	Key  string      // Library key of the song
	Song models.Song // Song to export
}

// SongExportResult represents the outcome of exporting a single song.
type SongExportResult struct {
	SongKey   string   // Library key of the song
	SongTitle string   // Title for display
	Success   bool     // Whether the export completed
	Files     []string // Paths of files written
	Error     error    // Error if the export failed
}

// ExportResult contains all data from a bulk songbook export.
type ExportResult struct {
	TotalSongs        int                // Songs submitted to the pool
	SuccessfulExports int                // Songs exported without error
	FailedExports     int                // Songs that failed
	Results           []SongExportResult // Individual song results
	OutputDirectory   string             // Directory the export was written to
	ManifestPath      string             // Path of the manifest file
}

// EndpointResult represents the result of fetching data from a single API endpoint.
type EndpointResult struct {
	Endpoint string
	Data     any
	Error    error
}

// SnapshotResult contains all data fetched from a running karaoke server.
type SnapshotResult struct {
	Health   any              // Health status
	Songs    any              // Songbook contents
	Rankings any              // Current scoreboard
	Errors   []EndpointResult // Failed endpoint fetches
}

type endpointOperation struct {
	name    string
	path    string
	target  *any
	phase   Phase
	message string
}

// ExportEngine defines the long-running songbook operations.
type ExportEngine interface {
	// Export writes every song in the songbook to disk through a rate-limited
	// worker pool and finishes with a manifest file.
	Export(ctx context.Context, progress chan<- ProgressUpdate, export *models.SongbookExport, opts ExportOpts) (*ExportResult, error)

	// Snapshot fetches health, songs, and rankings from a running server.
	Snapshot(ctx context.Context, progress chan<- ProgressUpdate) (*SnapshotResult, error)
}

// SongbookEngine implements ExportEngine.
type SongbookEngine struct {
	api APIClient
}

// APIClient defines the interface for making API requests to a karaoke server.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type APIClient interface {
	Get(ctx context.Context, path string) (*services.APIResponse, error)
}

// NewSongbookEngine creates a new SongbookEngine. The API client may be nil
// when only local exports are needed.
func NewSongbookEngine(api APIClient) *SongbookEngine {
	return &SongbookEngine{api: api}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *SongbookEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Snapshot fetches all data from a running karaoke server.
func (e *SongbookEngine) Snapshot(ctx context.Context, progress chan<- ProgressUpdate) (*SnapshotResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	result := &SnapshotResult{
		Errors: []EndpointResult{},
	}

	endpoints := []endpointOperation{
		{name: "health", path: "/health", target: &result.Health, phase: FetchHealth, message: "Fetching health status..."},
		{name: "songs", path: "/api/songs", target: &result.Songs, phase: FetchSongs, message: "Fetching songs..."},
		{name: "rankings", path: "/api/rankings", target: &result.Rankings, phase: FetchRankings, message: "Fetching rankings..."},
	}

	totalSteps := len(endpoints)

	for i, endpoint := range endpoints {
		e.sendProgress(progress, operationUpdate(endpoint, i+1, totalSteps))

		resp, err := e.api.Get(ctx, endpoint.path)
		if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
			errMsg := ""
			if err != nil {
				errMsg = err.Error()
			} else {
				errMsg = fmt.Sprintf("status %d", resp.StatusCode)
			}
			result.Errors = append(result.Errors, EndpointResult{
				Endpoint: endpoint.path,
				Error:    fmt.Errorf("%s", errMsg),
			})
		} else {
			*endpoint.target = resp.JSONData
		}
	}

	return result, nil
}
