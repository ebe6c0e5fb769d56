package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchHealth Phase = iota
	FetchSongs
	FetchRankings
	ExportSong
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchHealth:
		return "fetch_health"
	case FetchSongs:
		return "fetch_songs"
	case FetchRankings:
		return "fetch_rankings"
	case ExportSong:
		return "export_song"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func operationUpdate(endpoint endpointOperation, step int, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   endpoint.phase,
		Step:    step,
		Total:   total,
		Message: endpoint.message,
	}
}

func exportStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSong,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Exporting songbook (%d songs)...", total),
	}
}

func exportingSongUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSong,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, title),
	}
}

func exportCompletedUpdate(step, total int, title string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSong,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, title, filesCount),
	}
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSong,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written: %s", path),
	}
}
