// Package tasks orchestrates long-running songbook operations with real-time progress reporting.
//
// # Core Operations
//
// The [ExportEngine] interface defines two operations:
//
//  1. [ExportEngine.Export] : Bulk songbook export
//     - Fans songs out to a bounded worker pool
//     - Writes one JSON file per song, named by its library key
//     - Optionally downloads a thumbnail per song through a rate limiter
//     - Finishes with an export_manifest.json summarizing the run
//
//  2. [ExportEngine.Snapshot] : Fetch live state from a running server
//     - Retrieves health, songbook contents, and the current scoreboard
//     - Collects per-endpoint failures instead of aborting
//     - Returns structured data for backup or analysis
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Implementation
//
// [SongbookEngine] implements [ExportEngine] with dependencies on:
//   - [APIClient] : HTTP client for a running karaoke server (snapshots only)
//   - golang.org/x/time/rate : thumbnail download rate limiting
package tasks
