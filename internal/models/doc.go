// Package models defines the domain entities for the JingleTube karaoke service.
//
// The package contains plain structs shared across the library, the web API, and the export tasks:
//   - [Song] : One songbook entry, indexed by its lowercase artist_title key
//   - [Score] : One recorded performance with points, note counts, and derived accuracy
//   - [SongbookExport] : The full library contents bundled for export and formatting
//
// Each entity carries a Validate method checking required fields and value ranges.
// The JSON tags follow the web API's wire names (a Score's singer serializes as "player",
// its points as "score", and its recording time as "timestamp").
package models
