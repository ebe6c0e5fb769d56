// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for running a karaoke session:
//  1. [SongListView] : Browse the songbook and pick a song to perform
//  2. [AddSongView] : Register a new song with an optional YouTube backing track
//  3. [ScoreEntryView] : Record a performance and its note accuracy
//  4. [RankingsView] : Display the scoreboard sorted by points
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// The model operates directly on an in-memory [library.Library], so commands resolve without network round trips.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, a/s/r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
