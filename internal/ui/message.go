package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/jingletube/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSongsLoaded MsgKind = iota
	MsgSongAdded
	MsgScoreRecorded
	MsgRankingsLoaded
)

// addSongResult carries the outcome of a songbook insert.
type addSongResult struct {
	song models.Song
	err  error
}

// recordScoreResult carries the outcome of a score submission.
type recordScoreResult struct {
	score models.Score
	err   error
}

// songsLoadedMsg is the constructor for [MsgSongsLoaded]
func songsLoadedMsg(songs []models.Song) Msg {
	return Msg{kind: MsgSongsLoaded, data: songs}
}

// songAddedMsg is the constructor for [MsgSongAdded]
func songAddedMsg(song models.Song, err error) Msg {
	return Msg{kind: MsgSongAdded, data: addSongResult{song: song, err: err}}
}

// scoreRecordedMsg is the constructor for [MsgScoreRecorded]
func scoreRecordedMsg(score models.Score, err error) Msg {
	return Msg{kind: MsgScoreRecorded, data: recordScoreResult{score: score, err: err}}
}

// rankingsLoadedMsg is the constructor for [MsgRankingsLoaded]
func rankingsLoadedMsg(board string) Msg {
	return Msg{kind: MsgRankingsLoaded, data: board}
}
