// package models defines the data model for the karaoke web service
package models

import (
	"fmt"
	"time"

	"github.com/desertthunder/jingletube/internal/shared"
)

// Song is one karaoke library entry. Key is the lowercase artist_title slug
// the library indexes by; VideoID is set when the song was added with a
// YouTube backing track.
type Song struct {
	ID       string    `json:"id"`
	Key      string    `json:"key"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	FilePath string    `json:"file_path,omitempty"`
	VideoID  string    `json:"video_id,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}

// Validate checks that the fields required to register the song are present.
func (s Song) Validate() error {
	if s.Title == "" {
		return fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}
	if s.Artist == "" {
		return fmt.Errorf("%w: artist", shared.ErrMissingArgument)
	}
	return nil
}

// Score is one recorded karaoke performance. Song carries the title as the
// singer entered it; performances are not cross-checked against the songbook.
type Score struct {
	ID         string    `json:"id"`
	Singer     string    `json:"player"`
	Song       string    `json:"song"`
	Points     int       `json:"score"`
	Accuracy   float64   `json:"accuracy"`
	NotesHit   int       `json:"notes_hit"`
	NotesTotal int       `json:"notes_total"`
	RecordedAt time.Time `json:"timestamp"`
}

// Validate checks identity fields and value ranges. Points and notes hit may
// be zero but never negative; a song always has at least one note.
func (s Score) Validate() error {
	if s.Singer == "" {
		return fmt.Errorf("%w: player", shared.ErrMissingArgument)
	}
	if s.Song == "" {
		return fmt.Errorf("%w: song", shared.ErrMissingArgument)
	}
	if s.Points < 0 || s.NotesHit < 0 || s.NotesTotal <= 0 {
		return fmt.Errorf("%w: score=%d hit=%d total=%d", shared.ErrInvalidScore, s.Points, s.NotesHit, s.NotesTotal)
	}
	return nil
}

// SongbookExport bundles the library contents for export tasks and the
// formatter.
type SongbookExport struct {
	Name       string    `json:"name"`
	Songs      []Song    `json:"songs"`
	Scores     []Score   `json:"scores"`
	ExportedAt time.Time `json:"exported_at"`
}
