// package library holds the in-memory songbook and scoreboard.
//
// Songs are keyed by the lowercase artist_title slug so the same song cannot
// be added twice under cosmetic variations. Scores are an append-only log;
// rankings are computed on read. Nothing here persists across restarts.
package library

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jingletube/internal/models"
	"github.com/desertthunder/jingletube/internal/shared"
	"github.com/desertthunder/jingletube/internal/youtube"
)

// DefaultRankingLimit caps rankings when the caller does not pass a limit.
const DefaultRankingLimit = 10

// Library is the shared in-memory store behind the web server, the TUI, and
// the CLI. One RWMutex guards both collections.
type Library struct {
	mu     sync.RWMutex
	songs  map[string]models.Song
	scores []models.Score
	logger *log.Logger
}

// New constructs an empty library. A nil logger falls back to the package
// default.
func New(logger *log.Logger) *Library {
	if logger == nil {
		logger = log.Default()
	}
	return &Library{
		songs:  map[string]models.Song{},
		logger: logger,
	}
}

// AddSong registers a song under its artist_title key. An optional video URL
// or bare id is parsed into the stored VideoID; an unparseable one fails the
// add. Duplicate keys are rejected.
func (l *Library) AddSong(title, artist, filePath, videoURL string) (models.Song, error) {
	song := models.Song{
		ID:       shared.GenerateID(),
		Key:      shared.SongKey(artist, title),
		Title:    title,
		Artist:   artist,
		FilePath: filePath,
		AddedAt:  time.Now(),
	}
	if err := song.Validate(); err != nil {
		return models.Song{}, err
	}

	if videoURL != "" {
		videoID := youtube.ExtractVideoID(videoURL)
		if videoID == "" {
			return models.Song{}, fmt.Errorf("%w: %s", shared.ErrInvalidVideoURL, videoURL)
		}
		song.VideoID = videoID
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.songs[song.Key]; exists {
		return models.Song{}, fmt.Errorf("%w: %q by %s", shared.ErrDuplicateSong, title, artist)
	}

	l.songs[song.Key] = song
	l.logger.Info("added song", "title", title, "artist", artist, "key", song.Key)
	return song, nil
}

// Song returns the entry stored under key.
func (l *Library) Song(key string) (models.Song, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	song, ok := l.songs[key]
	return song, ok
}

// Songs returns every entry ordered by key.
func (l *Library) Songs() []models.Song {
	l.mu.RLock()
	defer l.mu.RUnlock()

	songs := make([]models.Song, 0, len(l.songs))
	for _, song := range l.songs {
		songs = append(songs, song)
	}
	sort.Slice(songs, func(i, j int) bool { return songs[i].Key < songs[j].Key })
	return songs
}

// SongCount reports the number of registered songs.
func (l *Library) SongCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.songs)
}

// AddScore records a performance. The song title is stored as entered; the
// accuracy percentage is derived from the note counts.
func (l *Library) AddScore(singer, song string, points, notesHit, notesTotal int) (models.Score, error) {
	score := models.Score{
		ID:         shared.GenerateID(),
		Singer:     singer,
		Song:       song,
		Points:     points,
		NotesHit:   notesHit,
		NotesTotal: notesTotal,
		RecordedAt: time.Now(),
	}
	if err := score.Validate(); err != nil {
		return models.Score{}, err
	}
	score.Accuracy = float64(notesHit) / float64(notesTotal) * 100

	l.mu.Lock()
	defer l.mu.Unlock()

	l.scores = append(l.scores, score)
	l.logger.Info("recorded score", "player", singer, "song", song, "score", points)
	return score, nil
}

// ScoreCount reports the number of recorded performances.
func (l *Library) ScoreCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.scores)
}

// Rankings returns the top performances ordered by points descending. Ties
// keep their recording order. A non-positive limit falls back to
// [DefaultRankingLimit].
func (l *Library) Rankings(limit int) []models.Score {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	ranked := make([]models.Score, len(l.scores))
	copy(ranked, l.scores)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Points > ranked[j].Points })

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// ScoresForSinger returns every performance recorded for a singer, oldest
// first. Matching ignores case.
func (l *Library) ScoresForSinger(singer string) []models.Score {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var scores []models.Score
	for _, score := range l.scores {
		if strings.EqualFold(score.Singer, singer) {
			scores = append(scores, score)
		}
	}
	return scores
}

// ScoresForSong returns every performance of a song, oldest first. Matching
// ignores case.
func (l *Library) ScoresForSong(song string) []models.Score {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var scores []models.Score
	for _, score := range l.scores {
		if strings.EqualFold(score.Song, song) {
			scores = append(scores, score)
		}
	}
	return scores
}

// Seed loads a handful of demo songs so a fresh process has something to
// show. Entries that already exist are skipped.
func (l *Library) Seed() {
	demo := []struct {
		title, artist, videoID string
	}{
		{"Take On Me", "a-ha", "djV11Xbc914"},
		{"Bohemian Rhapsody", "Queen", "fJ9rUzIMcZQ"},
		{"Dancing Queen", "ABBA", "xFrGuyw1V8s"},
	}

	seeded := 0
	for _, d := range demo {
		if _, err := l.AddSong(d.title, d.artist, "", d.videoID); err == nil {
			seeded++
		}
	}
	l.logger.Info("seeded demo songs", "count", seeded)
}
