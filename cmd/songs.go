package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/jingletube/internal/formatter"
	"github.com/desertthunder/jingletube/internal/models"
	"github.com/desertthunder/jingletube/internal/shared"
	"github.com/desertthunder/jingletube/internal/youtube"
	"github.com/urfave/cli/v3"
)

// SongsList fetches the songbook from a running server and prints it.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	jsonOut := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	resp, err := r.api.Get(ctx, "/api/songs")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var songs []models.Song
	if err := json.Unmarshal(resp.Body, &songs); err != nil {
		return fmt.Errorf("failed to parse songs response: %w", err)
	}

	if jsonOut {
		return r.writeJSON(songs, pretty)
	}

	r.writePlainHeader(fmt.Sprintf("Songbook (%d songs)", len(songs)))
	for i, song := range songs {
		r.writePlain("%d. %s - %s\n", i+1, song.Artist, song.Title)
		r.writePlain("   Key: %s\n", song.Key)
		if song.VideoID != "" {
			r.writePlain("   Video: %s\n", youtube.URL(song.VideoID, youtube.KindVideo))
		}
	}

	return nil
}

// SongsAdd registers a new song with a running server.
func (r *Runner) SongsAdd(ctx context.Context, cmd *cli.Command) error {
	title := cmd.String("title")
	artist := cmd.String("artist")
	filePath := cmd.String("file")
	videoURL := cmd.String("video")

	payload := map[string]string{
		"title":  title,
		"artist": artist,
	}
	if filePath != "" {
		payload["file_path"] = filePath
	}
	if videoURL != "" {
		payload["video_url"] = videoURL
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode song request: %w", err)
	}

	resp, err := r.api.Post(ctx, "/api/songs", body)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode == http.StatusConflict {
		return fmt.Errorf("%w: %s by %s", shared.ErrDuplicateSong, title, artist)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	var song models.Song
	if err := json.Unmarshal(resp.Body, &song); err != nil {
		return fmt.Errorf("failed to parse song response: %w", err)
	}

	r.writePlainln("%s", formatter.FormatSongAdded(song))
	r.writePlain("Key: %s\n", song.Key)
	if song.VideoID != "" {
		r.writePlain("Video ID: %s\n", song.VideoID)
	}

	return nil
}

// songsCommand manages the songbook through a running server
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Browse and grow the karaoke songbook",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all songs in the songbook",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty print JSON output",
					},
				},
				Action: r.SongsList,
			},
			{
				Name:  "add",
				Usage: "Add a song to the songbook",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Song title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "artist",
						Aliases:  []string{"a"},
						Usage:    "Artist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "file",
						Usage: "Path to a local backing track",
					},
					&cli.StringFlag{
						Name:  "video",
						Usage: "YouTube URL or video ID for the backing track",
					},
				},
				Action: r.SongsAdd,
			},
		},
	}
}
