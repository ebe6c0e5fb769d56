package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/jingletube/internal/formatter"
	"github.com/desertthunder/jingletube/internal/models"
	"github.com/desertthunder/jingletube/internal/shared"
	"github.com/urfave/cli/v3"
)

// ScoresAdd records a karaoke performance with a running server.
func (r *Runner) ScoresAdd(ctx context.Context, cmd *cli.Command) error {
	payload := map[string]any{
		"player":      cmd.String("singer"),
		"song":        cmd.String("song"),
		"score":       cmd.Int("points"),
		"notes_hit":   cmd.Int("hit"),
		"notes_total": cmd.Int("total"),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode score request: %w", err)
	}

	resp, err := r.api.Post(ctx, "/api/scores", body)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	var score models.Score
	if err := json.Unmarshal(resp.Body, &score); err != nil {
		return fmt.Errorf("failed to parse score response: %w", err)
	}

	r.writePlainln("%s", formatter.FormatScoreRegistered(score))
	r.writePlain("Accuracy: %.1f%%\n", score.Accuracy)

	return nil
}

// ScoresRankings fetches the leaderboard from a running server.
func (r *Runner) ScoresRankings(ctx context.Context, cmd *cli.Command) error {
	jsonOut := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	limit := cmd.Int("limit")

	path := "/api/rankings"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var scores []models.Score
	if err := json.Unmarshal(resp.Body, &scores); err != nil {
		return fmt.Errorf("failed to parse rankings response: %w", err)
	}

	if jsonOut {
		return r.writeJSON(scores, pretty)
	}

	return r.writePlainln("%s", formatter.FormatRankings(scores))
}

// scoresCommand records performances and shows the leaderboard
func scoresCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "scores",
		Usage: "Record karaoke scores and view rankings",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Record a karaoke performance",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "singer",
						Aliases:  []string{"s"},
						Usage:    "Name of the performer",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "song",
						Usage:    "Song that was performed",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "points",
						Aliases:  []string{"p"},
						Usage:    "Total points scored",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "hit",
						Usage:    "Number of notes hit",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "total",
						Usage:    "Total number of notes in the song",
						Required: true,
					},
				},
				Action: r.ScoresAdd,
			},
			{
				Name:  "rankings",
				Usage: "Show the current leaderboard",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"l"},
						Usage:   "Maximum number of entries to show",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty print JSON output",
					},
				},
				Action: r.ScoresRankings,
			},
		},
	}
}
