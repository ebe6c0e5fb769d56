package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/desertthunder/jingletube/internal/formatter"
	"github.com/desertthunder/jingletube/internal/models"
	"github.com/desertthunder/jingletube/internal/shared"
	"github.com/desertthunder/jingletube/internal/tasks"
	"github.com/desertthunder/jingletube/internal/youtube"
	"github.com/urfave/cli/v3"
)

// ExportRun exports the songbook to disk using the concurrent export engine.
// The songbook comes from a running server when one is reachable, otherwise
// from the in-process library.
func (r *Runner) ExportRun(ctx context.Context, cmd *cli.Command) error {
	outputDir := cmd.String("output")
	if outputDir == "" {
		outputDir = r.config.App.ExportDir
	}
	workers := cmd.Int("workers")
	rate := cmd.Int("rate")
	thumbnails := cmd.Bool("thumbnails")
	local := cmd.Bool("local")
	format := cmd.String("format")

	var export *models.SongbookExport
	if local {
		export = r.localExport()
	} else {
		fetched, err := r.fetchExport(ctx)
		if err != nil {
			r.writePlain("⚠ No running server, exporting the local songbook instead.\n\n")
			export = r.localExport()
		} else {
			export = fetched
		}
	}

	if len(export.Songs) == 0 {
		return fmt.Errorf("%w: the songbook is empty", shared.ErrInvalidArgument)
	}

	if format != "" {
		return r.writeFormatted(export, format, outputDir)
	}

	// Consume progress updates concurrently
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.ExportSong:
				r.writePlain("🎵 %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			default:
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.Export(ctx, progressCh, export, tasks.ExportOpts{
		OutputDir:  outputDir,
		NumWorkers: workers,
		RateLimit:  float64(rate),
		Thumbnails: thumbnails,
	})
	close(progressCh)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlainHeader("Export Complete!")
	r.writePlain("Songs exported: %d/%d\n", result.SuccessfulExports, result.TotalSongs)
	if result.FailedExports > 0 {
		r.writePlain("Failed: %d\n", result.FailedExports)
		for _, songResult := range result.Results {
			if !songResult.Success {
				r.writePlain("  ✗ %s: %v\n", songResult.SongTitle, songResult.Error)
			}
		}
	}
	r.writePlain("Output: %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	return nil
}

// writeFormatted writes the songbook in a single-file format instead of the
// per-song export tree.
func (r *Runner) writeFormatted(export *models.SongbookExport, format, outputDir string) error {
	if outputDir == "" {
		outputDir = "."
	}

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(export, filepath.Join(outputDir, "songbook"))
		if err != nil {
			return fmt.Errorf("csv export failed: %w", err)
		}
		r.writePlain("✓ Wrote %s\n", result.SongsFile)
		r.writePlain("✓ Wrote %s\n", result.MetadataFile)
	case "markdown", "md":
		imageURL := ""
		for _, song := range export.Songs {
			if song.VideoID != "" {
				imageURL = youtube.ThumbnailURL(song.VideoID, youtube.DefaultQuality)
				break
			}
		}
		result, err := formatter.WriteMarkdownExport(export, outputDir, imageURL)
		if err != nil {
			return fmt.Errorf("markdown export failed: %w", err)
		}
		for _, file := range result.Files {
			r.writePlain("✓ Wrote %s\n", file)
		}
	case "text", "txt":
		path, err := formatter.WriteTextExport(export, filepath.Join(outputDir, "songbook_songs.txt"))
		if err != nil {
			return fmt.Errorf("text export failed: %w", err)
		}
		r.writePlain("✓ Wrote %s\n", path)
	default:
		return fmt.Errorf("%w: unknown format '%s' (use csv, markdown or text)", shared.ErrInvalidFlag, format)
	}

	return nil
}

// localExport snapshots the in-process library.
func (r *Runner) localExport() *models.SongbookExport {
	return &models.SongbookExport{
		Name:       "JingleTube Songbook",
		Songs:      r.library.Songs(),
		Scores:     r.library.Rankings(r.library.ScoreCount()),
		ExportedAt: time.Now().UTC(),
	}
}

// fetchExport pulls the songbook from a running server.
func (r *Runner) fetchExport(ctx context.Context) (*models.SongbookExport, error) {
	resp, err := r.api.Get(ctx, "/api/export")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var export models.SongbookExport
	if err := json.Unmarshal(resp.Body, &export); err != nil {
		return nil, fmt.Errorf("failed to parse export response: %w", err)
	}

	return &export, nil
}

// exportCommand exports the songbook to disk
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the songbook to disk",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a bulk export of the songbook",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of concurrent export workers",
						Value:   5,
					},
					&cli.IntFlag{
						Name:  "rate",
						Usage: "Thumbnail downloads per second",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "thumbnails",
						Usage: "Download thumbnails for songs with a video",
					},
					&cli.BoolFlag{
						Name:  "local",
						Usage: "Export the in-process songbook without contacting a server",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Single-file format instead of the export tree (csv, markdown, text)",
					},
				},
				Action: r.ExportRun,
			},
		},
	}
}
