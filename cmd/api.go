package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/desertthunder/jingletube/internal/services"
	"github.com/desertthunder/jingletube/internal/shared"
	"github.com/desertthunder/jingletube/internal/tasks"
	"github.com/urfave/cli/v3"
)

// APIGet makes a direct GET request to a running server
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	useJSON := cmd.Bool("json")

	r.logger.Info("GET request", "path", path)

	resp, err := r.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if useJSON {
		if resp.IsJSON {
			return r.writeJSON(resp.JSONData, false)
		}
		r.output.Write(resp.Body)
		r.output.Write([]byte("\n"))
		return nil
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIPost makes a direct POST request to a running server. The body comes
// from --data, or is uploaded from a JSON file with --file.
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	data := cmd.String("data")
	filePath := cmd.String("file")

	var resp *services.APIResponse
	var err error

	switch {
	case filePath != "":
		fileData, readErr := shared.VerifyAndReadFile(filePath)
		if readErr != nil {
			return readErr
		}
		if jsonErr := shared.ValidateJSON(fileData); jsonErr != nil {
			return jsonErr
		}

		r.logger.Info("POST request", "path", path, "file", filePath)
		resp, err = r.api.UploadJSON(ctx, path, fileData)
	case data != "":
		var jsonTest any
		if jsonErr := json.Unmarshal([]byte(data), &jsonTest); jsonErr != nil {
			return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, jsonErr)
		}

		r.logger.Info("POST request", "path", path)
		resp, err = r.api.Post(ctx, path, []byte(data))
	default:
		return fmt.Errorf("%w: --data or --file is required", shared.ErrMissingArgument)
	}

	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, true)
	}

	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APISnapshot fetches and displays the full server state.
func (r *Runner) APISnapshot(ctx context.Context, cmd *cli.Command) error {
	pretty := cmd.Bool("pretty")
	save := cmd.Bool("save")

	r.logger.Info("snapshotting server state")
	r.writePlain("Fetching server state...\n\n")

	// Consume progress updates concurrently
	progressCh := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchHealth:
				r.writePlain("📊 %s\n", update.Message)
			case tasks.FetchSongs:
				r.writePlain("🎵 %s\n", update.Message)
			case tasks.FetchRankings:
				r.writePlain("🏆 %s\n", update.Message)
			default:
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.Snapshot(ctx, progressCh)
	close(progressCh)
	if err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}

	r.writePlain("\n✓ Snapshot complete\n\n")

	// Save to file if requested
	if save {
		saveFile := "api_snapshot.json"
		data, err := shared.MarshalJSON(result, true)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		if err := os.WriteFile(saveFile, data, 0644); err != nil {
			r.logger.Warn("failed to save snapshot", "error", err)
		} else {
			r.logger.Info("snapshot saved", "file", saveFile)
			r.writePlain("✓ Snapshot saved to %s\n\n", saveFile)
		}
	}

	// Output to console
	return r.writeJSON(result, pretty)
}

// apiCommand handles direct API calls and the state snapshot
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct API calls to a running karaoke server",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET to the server, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "JSON body to send",
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"F"},
						Usage:   "Upload the JSON body from a file",
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "snapshot",
				Usage: "Full server state snapshot (songs, rankings, health)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save snapshot to api_snapshot.json",
						Value: false,
					},
				},
				Action: r.APISnapshot,
			},
		},
	}
}
