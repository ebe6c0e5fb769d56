package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/jingletube/internal/shared"
	"github.com/desertthunder/jingletube/internal/youtube"
	"github.com/urfave/cli/v3"
)

// thumbnailQualities orders YouTube thumbnail variants from smallest to largest.
var thumbnailQualities = []string{"default", "mqdefault", "hqdefault", "sddefault", "maxresdefault"}

// VideoParse extracts the video ID from a YouTube URL and prints every URL
// variant for it.
func (r *Runner) VideoParse(ctx context.Context, cmd *cli.Command) error {
	rawURL := cmd.StringArg("url")
	if rawURL == "" {
		return fmt.Errorf("%w: a YouTube URL or video ID is required", shared.ErrInvalidArgument)
	}

	video := youtube.Parse(rawURL)
	if video == nil {
		return fmt.Errorf("%w: %s", shared.ErrInvalidVideoURL, rawURL)
	}

	if cmd.Bool("json") {
		return r.writeJSON(video, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Video Details")
	r.writePlain("%-12s %s\n", "Video ID:", video.ID)
	r.writePlain("%-12s %s\n", "Watch:", video.WatchURL)
	r.writePlain("%-12s %s\n", "Short:", video.ShortURL)
	r.writePlain("%-12s %s\n", "Embed:", video.EmbedURL)
	r.writePlain("%-12s %s\n", "No-cookie:", video.NoCookieURL)
	r.writePlain("%-12s %s\n", "Thumbnail:", video.ThumbnailURL)

	return nil
}

// VideoThumbnails prints thumbnail URLs for a video, either a single quality
// or every known variant.
func (r *Runner) VideoThumbnails(ctx context.Context, cmd *cli.Command) error {
	rawURL := cmd.StringArg("url")
	if rawURL == "" {
		return fmt.Errorf("%w: a YouTube URL or video ID is required", shared.ErrInvalidArgument)
	}

	videoID := youtube.ExtractVideoID(rawURL)
	if videoID == "" {
		return fmt.Errorf("%w: %s", shared.ErrInvalidVideoURL, rawURL)
	}

	if quality := cmd.String("quality"); quality != "" {
		return r.writePlainln("%s", youtube.ThumbnailURL(videoID, quality))
	}

	thumbnails := youtube.AllThumbnailURLs(videoID)
	r.writePlainHeader(fmt.Sprintf("Thumbnails for %s", videoID))
	for _, quality := range thumbnailQualities {
		r.writePlain("%-14s %s\n", quality+":", thumbnails[quality])
	}

	return nil
}

// videoCommand works with YouTube backing track URLs
func videoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "video",
		Usage: "Parse YouTube URLs and build thumbnail links",
		Commands: []*cli.Command{
			{
				Name:  "parse",
				Usage: "Extract the video ID and URL variants from a YouTube URL",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
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
				Action: r.VideoParse,
			},
			{
				Name:  "thumbnails",
				Usage: "Print thumbnail URLs for a video",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "quality",
						Aliases: []string{"q"},
						Usage:   "Single quality to print (default, mqdefault, hqdefault, sddefault, maxresdefault)",
					},
				},
				Action: r.VideoThumbnails,
			},
		},
	}
}
