// package formatter provides functions to render the scoreboard and export songbook data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/jingletube/internal/models"
	"github.com/desertthunder/jingletube/internal/shared"
	"github.com/desertthunder/jingletube/internal/youtube"
)

// FormatRankings renders the scoreboard. Entries print in the order given,
// so callers pass an already ranked slice; an empty board gets the
// call-to-action line instead.
func FormatRankings(scores []models.Score) string {
	if len(scores) == 0 {
		return "No scores registered yet. Be the first to sing!"
	}

	var buf bytes.Buffer
	buf.WriteString("🏆 JingleTube Karaoke Rankings 🏆\n")
	buf.WriteString(strings.Repeat("=", 50) + "\n\n")

	for i, s := range scores {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, s.Singer))
		buf.WriteString(fmt.Sprintf("   Song: %s\n", s.Song))
		buf.WriteString(fmt.Sprintf("   Score: %d points\n", s.Points))
		buf.WriteString(fmt.Sprintf("   Accuracy: %.1f%%\n", s.Accuracy))
		buf.WriteString(fmt.Sprintf("   Notes: %d/%d\n\n", s.NotesHit, s.NotesTotal))
	}

	return buf.String()
}

// FormatSongAdded renders the confirmation line for a newly added song.
func FormatSongAdded(song models.Song) string {
	return fmt.Sprintf("✓ Successfully added '%s' by %s", song.Title, song.Artist)
}

// FormatScoreRegistered renders the confirmation line for a recorded score.
func FormatScoreRegistered(score models.Score) string {
	return fmt.Sprintf("✓ Score registered for %s: %d points (%.1f%% accuracy)", score.Singer, score.Points, score.Accuracy)
}

// ExportToCSV converts a SongbookExport to CSV format with columns: ID, Title, Artist, File Path, Video ID, Added At
func ExportToCSV(export *models.SongbookExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "File Path", "Video ID", "Added At"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range export.Songs {
		record := []string{
			song.ID,
			song.Title,
			song.Artist,
			song.FilePath,
			song.VideoID,
			song.AddedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a SongbookExport to Markdown format with optional cover image
func ExportToMarkdown(export *models.SongbookExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", export.Name))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	buf.WriteString(fmt.Sprintf("**Songs**: %d\n", len(export.Songs)))
	buf.WriteString(fmt.Sprintf("**Scores**: %d\n\n", len(export.Scores)))

	buf.WriteString("## Songs\n\n")
	for i, song := range export.Songs {
		videoPart := ""
		if song.VideoID != "" {
			videoPart = fmt.Sprintf(" ([video](%s))", youtube.URL(song.VideoID, youtube.KindShort))
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", i+1, song.Artist, song.Title, videoPart))
	}

	if len(export.Scores) > 0 {
		buf.WriteString("\n## Scores\n\n")
		for i, score := range export.Scores {
			buf.WriteString(fmt.Sprintf("%d. %s - %s: %d points (%.1f%%)\n", i+1, score.Singer, score.Song, score.Points, score.Accuracy))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a SongbookExport to plain text format
func ExportToText(export *models.SongbookExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Songbook: %s\n", export.Name))
	buf.WriteString(fmt.Sprintf("Songs: %d\n", len(export.Songs)))
	buf.WriteString(fmt.Sprintf("Scores: %d\n\n", len(export.Scores)))

	for i, song := range export.Songs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, song.Artist, song.Title))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a SongbookExport to indented JSON
func ExportToJSON(export *models.SongbookExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of songbook metadata (without entries)
func ToMetadataJSON(export *models.SongbookExport) ([]byte, error) {
	meta := map[string]any{
		"name":        export.Name,
		"songs":       len(export.Songs),
		"scores":      len(export.Scores),
		"exported_at": export.ExportedAt.Format(time.RFC3339),
	}
	return shared.MarshalJSON(meta, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	SongsFile    string
	MetadataFile string
}

// WriteCSVExport exports a songbook to CSV format with accompanying metadata JSON file.
//
// Defaults to "songbook" as the base filename & creates {base}_songs.csv and {base}_metadata.json
func WriteCSVExport(export *models.SongbookExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "songbook"
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	songsFile := baseFilepath + "_songs.csv"
	if err := os.WriteFile(songsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		SongsFile:    songsFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a songbook to Markdown format in a dedicated directory.
//
// Directory name defaults to "songbook".
// The imageURL parameter is optional - if provided, attempts to download the cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(export *models.SongbookExport, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "songbook"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a songbook to plain text format.
//
// Defaults to songbook_songs.txt as the filename.
func WriteTextExport(export *models.SongbookExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = "songbook_songs.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
