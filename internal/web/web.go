// Package web holds the server-rendered HTML surface of the karaoke app.
//
// # Architecture
//
// The board page is classic server-side rendering: one request, one full
// page. The server package builds a [BoardData] snapshot from the library
// and the auth registry, and executes the embedded board template against
// it. There is no client-side state; submitting a song or a score goes
// through the JSON API and a reload shows the result.
//
// Templates live in templates/ and are embedded so the binary stays
// self-contained. [Templates] parses them once at startup; a parse failure
// is a build defect, not a runtime condition, which is why the server
// treats it as fatal.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/desertthunder/jingletube/internal/models"
	"github.com/desertthunder/jingletube/internal/youtube"
)

//go:embed templates/*.html
var templateFS embed.FS

// BoardTemplate is the name of the main scoreboard page template.
const BoardTemplate = "board.html"

// funcs are the helpers available inside templates.
var funcs = template.FuncMap{
	"add1": func(i int) int { return i + 1 },
	"watchURL": func(videoID string) string {
		return youtube.URL(videoID, youtube.KindVideo)
	},
	"thumbnailURL": func(videoID string) string {
		return youtube.ThumbnailURL(videoID, "mqdefault")
	},
}

// ProviderStatus is one row of the auth panel on the board page.
type ProviderStatus struct {
	ID    string
	Valid bool
}

// BoardData is the payload the board template renders.
type BoardData struct {
	Title         string
	Authenticated bool
	LoginEnabled  bool
	Providers     []ProviderStatus
	Songs         []models.Song
	Rankings      []models.Score
}

// Templates parses every embedded template with the helper funcs installed.
func Templates() (*template.Template, error) {
	t, err := template.New("web").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded templates: %w", err)
	}
	return t, nil
}

// Render executes the named template into w.
func Render(w io.Writer, t *template.Template, name string, data any) error {
	if err := t.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}
