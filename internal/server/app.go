package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/jingletube/internal/auth"
	"github.com/desertthunder/jingletube/internal/library"
	"github.com/desertthunder/jingletube/internal/models"
	"github.com/desertthunder/jingletube/internal/services"
	"github.com/desertthunder/jingletube/internal/shared"
	"github.com/desertthunder/jingletube/internal/web"
	"github.com/desertthunder/jingletube/internal/youtube"
)

// DefaultOAuthProviderID is the manager id browser logins authenticate against.
const DefaultOAuthProviderID = "huggingface"

// AppOpts configures [NewApp]. Library and Manager are required; a nil OAuth
// service disables the browser login route.
type AppOpts struct {
	Library    *library.Library
	Manager    *auth.Manager
	OAuth      services.OAuthService
	ProviderID string
	Logger     *log.Logger
	Templates  *template.Template
}

// App serves the scoreboard page and the JSON API over a shared songbook and
// credential registry. Implements the [Handler] interface so it registers on
// a [Router] as a single catch-all handler with its own internal dispatch.
type App struct {
	library    *library.Library
	manager    *auth.Manager
	oauth      services.OAuthService
	providerID string
	logger     *log.Logger
	templates  *template.Template
	mux        *http.ServeMux

	mu     sync.Mutex
	states map[string]struct{}
}

// NewApp builds the application handler and registers its routes.
func NewApp(opts AppOpts) (*App, error) {
	if opts.Library == nil {
		return nil, fmt.Errorf("%w: library is required", shared.ErrMissingConfig)
	}
	if opts.Manager == nil {
		return nil, fmt.Errorf("%w: auth manager is required", shared.ErrMissingConfig)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	templates := opts.Templates
	if templates == nil {
		var err error
		if templates, err = web.Templates(); err != nil {
			return nil, err
		}
	}

	providerID := opts.ProviderID
	if providerID == "" {
		providerID = DefaultOAuthProviderID
	}

	app := &App{
		library:    opts.Library,
		manager:    opts.Manager,
		oauth:      opts.OAuth,
		providerID: providerID,
		logger:     logger,
		templates:  templates,
		mux:        http.NewServeMux(),
		states:     map[string]struct{}{},
	}
	app.routes()

	return app, nil
}

func (a *App) routes() {
	a.mux.HandleFunc("GET /{$}", a.handleBoard)
	a.mux.HandleFunc("GET /health", a.handleHealth)
	a.mux.HandleFunc("GET /api/songs", a.handleListSongs)
	a.mux.HandleFunc("POST /api/songs", a.handleAddSong)
	a.mux.HandleFunc("GET /api/songs/{key}", a.handleGetSong)
	a.mux.HandleFunc("POST /api/scores", a.handleAddScore)
	a.mux.HandleFunc("GET /api/rankings", a.handleRankings)
	a.mux.HandleFunc("GET /api/videos/parse", a.handleParseVideo)
	a.mux.HandleFunc("GET /api/export", a.handleExport)
	a.mux.HandleFunc("GET /auth/login", a.handleLogin)
	a.mux.HandleFunc("GET /auth/callback", a.handleCallback)
	a.mux.HandleFunc("GET /auth/status", a.handleAuthStatus)
	a.mux.HandleFunc("POST /auth/logout", a.handleLogout)
}

// Routes returns the path patterns this handler serves.
func (a *App) Routes() []string {
	return []string{"/"}
}

// ServeHTTP dispatches to the route handlers.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *App) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("failed to encode response", "error", err)
	}
}

func (a *App) respondError(w http.ResponseWriter, status int, err error) {
	a.respondJSON(w, status, map[string]string{"error": err.Error()})
}

// handleBoard renders the scoreboard page: rankings, songbook, and the
// session state of every registered provider.
func (a *App) handleBoard(w http.ResponseWriter, r *http.Request) {
	status := a.manager.Status()
	authenticated := false

	providers := make([]web.ProviderStatus, 0, len(status))
	for _, id := range a.manager.ListProviders() {
		valid := status[id]
		providers = append(providers, web.ProviderStatus{ID: id, Valid: valid})
		if valid {
			authenticated = true
		}
	}

	data := web.BoardData{
		Title:         "JingleTube Karaoke",
		Authenticated: authenticated,
		LoginEnabled:  a.oauth != nil && !authenticated,
		Providers:     providers,
		Songs:         a.library.Songs(),
		Rankings:      a.library.Rankings(library.DefaultRankingLimit),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := web.Render(w, a.templates, web.BoardTemplate, data); err != nil {
		a.logger.Error("failed to render board", "error", err)
	}
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	authenticated := false
	for _, valid := range a.manager.Status() {
		if valid {
			authenticated = true
			break
		}
	}

	a.respondJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"songs":         a.library.SongCount(),
		"scores":        a.library.ScoreCount(),
		"authenticated": authenticated,
	})
}

func (a *App) handleListSongs(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, a.library.Songs())
}

type addSongRequest struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	FilePath string `json:"file_path"`
	VideoURL string `json:"video_url"`
}

func (a *App) handleAddSong(w http.ResponseWriter, r *http.Request) {
	var req addSongRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}

	song, err := a.library.AddSong(req.Title, req.Artist, req.FilePath, req.VideoURL)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, shared.ErrDuplicateSong) {
			status = http.StatusConflict
		}
		a.respondError(w, status, err)
		return
	}

	a.logger.Info("song added", "key", song.Key)
	a.respondJSON(w, http.StatusCreated, song)
}

func (a *App) handleGetSong(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	song, ok := a.library.Song(key)
	if !ok {
		a.respondError(w, http.StatusNotFound, fmt.Errorf("%w: %s", shared.ErrSongNotFound, key))
		return
	}

	a.respondJSON(w, http.StatusOK, song)
}

type addScoreRequest struct {
	Singer     string `json:"player"`
	Song       string `json:"song"`
	Points     int    `json:"score"`
	NotesHit   int    `json:"notes_hit"`
	NotesTotal int    `json:"notes_total"`
}

func (a *App) handleAddScore(w http.ResponseWriter, r *http.Request) {
	var req addScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}

	score, err := a.library.AddScore(req.Singer, req.Song, req.Points, req.NotesHit, req.NotesTotal)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err)
		return
	}

	a.logger.Info("score recorded", "singer", score.Singer, "points", score.Points)
	a.respondJSON(w, http.StatusCreated, score)
}

func (a *App) handleRankings(w http.ResponseWriter, r *http.Request) {
	limit := library.DefaultRankingLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			a.respondError(w, http.StatusBadRequest, fmt.Errorf("%w: limit must be a positive integer", shared.ErrInvalidArgument))
			return
		}
		limit = parsed
	}

	a.respondJSON(w, http.StatusOK, a.library.Rankings(limit))
}

func (a *App) handleParseVideo(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		a.respondError(w, http.StatusBadRequest, fmt.Errorf("%w: url query parameter is required", shared.ErrMissingArgument))
		return
	}

	video := youtube.Parse(raw)
	if video == nil {
		a.respondError(w, http.StatusBadRequest, fmt.Errorf("%w: %s", shared.ErrInvalidVideoURL, raw))
		return
	}

	a.respondJSON(w, http.StatusOK, video)
}

func (a *App) handleExport(w http.ResponseWriter, r *http.Request) {
	export := models.SongbookExport{
		Name:       "JingleTube Songbook",
		Songs:      a.library.Songs(),
		Scores:     a.library.Rankings(a.library.ScoreCount()),
		ExportedAt: time.Now().UTC(),
	}

	a.respondJSON(w, http.StatusOK, export)
}

// handleLogin starts the browser OAuth flow: a fresh state token is parked
// until the callback returns with it.
func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if a.oauth == nil {
		a.respondError(w, http.StatusServiceUnavailable, fmt.Errorf("%w: OAuth login is not configured", shared.ErrServiceUnavailable))
		return
	}

	state := shared.GenerateState()
	a.mu.Lock()
	a.states[state] = struct{}{}
	a.mu.Unlock()

	http.Redirect(w, r, a.oauth.AuthURL(state), http.StatusFound)
}

// handleCallback finishes the browser OAuth flow and installs the exchanged
// token in the credential registry.
func (a *App) handleCallback(w http.ResponseWriter, r *http.Request) {
	if a.oauth == nil {
		a.respondError(w, http.StatusServiceUnavailable, fmt.Errorf("%w: OAuth login is not configured", shared.ErrServiceUnavailable))
		return
	}

	state := r.URL.Query().Get("state")
	a.mu.Lock()
	_, known := a.states[state]
	delete(a.states, state)
	a.mu.Unlock()

	if !known {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		a.logger.Warn("authorization denied",
			"error", r.URL.Query().Get("error"),
			"description", r.URL.Query().Get("error_description"),
		)
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := a.oauth.Exchange(context.Background(), code)
	if err != nil {
		a.logger.Error("token exchange failed", "error", err)
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	creds := auth.NewCredentials(auth.TypeOAuth2)
	creds.AccessToken = token.AccessToken
	creds.RefreshToken = token.RefreshToken
	if !token.Expiry.IsZero() {
		creds.ExpiresIn = int(time.Until(token.Expiry).Seconds())
	}

	if ok, err := a.manager.Authenticate(a.providerID, creds); err != nil || !ok {
		a.logger.Error("failed to install token", "provider", a.providerID, "error", err)
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	a.logger.Info("browser login complete", "provider", a.providerID)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *App) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, a.manager.Status())
}

// handleLogout revokes the credentials for one provider, the configured OAuth
// provider unless the request names another.
func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("provider")
	if id == "" {
		id = a.providerID
	}

	revoked := a.manager.RevokeCredentials(id)
	a.respondJSON(w, http.StatusOK, map[string]any{"provider": id, "revoked": revoked})
}
