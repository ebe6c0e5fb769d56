package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/jingletube/internal/auth"
	"github.com/desertthunder/jingletube/internal/library"
	"github.com/desertthunder/jingletube/internal/server"
	"github.com/desertthunder/jingletube/internal/services"
	"github.com/desertthunder/jingletube/internal/shared"
	"github.com/desertthunder/jingletube/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Provider ids used across the CLI and the web server.
const (
	hfProviderID  = server.DefaultOAuthProviderID
	devProviderID = "dev"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	hf         *services.HuggingFaceService
	dev        *services.DevAuthService
	manager    *auth.Manager
	library    *library.Library
	api        *services.APIService
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.SongbookEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	HuggingFace *services.HuggingFaceService
	Dev         *services.DevAuthService
	API         *services.APIService
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Dev == nil {
		devCfg := opts.Config.Credentials.Dev
		opts.Dev = services.NewDevAuthService(services.DevAuthOpts{
			Username:    devCfg.Username,
			Password:    devCfg.Password,
			TokenSecret: devCfg.TokenSecret,
			ExpiryHours: devCfg.TokenTTL,
			Debug:       devCfg.Debug,
			Logger:      opts.Logger,
		})
	}
	if opts.API == nil {
		baseURL := fmt.Sprintf("http://localhost:%d", opts.Config.Server.Port)
		opts.API = services.NewAPIService(baseURL, opts.HTTPClient)
	}

	lib := library.New(opts.Logger)
	if opts.Config.App.SeedDemo {
		lib.Seed()
	}

	manager := auth.NewManager(opts.Logger)
	if err := manager.RegisterProvider(opts.Dev.AsProvider(devProviderID)); err != nil {
		opts.Logger.Warn("failed to register provider", "id", devProviderID, "error", err)
	}
	if opts.HuggingFace != nil {
		if err := manager.RegisterProvider(opts.HuggingFace.AsProvider(hfProviderID)); err != nil {
			opts.Logger.Warn("failed to register provider", "id", hfProviderID, "error", err)
		}
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		hf:         opts.HuggingFace,
		dev:        opts.Dev,
		manager:    manager,
		library:    lib,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		engine:     tasks.NewSongbookEngine(opts.API),
	}

	r.adoptStoredTokens()

	return r
}

// adoptStoredTokens installs tokens persisted by a previous login into the
// Hugging Face service and the provider registry.
func (r *Runner) adoptStoredTokens() {
	if r.hf == nil {
		return
	}

	tok := r.config.Credentials.HuggingFace.Token()
	if tok == nil {
		return
	}

	r.hf.SetToken(tok)

	creds := auth.NewCredentials(auth.TypeOAuth2)
	creds.AccessToken = tok.AccessToken
	creds.RefreshToken = tok.RefreshToken
	if !tok.Expiry.IsZero() {
		creds.ExpiresIn = int(time.Until(tok.Expiry).Seconds())
	}

	if ok, err := r.manager.Authenticate(hfProviderID, creds); err != nil || !ok {
		r.logger.Warn("stored token rejected", "provider", hfProviderID, "error", err)
	}
}

// SetLogger replaces the runner's logger, e.g. to redirect output while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// saveTokens writes issued OAuth tokens into the config file. With no config
// path the tokens are kept in memory only.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("%w: config is nil", shared.ErrMissingConfig)
	}
	if token == nil {
		return fmt.Errorf("%w: token cannot be nil", shared.ErrInvalidCredentials)
	}

	r.config.Credentials.HuggingFace.Update(token)

	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.config, r.configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, authCommand, songsCommand, scoresCommand, videoCommand, exportCommand, apiCommand, setupCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
