package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	App         AppConfig         `toml:"app"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains provider-specific credentials.
type CredentialsConfig struct {
	HuggingFace HuggingFaceConfig `toml:"huggingface"`
	Dev         DevConfig         `toml:"dev"`
}

// HuggingFaceConfig contains Hugging Face OAuth credentials and the tokens
// issued for them.
type HuggingFaceConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	Scopes       string    `toml:"scopes"`
	AccessToken  string    `toml:"access_token,omitempty"`
	RefreshToken string    `toml:"refresh_token,omitempty"`
	Expiry       time.Time `toml:"expiry,omitempty"`
}

// Update copies the fields of an issued token into the config. A refresh
// response without a new refresh token keeps the previous one.
func (h *HuggingFaceConfig) Update(tok *oauth2.Token) {
	if tok == nil {
		return
	}
	h.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		h.RefreshToken = tok.RefreshToken
	}
	h.Expiry = tok.Expiry
}

// Token rebuilds the stored [oauth2.Token], or nil when nothing is stored.
func (h HuggingFaceConfig) Token() *oauth2.Token {
	if h.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  h.AccessToken,
		RefreshToken: h.RefreshToken,
		Expiry:       h.Expiry,
		TokenType:    "Bearer",
	}
}

// Map renders the config for status output. Secrets are reported as
// presence flags, never echoed.
func (h HuggingFaceConfig) Map() map[string]any {
	return map[string]any{
		"client_id":    h.ClientID,
		"redirect_uri": h.RedirectURI,
		"scopes":       h.Scopes,
		"has_secret":   h.ClientSecret != "",
		"has_token":    h.AccessToken != "",
		"has_refresh":  h.RefreshToken != "",
		"token_expiry": h.Expiry,
	}
}

// DevConfig contains development login settings.
type DevConfig struct {
	Username    string `toml:"username"`
	Password    string `toml:"password"`
	TokenSecret string `toml:"token_secret"`
	TokenTTL    int    `toml:"token_ttl_hours"`
	Debug       bool   `toml:"debug"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	LogPath   string `toml:"log_path"`
	ExportDir string `toml:"export_dir"`
	SeedDemo  bool   `toml:"seed_demo"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port pair the HTTP server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: config file already exists at %s", ErrInvalidArgument, path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the config to the specified path as TOML, replacing any existing file.
func SaveConfig(config *Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
