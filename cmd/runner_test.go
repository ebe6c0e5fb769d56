package main

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/jingletube/internal/services"
	"github.com/desertthunder/jingletube/internal/shared"
	tu "github.com/desertthunder/jingletube/internal/testing"
	"golang.org/x/oauth2"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			dev := services.NewDevAuthService(services.DevAuthOpts{Logger: logger})
			api := &services.APIService{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Dev:        dev,
				API:        api,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.dev != dev {
				t.Error("expected dev service to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be built")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Output: nil,
			})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				HTTPClient: nil,
			})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with empty configPath", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "",
			})

			if runner.configPath != "" {
				t.Errorf("expected empty configPath, got %s", runner.configPath)
			}
		})

		t.Run("builds a dev provider by default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.dev == nil {
				t.Fatal("expected dev service to be built")
			}

			found := false
			for _, id := range runner.manager.ListProviders() {
				if id == devProviderID {
					found = true
				}
			}
			if !found {
				t.Error("expected dev provider to be registered")
			}
		})

		t.Run("seeds the library when configured", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.App.SeedDemo = true

			runner := NewRunner(RunnerOpts{Config: config})

			if runner.library.SongCount() != 3 {
				t.Errorf("expected 3 demo songs, got %d", runner.library.SongCount())
			}
		})

		t.Run("skips seeding when disabled", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.App.SeedDemo = false

			runner := NewRunner(RunnerOpts{Config: config})

			if runner.library.SongCount() != 0 {
				t.Errorf("expected empty library, got %d songs", runner.library.SongCount())
			}
		})

		t.Run("adopts stored tokens into the registry", func(t *testing.T) {
			logger := shared.NewLogger(nil)
			config := shared.DefaultConfig()
			config.Credentials.HuggingFace.ClientID = "test_id"
			config.Credentials.HuggingFace.ClientSecret = "test_secret"
			config.Credentials.HuggingFace.AccessToken = "stored_access_token"
			config.Credentials.HuggingFace.RefreshToken = "stored_refresh_token"

			hf, err := services.NewHuggingFaceService(config.Credentials.HuggingFace, logger)
			if err != nil {
				t.Fatalf("failed to build hugging face service: %v", err)
			}

			runner := NewRunner(RunnerOpts{
				Config:      config,
				HuggingFace: hf,
				Logger:      logger,
			})

			creds, ok := runner.manager.Credentials(hfProviderID)
			if !ok {
				t.Fatal("expected stored credentials to be adopted")
			}
			if creds.AccessToken != "stored_access_token" {
				t.Errorf("expected stored access token, got %s", creds.AccessToken)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("saveTokens", func(t *testing.T) {
		t.Run("saves tokens successfully", func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.toml")

			config := shared.DefaultConfig()
			config.Credentials.HuggingFace.ClientID = "test_id"
			config.Credentials.HuggingFace.ClientSecret = "test_secret"

			if err := shared.SaveConfig(config, configPath); err != nil {
				t.Fatalf("failed to create test config: %v", err)
			}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: configPath,
			})

			token := &oauth2.Token{
				AccessToken:  "new_access_token",
				RefreshToken: "new_refresh_token",
			}

			err := runner.saveTokens(token)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			loadedConfig, err := shared.LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to reload config: %v", err)
			}

			if loadedConfig.Credentials.HuggingFace.AccessToken != "new_access_token" {
				t.Errorf("expected access token to be updated, got %s", loadedConfig.Credentials.HuggingFace.AccessToken)
			}
			if loadedConfig.Credentials.HuggingFace.RefreshToken != "new_refresh_token" {
				t.Errorf("expected refresh token to be updated, got %s", loadedConfig.Credentials.HuggingFace.RefreshToken)
			}
		})

		t.Run("handles nil config error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config:     nil,
				ConfigPath: "/tmp/test.toml",
			})

			runner.config = nil

			token := &oauth2.Token{AccessToken: "test"}
			err := runner.saveTokens(token)

			if err == nil {
				t.Fatal("expected error with nil config")
			}
			if !strings.Contains(err.Error(), "config is nil") {
				t.Errorf("expected nil config error, got %v", err)
			}
		})

		t.Run("handles nil token error", func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.toml")

			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: configPath,
			})

			err := runner.saveTokens(nil)
			if err == nil {
				t.Fatal("expected error with nil token")
			}
			if !strings.Contains(err.Error(), "token cannot be nil") {
				t.Errorf("expected nil token error, got %v", err)
			}
		})

		t.Run("handles empty configPath", func(t *testing.T) {
			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "",
			})

			token := &oauth2.Token{
				AccessToken:  "new_token",
				RefreshToken: "new_refresh",
			}

			err := runner.saveTokens(token)
			if err != nil {
				t.Fatalf("expected no error with empty path, got %v", err)
			}

			if config.Credentials.HuggingFace.AccessToken != "new_token" {
				t.Error("expected config to be updated in memory")
			}
		})

		t.Run("handles SaveConfig failure", func(t *testing.T) {
			config := shared.DefaultConfig()
			invalidPath := filepath.Join(t.TempDir(), "missing", "config.toml")

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: invalidPath,
			})

			token := &oauth2.Token{AccessToken: "test"}
			err := runner.saveTokens(token)

			if err == nil {
				t.Fatal("expected error with invalid path")
			}
			if !strings.Contains(err.Error(), "failed to save config") {
				t.Errorf("expected save config error, got %v", err)
			}
		})

		t.Run("updates config reference", func(t *testing.T) {
			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "",
			})

			originalAccess := config.Credentials.HuggingFace.AccessToken
			token := &oauth2.Token{
				AccessToken:  "updated_access",
				RefreshToken: "updated_refresh",
			}

			err := runner.saveTokens(token)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.config.Credentials.HuggingFace.AccessToken == originalAccess {
				t.Error("expected config reference to be updated")
			}
			if runner.config.Credentials.HuggingFace.AccessToken != "updated_access" {
				t.Errorf("expected updated access token in runner config")
			}
		})
	})
}
