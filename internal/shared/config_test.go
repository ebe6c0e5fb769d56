package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Host != "0.0.0.0" {
			t.Errorf("expected server host 0.0.0.0, got %s", config.Server.Host)
		}

		if config.Server.Port != 7860 {
			t.Errorf("expected server port 7860, got %d", config.Server.Port)
		}

		if config.Server.Addr() != "0.0.0.0:7860" {
			t.Errorf("expected addr 0.0.0.0:7860, got %s", config.Server.Addr())
		}

		if config.Credentials.HuggingFace.ClientID != "" {
			t.Errorf("expected hf client_id to default empty, got %s", config.Credentials.HuggingFace.ClientID)
		}

		if config.Credentials.HuggingFace.RedirectURI != "http://localhost:7860/auth/callback" {
			t.Errorf("unexpected hf redirect_uri %s", config.Credentials.HuggingFace.RedirectURI)
		}

		if config.Credentials.Dev.Username != "dev_user" {
			t.Errorf("expected dev username dev_user, got %s", config.Credentials.Dev.Username)
		}

		if config.Credentials.Dev.TokenTTL != 24 {
			t.Errorf("expected dev token ttl 24, got %d", config.Credentials.Dev.TokenTTL)
		}

		if !config.App.SeedDemo {
			t.Error("expected seed_demo to default to true")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Server.Port != defaultConfig.Server.Port {
			t.Errorf("created config port doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[server]
host = "127.0.0.1"
port = 8080

[app]
log_path = "/tmp/test.log"
export_dir = "/tmp/exports"
seed_demo = false

[credentials.huggingface]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:8080/auth/callback"
scopes = "openid profile"

[credentials.dev]
username = "tester"
password = "hunter2"
token_secret = "signing-secret"
token_ttl_hours = 2
debug = false
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Credentials.HuggingFace.ClientID != "test_client_id" {
			t.Errorf("expected hf client_id test_client_id, got %s", config.Credentials.HuggingFace.ClientID)
		}

		if config.Credentials.Dev.TokenTTL != 2 {
			t.Errorf("expected dev token ttl 2, got %d", config.Credentials.Dev.TokenTTL)
		}

		if config.App.SeedDemo {
			t.Error("expected seed_demo false")
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := DefaultConfig()
		config.Credentials.HuggingFace.AccessToken = "tok-1"
		config.Credentials.HuggingFace.RefreshToken = "ref-1"

		if err := SaveConfig(config, configPath); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}

		if loaded.Credentials.HuggingFace.AccessToken != "tok-1" {
			t.Errorf("expected access token to survive the round trip, got %q", loaded.Credentials.HuggingFace.AccessToken)
		}
	})
}

func TestHuggingFaceConfig(t *testing.T) {
	t.Run("Update", func(t *testing.T) {
		hf := HuggingFaceConfig{RefreshToken: "old-refresh"}
		expiry := time.Now().Add(time.Hour)

		hf.Update(&oauth2.Token{AccessToken: "tok-1", Expiry: expiry})

		if hf.AccessToken != "tok-1" {
			t.Errorf("expected access token tok-1, got %s", hf.AccessToken)
		}
		if hf.RefreshToken != "old-refresh" {
			t.Errorf("expected old refresh token to be kept, got %s", hf.RefreshToken)
		}
		if !hf.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, hf.Expiry)
		}

		hf.Update(&oauth2.Token{AccessToken: "tok-2", RefreshToken: "new-refresh"})
		if hf.RefreshToken != "new-refresh" {
			t.Errorf("expected refresh token to be replaced, got %s", hf.RefreshToken)
		}

		hf.Update(nil)
		if hf.AccessToken != "tok-2" {
			t.Error("expected nil update to be a no-op")
		}
	})

	t.Run("Token", func(t *testing.T) {
		empty := HuggingFaceConfig{}
		if empty.Token() != nil {
			t.Error("expected nil token when nothing is stored")
		}

		hf := HuggingFaceConfig{AccessToken: "tok-1", RefreshToken: "ref-1"}
		tok := hf.Token()
		if tok == nil || tok.AccessToken != "tok-1" || tok.RefreshToken != "ref-1" {
			t.Errorf("unexpected token %+v", tok)
		}
		if tok.TokenType != "Bearer" {
			t.Errorf("expected Bearer token type, got %s", tok.TokenType)
		}
	})

	t.Run("Map hides secrets", func(t *testing.T) {
		hf := HuggingFaceConfig{ClientID: "id", ClientSecret: "secret", AccessToken: "tok-1"}
		m := hf.Map()

		if m["client_id"] != "id" {
			t.Errorf("expected client_id id, got %v", m["client_id"])
		}
		if m["has_secret"] != true || m["has_token"] != true {
			t.Error("expected presence flags to be set")
		}
		for k, v := range m {
			if v == "secret" || v == "tok-1" {
				t.Errorf("expected no secret material in map, found %v under %s", v, k)
			}
		}
	})
}
