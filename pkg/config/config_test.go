package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	// Test default values
	if config.Scrape.Subreddit != "PhotoshopRequest" {
		t.Errorf("Expected default subreddit to be PhotoshopRequest, got %s", config.Scrape.Subreddit)
	}

	if config.Scrape.Flair != "Paid" {
		t.Errorf("Expected default flair to be Paid, got %s", config.Scrape.Flair)
	}

	if config.Scrape.Count != 5 {
		t.Errorf("Expected default count to be 5, got %d", config.Scrape.Count)
	}

	if config.Scrape.TargetLanguage != "Chinese" {
		t.Errorf("Expected default target language to be Chinese, got %s", config.Scrape.TargetLanguage)
	}

	if config.Scrape.DownloadDelay != time.Second {
		t.Errorf("Expected default download delay to be 1s, got %s", config.Scrape.DownloadDelay)
	}

	if config.Scrape.DevCommentLimit != 3 {
		t.Errorf("Expected default dev comment limit to be 3, got %d", config.Scrape.DevCommentLimit)
	}

	if config.Output.BaseDirectory != "data" {
		t.Errorf("Expected default output directory to be data, got %s", config.Output.BaseDirectory)
	}

	if config.OpenAI.Model != "gpt-3.5-turbo" {
		t.Errorf("Expected default model to be gpt-3.5-turbo, got %s", config.OpenAI.Model)
	}
}

func TestLoadFromEnv(t *testing.T) {
	// Set test environment variables
	os.Setenv("REDDIT_CLIENT_ID", "test-client-id")
	os.Setenv("REDDIT_CLIENT_SECRET", "test-client-secret")
	os.Setenv("REDDIT_USER_AGENT", "test-agent v1.0")
	os.Setenv("OPENAI_API_KEY", "test-api-key")
	os.Setenv("PSRSCRAPER_SUBREDDIT", "TestSubreddit")
	os.Setenv("PSRSCRAPER_OUTPUT_DIR", "/tmp/test-output")
	os.Setenv("PSRSCRAPER_DOWNLOAD_DELAY", "2")
	os.Setenv("PSRSCRAPER_NOTIFICATIONS_ENABLED", "false")
	os.Setenv("PSRSCRAPER_LOG_LEVEL", "debug")

	defer func() {
		// Clean up environment variables
		os.Unsetenv("REDDIT_CLIENT_ID")
		os.Unsetenv("REDDIT_CLIENT_SECRET")
		os.Unsetenv("REDDIT_USER_AGENT")
		os.Unsetenv("OPENAI_API_KEY")
		os.Unsetenv("PSRSCRAPER_SUBREDDIT")
		os.Unsetenv("PSRSCRAPER_OUTPUT_DIR")
		os.Unsetenv("PSRSCRAPER_DOWNLOAD_DELAY")
		os.Unsetenv("PSRSCRAPER_NOTIFICATIONS_ENABLED")
		os.Unsetenv("PSRSCRAPER_LOG_LEVEL")
	}()

	config := DefaultConfig()
	err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	// Test loaded values
	if config.Reddit.ClientID != "test-client-id" {
		t.Errorf("Expected client ID to be test-client-id, got %s", config.Reddit.ClientID)
	}

	if config.Reddit.ClientSecret != "test-client-secret" {
		t.Errorf("Expected client secret to be test-client-secret, got %s", config.Reddit.ClientSecret)
	}

	if config.Reddit.UserAgent != "test-agent v1.0" {
		t.Errorf("Expected user agent to be test-agent v1.0, got %s", config.Reddit.UserAgent)
	}

	if config.OpenAI.APIKey != "test-api-key" {
		t.Errorf("Expected API key to be test-api-key, got %s", config.OpenAI.APIKey)
	}

	if config.Scrape.Subreddit != "TestSubreddit" {
		t.Errorf("Expected subreddit to be TestSubreddit, got %s", config.Scrape.Subreddit)
	}

	if config.Output.BaseDirectory != "/tmp/test-output" {
		t.Errorf("Expected output directory to be /tmp/test-output, got %s", config.Output.BaseDirectory)
	}

	if config.Scrape.DownloadDelay != 2*time.Second {
		t.Errorf("Expected download delay to be 2s, got %s", config.Scrape.DownloadDelay)
	}

	if config.Notifications.Enabled {
		t.Error("Expected notifications to be disabled")
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configYAML := `
reddit:
  client_id: "file-client-id"
  client_secret: "file-client-secret"
  user_agent: "file-agent"
scrape:
  subreddit: "FileSubreddit"
  flair: "Free"
  count: 10
  target_language: "Japanese"
output:
  base_directory: "/tmp/file-output"
logging:
  level: "warn"
`
	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config := DefaultConfig()
	if err := config.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to load config file: %v", err)
	}

	if config.Reddit.ClientID != "file-client-id" {
		t.Errorf("Expected client ID to be file-client-id, got %s", config.Reddit.ClientID)
	}

	if config.Scrape.Flair != "Free" {
		t.Errorf("Expected flair to be Free, got %s", config.Scrape.Flair)
	}

	if config.Scrape.Count != 10 {
		t.Errorf("Expected count to be 10, got %d", config.Scrape.Count)
	}

	if config.Scrape.TargetLanguage != "Japanese" {
		t.Errorf("Expected target language to be Japanese, got %s", config.Scrape.TargetLanguage)
	}

	if config.Logging.Level != "warn" {
		t.Errorf("Expected log level to be warn, got %s", config.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	// A fully populated config should validate
	config := DefaultConfig()
	config.Reddit.ClientID = "id"
	config.Reddit.ClientSecret = "secret"
	config.OpenAI.APIKey = "key"

	if err := config.Validate(); err != nil {
		t.Errorf("Expected valid config, got error: %v", err)
	}

	// Missing credentials are a ValidateCredentials concern, not Validate
	config = DefaultConfig()
	if err := config.Validate(); err != nil {
		t.Errorf("Expected defaults to validate without credentials, got error: %v", err)
	}
	if err := config.ValidateCredentials(); err == nil {
		t.Error("Expected credential validation error for missing credentials")
	}

	// Credentials satisfied
	config = DefaultConfig()
	config.Reddit.ClientID = "id"
	config.Reddit.ClientSecret = "secret"
	config.OpenAI.APIKey = "key"
	if err := config.ValidateCredentials(); err != nil {
		t.Errorf("Expected credentials to validate, got error: %v", err)
	}

	// Invalid flair
	config = DefaultConfig()
	config.Reddit.ClientID = "id"
	config.Reddit.ClientSecret = "secret"
	config.OpenAI.APIKey = "key"
	config.Scrape.Flair = "Premium"
	if err := config.Validate(); err == nil {
		t.Error("Expected validation error for invalid flair")
	}

	// Invalid target language
	config = DefaultConfig()
	config.Reddit.ClientID = "id"
	config.Reddit.ClientSecret = "secret"
	config.OpenAI.APIKey = "key"
	config.Scrape.TargetLanguage = "Klingon"
	if err := config.Validate(); err == nil {
		t.Error("Expected validation error for invalid target language")
	}

	// Non-positive count
	config = DefaultConfig()
	config.Reddit.ClientID = "id"
	config.Reddit.ClientSecret = "secret"
	config.OpenAI.APIKey = "key"
	config.Scrape.Count = 0
	if err := config.Validate(); err == nil {
		t.Error("Expected validation error for zero count")
	}

	// Flair matching is case-insensitive
	config = DefaultConfig()
	config.Reddit.ClientID = "id"
	config.Reddit.ClientSecret = "secret"
	config.OpenAI.APIKey = "key"
	config.Scrape.Flair = "paid"
	if err := config.Validate(); err != nil {
		t.Errorf("Expected lowercase flair to validate, got error: %v", err)
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"output":        "/tmp/flag-output",
		"subreddit":     "FlagSubreddit",
		"flair":         "All",
		"target-lang":   "Korean",
		"count":         7,
		"dev-mode":      true,
		"delay":         3,
		"notifications": false,
		"log-level":     "error",
	}

	config.MergeCommandLineFlags(flags)

	if config.Output.BaseDirectory != "/tmp/flag-output" {
		t.Errorf("Expected output directory to be /tmp/flag-output, got %s", config.Output.BaseDirectory)
	}

	if config.Scrape.Subreddit != "FlagSubreddit" {
		t.Errorf("Expected subreddit to be FlagSubreddit, got %s", config.Scrape.Subreddit)
	}

	if config.Scrape.Flair != "All" {
		t.Errorf("Expected flair to be All, got %s", config.Scrape.Flair)
	}

	if config.Scrape.TargetLanguage != "Korean" {
		t.Errorf("Expected target language to be Korean, got %s", config.Scrape.TargetLanguage)
	}

	if config.Scrape.Count != 7 {
		t.Errorf("Expected count to be 7, got %d", config.Scrape.Count)
	}

	if !config.Scrape.DevMode {
		t.Error("Expected dev mode to be enabled")
	}

	if config.Scrape.DownloadDelay != 3*time.Second {
		t.Errorf("Expected download delay to be 3s, got %s", config.Scrape.DownloadDelay)
	}

	if config.Notifications.Enabled {
		t.Error("Expected notifications to be disabled")
	}

	if config.Logging.Level != "error" {
		t.Errorf("Expected log level to be error, got %s", config.Logging.Level)
	}
}

func TestSaveAndReload(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "saved", "config.yaml")

	config := DefaultConfig()
	config.Reddit.ClientID = "saved-id"
	config.Scrape.Subreddit = "SavedSubreddit"

	if err := config.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	reloaded := DefaultConfig()
	if err := reloaded.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to reload config: %v", err)
	}

	if reloaded.Reddit.ClientID != "saved-id" {
		t.Errorf("Expected reloaded client ID to be saved-id, got %s", reloaded.Reddit.ClientID)
	}

	if reloaded.Scrape.Subreddit != "SavedSubreddit" {
		t.Errorf("Expected reloaded subreddit to be SavedSubreddit, got %s", reloaded.Scrape.Subreddit)
	}
}
