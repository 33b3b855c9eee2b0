package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the PSR scraper
type Config struct {
	// Reddit API credentials
	Reddit RedditConfig `yaml:"reddit" json:"reddit"`

	// Translation API settings
	OpenAI OpenAIConfig `yaml:"openai" json:"openai"`

	// Scrape behavior
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RedditConfig holds Reddit-specific configuration
type RedditConfig struct {
	ClientID       string        `yaml:"client_id" json:"client_id"`
	ClientSecret   string        `yaml:"client_secret" json:"client_secret"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// OpenAIConfig holds translation API configuration
type OpenAIConfig struct {
	APIKey         string        `yaml:"api_key" json:"api_key"`
	Model          string        `yaml:"model" json:"model"`
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// ScrapeConfig holds scrape behavior configuration
type ScrapeConfig struct {
	Subreddit       string        `yaml:"subreddit" json:"subreddit"`
	Flair           string        `yaml:"flair" json:"flair"`
	Count           int           `yaml:"count" json:"count"`
	TargetLanguage  string        `yaml:"target_language" json:"target_language"`
	DevMode         bool          `yaml:"dev_mode" json:"dev_mode"`
	DevCommentLimit int           `yaml:"dev_comment_limit" json:"dev_comment_limit"`
	DownloadDelay   time.Duration `yaml:"download_delay" json:"download_delay"`
	BotUsername     string        `yaml:"bot_username" json:"bot_username"`
	SkipSolved      bool          `yaml:"skip_solved" json:"skip_solved"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
	WriteText     bool   `yaml:"write_text" json:"write_text"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	OnComplete bool `yaml:"on_complete" json:"on_complete"`
	OnError    bool `yaml:"on_error" json:"on_error"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// ValidFlairs lists the accepted flair filters. "All" disables filtering.
var ValidFlairs = []string{"Paid", "Free", "All"}

// TargetLanguages lists the languages the translator supports.
var TargetLanguages = []string{
	"Chinese",
	"Traditional Chinese",
	"Japanese",
	"Korean",
	"Spanish",
	"French",
	"German",
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Reddit: RedditConfig{
			UserAgent:      "psrscraper v1.0",
			RequestTimeout: 30 * time.Second,
		},
		OpenAI: OpenAIConfig{
			Model:          "gpt-3.5-turbo",
			BaseURL:        "https://api.openai.com",
			RequestTimeout: 60 * time.Second,
		},
		Scrape: ScrapeConfig{
			Subreddit:       "PhotoshopRequest",
			Flair:           "Paid",
			Count:           5,
			TargetLanguage:  "Chinese",
			DevMode:         false,
			DevCommentLimit: 3,
			DownloadDelay:   time.Second,
			BotUsername:     "psr-bot",
			SkipSolved:      true,
		},
		Output: OutputConfig{
			BaseDirectory: "data",
			WriteText:     true,
		},
		Notifications: NotificationConfig{
			Enabled:    true,
			OnComplete: true,
			OnError:    true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Reddit credentials keep the variable names the original tooling used
	if clientID := os.Getenv("REDDIT_CLIENT_ID"); clientID != "" {
		c.Reddit.ClientID = clientID
	}
	if clientSecret := os.Getenv("REDDIT_CLIENT_SECRET"); clientSecret != "" {
		c.Reddit.ClientSecret = clientSecret
	}
	if userAgent := os.Getenv("REDDIT_USER_AGENT"); userAgent != "" {
		c.Reddit.UserAgent = userAgent
	}

	// Translation API
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		c.OpenAI.APIKey = apiKey
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		c.OpenAI.Model = model
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		c.OpenAI.BaseURL = baseURL
	}

	// Scrape settings
	if subreddit := os.Getenv("PSRSCRAPER_SUBREDDIT"); subreddit != "" {
		c.Scrape.Subreddit = subreddit
	}
	if delay := os.Getenv("PSRSCRAPER_DOWNLOAD_DELAY"); delay != "" {
		var val int
		fmt.Sscanf(delay, "%d", &val)
		if val > 0 {
			c.Scrape.DownloadDelay = time.Duration(val) * time.Second
		}
	}

	// Output directory
	if outputDir := os.Getenv("PSRSCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	// Notifications
	if notifEnabled := os.Getenv("PSRSCRAPER_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}

	// Logging level
	if logLevel := os.Getenv("PSRSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".psrscraper.yaml",
		".psrscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "psrscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "psrscraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".psrscraper.yaml"),
		filepath.Join(os.Getenv("HOME"), ".psrscraper.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. Credentials are validated
// separately with ValidateCredentials, since they may still be filled in
// from the credential manager after loading.
func (c *Config) Validate() error {
	var errs []error

	if c.Reddit.UserAgent == "" {
		errs = append(errs, errors.New("Reddit user agent is required"))
	}

	// Validate translation settings
	if c.OpenAI.Model == "" {
		errs = append(errs, errors.New("translation model is required"))
	}

	// Validate scrape settings
	if c.Scrape.Subreddit == "" {
		errs = append(errs, errors.New("subreddit is required"))
	}
	if c.Scrape.Count <= 0 {
		errs = append(errs, errors.New("post count must be positive"))
	}
	if c.Scrape.DownloadDelay < 0 {
		errs = append(errs, errors.New("download delay cannot be negative"))
	}
	if c.Scrape.DevCommentLimit <= 0 {
		errs = append(errs, errors.New("dev comment limit must be positive"))
	}
	if !containsFold(ValidFlairs, c.Scrape.Flair) {
		errs = append(errs, fmt.Errorf("invalid flair filter %q (valid: %s)",
			c.Scrape.Flair, strings.Join(ValidFlairs, ", ")))
	}
	if !containsFold(TargetLanguages, c.Scrape.TargetLanguage) {
		errs = append(errs, fmt.Errorf("invalid target language %q (valid: %s)",
			c.Scrape.TargetLanguage, strings.Join(TargetLanguages, ", ")))
	}

	// Validate output settings
	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// ValidateCredentials checks that all API credentials are present. It runs
// after the credential manager has had a chance to fill in stored values.
func (c *Config) ValidateCredentials() error {
	var errs []error

	if c.Reddit.ClientID == "" {
		errs = append(errs, errors.New("Reddit client ID is required"))
	}
	if c.Reddit.ClientSecret == "" {
		errs = append(errs, errors.New("Reddit client secret is required"))
	}
	if c.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("translation API key is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// containsFold reports whether list contains s, ignoring case.
func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if subreddit, ok := flags["subreddit"].(string); ok && subreddit != "" {
		c.Scrape.Subreddit = subreddit
	}
	if flair, ok := flags["flair"].(string); ok && flair != "" {
		c.Scrape.Flair = flair
	}
	if lang, ok := flags["target-lang"].(string); ok && lang != "" {
		c.Scrape.TargetLanguage = lang
	}
	if count, ok := flags["count"].(int); ok && count > 0 {
		c.Scrape.Count = count
	}
	if devMode, ok := flags["dev-mode"].(bool); ok {
		c.Scrape.DevMode = devMode
	}
	if delay, ok := flags["delay"].(int); ok && delay >= 0 {
		c.Scrape.DownloadDelay = time.Duration(delay) * time.Second
	}
	if notifEnabled, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = notifEnabled
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".psrscraper.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
