package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"psrscraper/pkg/config"
	"psrscraper/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage PSR Scraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'psrscraper.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values

Sensitive values like credentials will be masked for security.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value types and ranges
  - Path accessibility`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	// Determine config file path
	configPath := configFile
	if configPath == "" {
		configPath = "psrscraper.yaml"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	// Create example configuration
	exampleConfig := `# PSR Scraper Configuration File
#
# This file contains all available configuration options.
# Credentials can also come from environment variables:
# REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET, OPENAI_API_KEY

# Reddit API credentials
reddit:
  # Client ID of your Reddit "script" app (required)
  # Create one at https://www.reddit.com/prefs/apps
  client_id: "YOUR_CLIENT_ID"

  # Client secret of your Reddit app (required)
  client_secret: "YOUR_CLIENT_SECRET"

  # User agent string sent with API requests
  user_agent: "psrscraper v1.0"

# Translation API settings
openai:
  # OpenAI API key (required for translations)
  api_key: "YOUR_API_KEY"

  # Chat model used for translation
  model: "gpt-3.5-turbo"

  # API base URL (override for compatible providers)
  base_url: "https://api.openai.com"

# Scrape behavior
scrape:
  # Subreddit to archive
  subreddit: "PhotoshopRequest"

  # Flair filter: Paid, Free or All
  flair: "Paid"

  # Number of newest posts to archive
  count: 5

  # Translation target language
  # One of: Chinese, Traditional Chinese, Japanese, Korean,
  # Spanish, French, German
  target_language: "Chinese"

  # Dev mode limits comment image downloads per post
  dev_mode: false
  dev_comment_limit: 3

  # Delay between image downloads, in nanoseconds when set here.
  # Prefer the --delay flag or PSRSCRAPER_DOWNLOAD_DELAY (seconds).

  # Username of the moderator bot whose comment carries request details
  bot_username: "psr-bot"

  # Skip posts the bot has marked solved
  skip_solved: true

# Output settings
output:
  # Base directory for archived posts
  base_directory: "data"

  # Also write a human-readable text record next to the JSON
  write_text: true

# Notification preferences
notifications:
  enabled: true
  on_complete: true
  on_error: true

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stdout only
  file: ""
`

	// Write configuration file
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file and add your API credentials")
	fmt.Println("2. Run 'psrscraper config validate' to check the configuration")
	fmt.Println("3. Start archiving with 'psrscraper scrape'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Create a sanitized version for display
	displayCfg := *cfg

	// Mask sensitive values
	displayCfg.Reddit.ClientSecret = maskValue(displayCfg.Reddit.ClientSecret)
	displayCfg.OpenAI.APIKey = maskValue(displayCfg.OpenAI.APIKey)

	// Convert to YAML for display
	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	// Show configuration sources
	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

// maskValue masks a sensitive config value for display
func maskValue(s string) string {
	if s == "" {
		return ""
	}
	if len(s) > 8 {
		return s[:4] + "..." + s[len(s)-4:]
	}
	return "***"
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	// Check if config file is specified
	if configFile == "" {
		// Try to find config file in common locations
		possiblePaths := []string{
			"psrscraper.yaml",
			"psrscraper.yml",
			".psrscraper.yaml",
			".psrscraper.yml",
			filepath.Join(os.Getenv("HOME"), ".psrscraper.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "psrscraper", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	// Try to load and validate configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	// Perform additional validation checks
	warnings := []string{}
	errors := []string{}

	// Check credentials
	if cfg.Reddit.ClientID == "" || cfg.Reddit.ClientID == "YOUR_CLIENT_ID" {
		warnings = append(warnings, "Reddit client ID not configured")
	}
	if cfg.Reddit.ClientSecret == "" || cfg.Reddit.ClientSecret == "YOUR_CLIENT_SECRET" {
		warnings = append(warnings, "Reddit client secret not configured")
	}
	if cfg.OpenAI.APIKey == "" || cfg.OpenAI.APIKey == "YOUR_API_KEY" {
		warnings = append(warnings, "OpenAI API key not configured; translations will fail")
	}

	// Check paths
	if cfg.Output.BaseDirectory != "" {
		if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create output directory: %v", err))
		}
	}

	// Check logging file path
	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	// Display results
	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	// Show summary
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Subreddit: r/%s\n", cfg.Scrape.Subreddit)
	fmt.Printf("  Flair filter: %s\n", cfg.Scrape.Flair)
	fmt.Printf("  Post count: %d\n", cfg.Scrape.Count)
	fmt.Printf("  Target language: %s\n", cfg.Scrape.TargetLanguage)
	fmt.Printf("  Download delay: %s\n", cfg.Scrape.DownloadDelay)
	fmt.Printf("  Output directory: %s\n", cfg.Output.BaseDirectory)
	fmt.Printf("  Log level: %s\n", strings.ToLower(cfg.Logging.Level))
}
