package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"psrscraper/pkg/auth"
	"psrscraper/pkg/config"
	"psrscraper/pkg/logger"
	"psrscraper/pkg/scraper"
	"psrscraper/pkg/ui"
)

var (
	// Scrape command flags
	outputDir   string
	subreddit   string
	flairFilter string
	targetLang  string
	postCount   int
	devMode     bool
	delaySecs   int
	accountName string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Archive the newest posts from the subreddit",
	Long: `Archive the newest posts from the configured subreddit.

This command requires valid Reddit API credentials to be configured either through:
  - Stored credentials (use 'psrscraper auth login' to store)
  - Environment variables (REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET)
  - Configuration file

For each matching post the scraper writes a dated directory containing the
post record (JSON and text), the post images, and images from the comments.
Posts the moderator bot has marked solved are skipped.`,
	Example: `  # Archive the 5 newest Paid posts using default settings
  psrscraper scrape

  # Archive 20 Free posts into a custom directory
  psrscraper scrape --flair Free --count 20 --output ./archive

  # Translate into Japanese instead of Chinese
  psrscraper scrape --target-lang Japanese

  # Dev mode: limit comment image downloads per post
  psrscraper scrape --dev-mode

  # Use a specific stored account
  psrscraper scrape --account myapp`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runScrape(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	// Local flags for scrape command
	scrapeCmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for archived posts (default: ./data)")
	scrapeCmd.Flags().StringVarP(&subreddit, "subreddit", "r", "", "subreddit to scrape (default: PhotoshopRequest)")
	scrapeCmd.Flags().StringVarP(&flairFilter, "flair", "f", "", "flair filter: Paid, Free or All (default: Paid)")
	scrapeCmd.Flags().StringVarP(&targetLang, "target-lang", "t", "", "translation target language (default: Chinese)")
	scrapeCmd.Flags().IntVarP(&postCount, "count", "c", 0, "number of posts to archive (default: 5)")
	scrapeCmd.Flags().BoolVarP(&devMode, "dev-mode", "d", false, "limit comment image downloads per post")
	scrapeCmd.Flags().IntVar(&delaySecs, "delay", -1, "seconds to wait between image downloads (default: 1)")
	scrapeCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
}

func runScrape(cmd *cobra.Command, args []string) {
	// Build flags map from command line
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if subreddit != "" {
		flags["subreddit"] = subreddit
	}
	if flairFilter != "" {
		flags["flair"] = flairFilter
	}
	if targetLang != "" {
		flags["target-lang"] = targetLang
	}
	if postCount > 0 {
		flags["count"] = postCount
	}
	if devMode {
		flags["dev-mode"] = true
	}
	if delaySecs >= 0 {
		flags["delay"] = delaySecs
	}
	if !notifications {
		flags["notifications"] = false
	}
	// Pass log level to config
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	// Load configuration
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Initialize logger
	logger.Initialize(&cfg.Logging)
	logger.WithField("version", version).Info("PSR Scraper starting")

	// Handle credentials
	credManager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	var account *auth.Account

	if accountName != "" {
		// Use specific account
		account, err = credManager.Retrieve(accountName)
		if err != nil {
			ui.PrintError("Account not found", accountName)
			ui.PrintInfo("Available accounts", "Use 'psrscraper auth list' to see stored accounts")
			os.Exit(1)
		}
	} else if cfg.Reddit.ClientID != "" && cfg.Reddit.ClientSecret != "" {
		// Use credentials from config/env
		logger.Info("Using credentials from configuration")
	} else {
		// Try to get default account from credential manager
		account, err = credManager.RetrieveDefault()
		if err != nil {
			logger.Error("No credentials found")
			ui.PrintError("No Reddit API credentials found", "")
			fmt.Println("\nTo store credentials securely, run:")
			fmt.Println("  psrscraper auth login")
			fmt.Println("\nAlternatively, set environment variables:")
			fmt.Println("  export REDDIT_CLIENT_ID=your_client_id")
			fmt.Println("  export REDDIT_CLIENT_SECRET=your_client_secret")
			os.Exit(1)
		}
	}

	// If we got an account from the credential manager, update config
	if account != nil {
		cfg.Reddit.ClientID = account.ClientID
		cfg.Reddit.ClientSecret = account.ClientSecret
		if account.UserAgent != "" {
			cfg.Reddit.UserAgent = account.UserAgent
		}
		if cfg.OpenAI.APIKey == "" && account.OpenAIKey != "" {
			cfg.OpenAI.APIKey = account.OpenAIKey
		}
		logger.WithField("account", account.Name).Info("Using stored credentials")
		ui.PrintInfo("Using account", account.Name)
	}

	// Final credential validation
	if err := cfg.ValidateCredentials(); err != nil {
		logger.WithError(err).Error("Missing credentials")
		ui.PrintError("Missing credentials", err.Error())
		fmt.Println("\nRun 'psrscraper auth login' to store credentials.")
		os.Exit(1)
	}

	ui.PrintInfo("Target Subreddit", "r/"+cfg.Scrape.Subreddit)
	ui.PrintInfo("Flair Filter", cfg.Scrape.Flair)

	logger.WithField("subreddit", cfg.Scrape.Subreddit).Info("Starting scrape operation")

	s, err := scraper.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		os.Exit(1)
	}

	summary, err := s.Run()
	if err != nil {
		logger.WithError(err).WithField("subreddit", cfg.Scrape.Subreddit).Error("Scrape failed")
		ui.PrintError("SCRAPE FAILED", err.Error())
		os.Exit(1)
	}

	logger.WithFields(map[string]interface{}{
		"posts_processed":   summary.PostsProcessed,
		"posts_skipped":     summary.PostsSkipped,
		"images_downloaded": summary.ImagesDownloaded,
	}).Info("Scrape completed successfully")
	ui.PrintSuccess("[ARCHIVE COMPLETED SUCCESSFULLY]")
}
