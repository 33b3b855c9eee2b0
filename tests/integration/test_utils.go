package integration

import (
	"os"
	"path/filepath"
	"testing"

	"psrscraper/pkg/config"
	"psrscraper/pkg/logger"
	"psrscraper/pkg/reddit"
	"psrscraper/pkg/scraper"
	"psrscraper/pkg/translate"
	"psrscraper/pkg/ui"
)

// testCreatedUTC is the created_utc used for fixture posts.
// It falls on 2025-12-20 UTC, so archived posts land in that date directory.
const testCreatedUTC = 1766217600

// testDateDir is the date directory matching testCreatedUTC
const testDateDir = "2025-12-20"

// TestHelper bundles the mock servers and scratch directories a test needs
type TestHelper struct {
	t           *testing.T
	OutputDir   string
	Reddit      *MockRedditServer
	Translation *MockTranslationServer
}

// NewTestHelper creates a test helper with a temporary output directory
func NewTestHelper(t *testing.T) *TestHelper {
	ui.SetQuietMode(true)
	return &TestHelper{
		t:         t,
		OutputDir: t.TempDir(),
	}
}

// SetupMockReddit starts the mock Reddit server
func (h *TestHelper) SetupMockReddit() *MockRedditServer {
	if h.Reddit == nil {
		h.Reddit = NewMockRedditServer()
	}
	return h.Reddit
}

// SetupMockTranslation starts the mock translation server
func (h *TestHelper) SetupMockTranslation() *MockTranslationServer {
	if h.Translation == nil {
		h.Translation = NewMockTranslationServer()
	}
	return h.Translation
}

// Cleanup shuts down the mock servers
func (h *TestHelper) Cleanup() {
	if h.Reddit != nil {
		h.Reddit.Close()
	}
	if h.Translation != nil {
		h.Translation.Close()
	}
}

// BuildConfig returns a config wired to the mock servers, with no delay
// between downloads so tests run quickly
func (h *TestHelper) BuildConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Reddit.ClientID = "test_client_id"
	cfg.Reddit.ClientSecret = "test_client_secret"
	cfg.OpenAI.APIKey = "sk-test"
	if h.Translation != nil {
		cfg.OpenAI.BaseURL = h.Translation.GetURL()
	}
	cfg.Scrape.DownloadDelay = 0
	cfg.Output.BaseDirectory = h.OutputDir
	cfg.Notifications.Enabled = false
	return cfg
}

// NewScraper builds a scraper whose Reddit client points at the mock server
func (h *TestHelper) NewScraper(cfg *config.Config) *scraper.Scraper {
	log := logger.NewTestLogger()

	client := reddit.NewClient(&cfg.Reddit, log)
	client.SetEndpoints(h.Reddit.GetURL(), h.Reddit.TokenURL())

	translator := translate.NewClient(&cfg.OpenAI, log)

	s, err := scraper.NewWithClients(cfg, client, translator)
	if err != nil {
		h.t.Fatalf("Failed to create scraper: %v", err)
	}
	return s
}

// SamplePost builds a fixture post whose link points at the given image URL
func (h *TestHelper) SamplePost(id, flair, imageURL string) reddit.Post {
	return reddit.Post{
		ID:            id,
		Name:          "t3_" + id,
		Title:         "Please remove the background",
		Author:        "requester",
		CreatedUTC:    testCreatedUTC,
		Score:         42,
		URL:           imageURL,
		Selftext:      "Family photo, willing to pay $10.",
		NumComments:   2,
		LinkFlairText: flair,
	}
}

// BotComment builds a stickied psr-bot comment with the standard fields
func (h *TestHelper) BotComment(status string) reddit.Comment {
	return reddit.Comment{
		ID:       "bot1",
		Author:   "psr-bot",
		Stickied: true,
		Body: "Request Type: Paid\n" +
			"Status: " + status + "\n" +
			"Deadline: 2025-12-31",
		CreatedUTC: testCreatedUTC,
	}
}

// PostDir returns the archive directory for a fixture post
func (h *TestHelper) PostDir(postID string) string {
	return filepath.Join(h.OutputDir, testDateDir, postID)
}

// AssertFileExists fails the test if the path is missing
func (h *TestHelper) AssertFileExists(path string) {
	h.t.Helper()
	if _, err := os.Stat(path); err != nil {
		h.t.Errorf("Expected file to exist: %s (%v)", path, err)
	}
}

// AssertFileMissing fails the test if the path exists
func (h *TestHelper) AssertFileMissing(path string) {
	h.t.Helper()
	if _, err := os.Stat(path); err == nil {
		h.t.Errorf("Expected file to be absent: %s", path)
	}
}
