package scraper

import (
	"fmt"
	"path/filepath"
	"strings"

	"psrscraper/pkg/config"
	"psrscraper/pkg/images"
	"psrscraper/pkg/logger"
	"psrscraper/pkg/psrbot"
	"psrscraper/pkg/ratelimit"
	"psrscraper/pkg/reddit"
	"psrscraper/pkg/storage"
	"psrscraper/pkg/translate"
	"psrscraper/pkg/ui"
)

// deletedAuthor is the placeholder Reddit uses for removed accounts
const deletedAuthor = "[deleted]"

// Summary reports what a scrape run accomplished
type Summary struct {
	PostsProcessed   int
	PostsSkipped     int
	ImagesDownloaded int
	ImagesSkipped    int
	Failures         int
}

// Scraper orchestrates the archive pipeline: fetch posts, parse the bot
// comment, translate, write records, and download images sequentially.
type Scraper struct {
	client     RedditClient
	translator Translator
	storage    *storage.Manager
	limiter    ratelimit.Limiter
	tracker    *ui.StatusTracker
	notifier   *ui.Notifier
	config     *config.Config
	logger     logger.Logger
}

// New creates a new Scraper instance from the configuration
func New(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()
	return NewWithClients(cfg, reddit.NewClient(&cfg.Reddit, log), translate.NewClient(&cfg.OpenAI, log))
}

// NewWithClients creates a Scraper with the given Reddit client and
// translator, for callers that need to substitute their own.
func NewWithClients(cfg *config.Config, client RedditClient, translator Translator) (*Scraper, error) {
	storageManager, err := storage.NewManager(cfg.Output.BaseDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}

	return &Scraper{
		client:     client,
		translator: translator,
		storage:    storageManager,
		limiter:    ratelimit.NewFixedDelay(cfg.Scrape.DownloadDelay),
		notifier:   ui.NewNotifier(cfg.Notifications.Enabled),
		config:     cfg,
		logger:     logger.GetLogger(),
	}, nil
}

// Run executes a full scrape of the configured subreddit
func (s *Scraper) Run() (*Summary, error) {
	cfg := s.config.Scrape

	flair, ok := reddit.ParseFlair(cfg.Flair)
	if !ok {
		return nil, fmt.Errorf("invalid flair filter: %q", cfg.Flair)
	}

	s.logger.InfoWithFields("starting scrape", map[string]interface{}{
		"subreddit":   cfg.Subreddit,
		"flair":       cfg.Flair,
		"count":       cfg.Count,
		"target_lang": cfg.TargetLanguage,
		"dev_mode":    cfg.DevMode,
		"output_dir":  s.config.Output.BaseDirectory,
	})

	posts, err := s.client.FetchNewPosts(cfg.Subreddit, flair, cfg.Count)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch posts")
		if s.config.Notifications.OnError {
			s.notifier.SendError("SCRAPE FAILED", err.Error())
		}
		return nil, fmt.Errorf("failed to fetch posts: %w", err)
	}

	s.tracker = ui.NewStatusTracker(len(posts))

	for i := range posts {
		post := &posts[i]
		s.tracker.PrintPostStatus(post.ID, post.Title)

		if err := s.processPost(post); err != nil {
			s.logger.WithError(err).WithField("post_id", post.ID).Error("failed to process post")
			ui.PrintError("Error processing post "+post.ID, err)
			s.tracker.IncrementFailures()
			continue
		}
		s.tracker.PrintProgress()
		logger.LogScrapeProgress(cfg.Subreddit, s.tracker.PostsProcessed+s.tracker.PostsSkipped, len(posts))
	}

	s.tracker.PrintSummary()

	summary := &Summary{
		PostsProcessed:   s.tracker.PostsProcessed,
		PostsSkipped:     s.tracker.PostsSkipped,
		ImagesDownloaded: s.tracker.ImagesDownloaded,
		ImagesSkipped:    s.tracker.ImagesSkipped,
		Failures:         s.tracker.Failures,
	}

	s.logger.InfoWithFields("scrape completed", map[string]interface{}{
		"subreddit":         cfg.Subreddit,
		"posts_processed":   summary.PostsProcessed,
		"posts_skipped":     summary.PostsSkipped,
		"images_downloaded": summary.ImagesDownloaded,
		"images_skipped":    summary.ImagesSkipped,
		"failures":          summary.Failures,
	})

	if s.config.Notifications.OnComplete {
		s.notifier.SendSuccess("SCRAPE COMPLETE",
			fmt.Sprintf("%d posts archived, %d images downloaded", summary.PostsProcessed, summary.ImagesDownloaded))
	}

	return summary, nil
}

// processPost archives a single post: record, translations, and images
func (s *Scraper) processPost(post *reddit.Post) error {
	comments, err := s.client.FetchComments(post.ID)
	if err != nil {
		// A post without readable comments can still be archived
		s.logger.WithError(err).WithField("post_id", post.ID).Warn("failed to fetch comments")
		comments = nil
	}

	var botDetails *psrbot.Details
	if botComment := psrbot.FindBotComment(comments, s.config.Scrape.BotUsername); botComment != nil {
		details := psrbot.Parse(botComment.Body)
		if !details.IsEmpty() {
			botDetails = &details
		}
	}

	if s.config.Scrape.SkipSolved && botDetails != nil && botDetails.IsSolved() {
		s.logger.InfoWithFields("skipping solved post", map[string]interface{}{
			"post_id": post.ID,
			"status":  botDetails.Status,
		})
		s.tracker.IncrementSkipped()
		return nil
	}

	record := &PostRecord{
		ID:          post.ID,
		Title:       post.Title,
		Author:      post.Author,
		Created:     post.CreatedTime(),
		Score:       post.Score,
		URL:         post.URL,
		Selftext:    post.Selftext,
		NumComments: post.NumComments,
		Flair:       post.LinkFlairText,
		ImageURLs:   images.FromPost(post),
		BotDetails:  botDetails,
	}

	record.TitleTranslated = s.translateField(post.ID, "title", post.Title)
	record.SelftextTranslated = s.translateField(post.ID, "selftext", post.Selftext)

	postDir, err := s.storage.PostDir(post.CreatedTime(), post.ID)
	if err != nil {
		return err
	}

	if err := s.storage.SaveJSON(postDir, storage.PostJSONFile, record); err != nil {
		return fmt.Errorf("failed to write post record: %w", err)
	}
	if s.config.Output.WriteText {
		if err := s.storage.SaveText(postDir, storage.PostTextFile, record.RenderText()); err != nil {
			return fmt.Errorf("failed to write post text: %w", err)
		}
	}

	s.downloadPostImages(post, postDir, record.ImageURLs)

	if err := s.downloadCommentImages(post, postDir, comments); err != nil {
		return err
	}

	s.tracker.IncrementProcessed()
	return nil
}

// translateField translates one text field, degrading to empty on failure
func (s *Scraper) translateField(postID, field, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	translated, err := s.translator.Translate(text, s.config.Scrape.TargetLanguage)
	if err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"post_id": postID,
			"field":   field,
		}).Warn("translation failed")
		s.tracker.IncrementFailures()
		return ""
	}
	return translated
}

// downloadPostImages downloads the post's own images into the post dir.
// The sequence number advances only on success so failures leave no gaps.
func (s *Scraper) downloadPostImages(post *reddit.Post, postDir string, urls []string) {
	seq := 1
	for _, url := range urls {
		if s.downloadImage(post.ID, postDir, post.ID, seq, url) {
			seq++
		}
	}
}

// downloadCommentImages downloads images posted in comments into the
// comments/ subdirectory, named per comment author. In dev mode only the
// first few image-bearing comments are downloaded.
func (s *Scraper) downloadCommentImages(post *reddit.Post, postDir string, comments []reddit.Comment) error {
	botUsername := s.config.Scrape.BotUsername
	if botUsername == "" {
		botUsername = psrbot.DefaultBotUsername
	}

	var commentsDir string
	authorSeq := make(map[string]int)
	commentsWithImages := 0

	for i := range comments {
		comment := &comments[i]
		if strings.EqualFold(comment.Author, botUsername) || comment.Author == deletedAuthor || comment.Author == "" {
			continue
		}

		urls := images.FromComment(comment)
		if len(urls) == 0 {
			continue
		}

		if s.config.Scrape.DevMode && commentsWithImages >= s.config.Scrape.DevCommentLimit {
			s.logger.DebugWithFields("dev mode comment limit reached", map[string]interface{}{
				"post_id": post.ID,
				"limit":   s.config.Scrape.DevCommentLimit,
			})
			break
		}
		commentsWithImages++

		if commentsDir == "" {
			var err error
			commentsDir, err = s.storage.CommentsDir(postDir)
			if err != nil {
				return err
			}
		}

		for _, url := range urls {
			seq := authorSeq[comment.Author] + 1
			if s.downloadImage(post.ID, commentsDir, comment.Author, seq, url) {
				authorSeq[comment.Author] = seq
			}
		}
	}

	return nil
}

// downloadImage downloads one image as <prefix>_image_<NN><ext>, waiting
// out the configured delay before each network fetch. Returns true when
// the image is on disk afterwards, whether downloaded now or previously.
func (s *Scraper) downloadImage(postID, dir, prefix string, seq int, url string) bool {
	srcName := images.FilenameFromURL(url)

	// Different URLs can resolve to the same source filename; only the
	// first occurrence per directory is kept.
	if srcName != "" && s.storage.MarkSource(dir, srcName) {
		s.logger.DebugWithFields("duplicate source filename", map[string]interface{}{
			"post_id":  postID,
			"filename": srcName,
			"url":      url,
		})
		s.tracker.IncrementImageSkipped()
		return false
	}

	// When the source URL carries an extension the target filename is
	// known up front, so reruns can skip without a network round trip.
	if ext := strings.ToLower(filepath.Ext(srcName)); ext != "" {
		filename := fmt.Sprintf("%s_image_%02d%s", prefix, seq, ext)
		if s.storage.IsDownloaded(dir, filename) {
			s.logger.DebugWithFields("image already downloaded", map[string]interface{}{
				"post_id":  postID,
				"filename": filename,
			})
			s.tracker.IncrementImageSkipped()
			return true
		}
	}

	s.limiter.Wait()

	data, contentType, err := s.client.DownloadImage(url)
	if err != nil {
		logger.LogDownload(postID, url, "", false, err)
		s.tracker.IncrementFailures()
		return false
	}

	filename := fmt.Sprintf("%s_image_%02d%s", prefix, seq, storage.ExtensionFor(srcName, contentType))
	if s.storage.IsDownloaded(dir, filename) {
		s.tracker.IncrementImageSkipped()
		return true
	}

	if err := s.storage.SaveImage(dir, filename, data); err != nil {
		logger.LogDownload(postID, url, filename, false, err)
		s.tracker.IncrementFailures()
		return false
	}

	logger.LogDownload(postID, url, filename, true, nil)
	s.tracker.IncrementDownloaded()
	return true
}
