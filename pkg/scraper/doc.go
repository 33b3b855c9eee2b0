// Package scraper orchestrates the r/PhotoshopRequest archive pipeline.
//
// For each run the scraper:
//   - Fetches posts from the subreddit's "new" listing, filtered by flair
//   - Fetches each post's top-level comments and parses the moderation
//     bot's summary (request type, status, deadlines)
//   - Skips posts the bot already marked Solved
//   - Translates the title and selftext into the configured language
//   - Writes post_data.json and post_data.txt into the post's directory
//   - Downloads the post's images, then comment images into comments/,
//     pausing a fixed delay between downloads
//
// Downloads run sequentially; a rerun over the same output directory
// skips images that are already on disk.
//
// Usage:
//
//	s, err := scraper.New(cfg)
//	if err != nil {
//	    return err
//	}
//	summary, err := s.Run()
package scraper
