package scraper

import "psrscraper/pkg/reddit"

// RedditClient defines the Reddit API operations the scraper needs
type RedditClient interface {
	FetchNewPosts(subreddit string, flair reddit.Flair, count int) ([]reddit.Post, error)
	FetchComments(postID string) ([]reddit.Comment, error)
	DownloadImage(url string) ([]byte, string, error)
}

// Translator translates text into a target language
type Translator interface {
	Translate(text, targetLanguage string) (string, error)
}
