package reddit

import (
	"fmt"
	"net/url"
)

const (
	// BaseURL is the base URL for authenticated Reddit API requests
	BaseURL = "https://oauth.reddit.com"

	// TokenURL is the endpoint for app-only OAuth token requests
	TokenURL = "https://www.reddit.com/api/v1/access_token"

	// ListingLimit is the page size used when iterating a subreddit listing
	ListingLimit = 100

	// CommentLimit is the maximum number of comments requested per post
	CommentLimit = 500
)

// GetNewListingURL constructs the URL for a subreddit's "new" listing page.
// An empty after fetches the first page.
func GetNewListingURL(subreddit, after string) string {
	return newListingURL(BaseURL, subreddit, after)
}

// GetCommentsURL constructs the URL for a post's comment listing.
// Only top-level comments are requested.
func GetCommentsURL(postID string) string {
	return commentsURL(BaseURL, postID)
}

func newListingURL(base, subreddit, after string) string {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", ListingLimit))
	params.Set("raw_json", "1")
	if after != "" {
		params.Set("after", after)
	}
	return fmt.Sprintf("%s/r/%s/new?%s", base, url.PathEscape(subreddit), params.Encode())
}

func commentsURL(base, postID string) string {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", CommentLimit))
	params.Set("depth", "1")
	params.Set("raw_json", "1")
	return fmt.Sprintf("%s/comments/%s?%s", base, url.PathEscape(postID), params.Encode())
}
