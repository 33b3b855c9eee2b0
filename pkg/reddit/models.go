package reddit

import (
	"encoding/json"
	"strings"
	"time"
)

// Listing is the envelope Reddit wraps around every listing response
type Listing struct {
	Kind string      `json:"kind"`
	Data ListingData `json:"data"`
}

// ListingData holds the pagination cursor and the listing children
type ListingData struct {
	After    string  `json:"after"`
	Children []Thing `json:"children"`
}

// Thing is a single listing child; Data is decoded according to Kind
// ("t3" posts, "t1" comments).
type Thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Post represents a subreddit submission
type Post struct {
	ID            string                   `json:"id"`
	Name          string                   `json:"name"`
	Title         string                   `json:"title"`
	Author        string                   `json:"author"`
	CreatedUTC    float64                  `json:"created_utc"`
	Score         int                      `json:"score"`
	URL           string                   `json:"url"`
	Selftext      string                   `json:"selftext"`
	NumComments   int                      `json:"num_comments"`
	LinkFlairText string                   `json:"link_flair_text"`
	IsGallery     bool                     `json:"is_gallery"`
	GalleryData   GalleryData              `json:"gallery_data"`
	MediaMetadata map[string]MediaMetadata `json:"media_metadata"`
	Preview       Preview                  `json:"preview"`
}

// CreatedTime converts the created_utc epoch seconds to a time.Time
func (p *Post) CreatedTime() time.Time {
	return time.Unix(int64(p.CreatedUTC), 0).UTC()
}

// GalleryData lists the ordered items of a gallery post
type GalleryData struct {
	Items []GalleryItem `json:"items"`
}

// GalleryItem references an entry in the post's media metadata
type GalleryItem struct {
	MediaID string `json:"media_id"`
}

// MediaMetadata describes a single gallery image
type MediaMetadata struct {
	Status string      `json:"status"`
	S      MediaSource `json:"s"`
}

// MediaSource is the full-size variant of a gallery image
type MediaSource struct {
	U string `json:"u"`
	X int    `json:"x"`
	Y int    `json:"y"`
}

// Preview holds the preview images Reddit attaches to link posts
type Preview struct {
	Images []PreviewImage `json:"images"`
}

// PreviewImage is a preview entry with its source rendition
type PreviewImage struct {
	ID          string          `json:"id"`
	Source      PreviewSource   `json:"source"`
	Resolutions []PreviewSource `json:"resolutions"`
}

// PreviewSource is a single preview rendition
type PreviewSource struct {
	URL    string `json:"url"`
	Width  int64  `json:"width"`
	Height int64  `json:"height"`
}

// Comment represents a top-level comment on a post
type Comment struct {
	ID            string  `json:"id"`
	Author        string  `json:"author"`
	Body          string  `json:"body"`
	Stickied      bool    `json:"stickied"`
	Distinguished string  `json:"distinguished"`
	CreatedUTC    float64 `json:"created_utc"`
}

// tokenResponse is the OAuth access token payload
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// Flair is a flair filter applied while iterating a listing
type Flair string

const (
	FlairPaid Flair = "Paid"
	FlairFree Flair = "Free"
	FlairAll  Flair = "All"
)

// ParseFlair normalizes a flair filter string to a Flair value
func ParseFlair(s string) (Flair, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paid":
		return FlairPaid, true
	case "free":
		return FlairFree, true
	case "all":
		return FlairAll, true
	default:
		return "", false
	}
}

// Matches reports whether a post's flair text passes this filter.
// FlairAll matches everything, including posts without a flair.
func (f Flair) Matches(linkFlairText string) bool {
	if f == FlairAll {
		return true
	}
	return strings.EqualFold(string(f), strings.TrimSpace(linkFlairText))
}
