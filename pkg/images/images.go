// Package images extracts downloadable image URLs from Reddit posts and
// comments, and derives local filenames from source URLs.
package images

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"psrscraper/pkg/reddit"
)

// imageExtensions are the file extensions treated as downloadable images
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// imageHosts are Reddit's image CDNs; URLs on these hosts are images even
// when the path carries no recognizable extension.
var imageHosts = map[string]bool{
	"i.redd.it":       true,
	"preview.redd.it": true,
	"i.imgur.com":     true,
}

var (
	markdownImageRe = regexp.MustCompile(`!\[.*?\]\((.*?)\)`)
	bareURLRe       = regexp.MustCompile(`https?://[^\s<>"\)]+|www\.[^\s<>"\)]+`)
)

// IsImageURL reports whether a URL points at a downloadable image, either
// by extension or by known image host.
func IsImageURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	if imageHosts[strings.ToLower(parsed.Host)] {
		return true
	}
	return imageExtensions[strings.ToLower(path.Ext(parsed.Path))]
}

// FromPost collects the image URLs of a post in display order: gallery
// items first, then the link URL, then the preview source, then any images
// embedded in the selftext. Duplicates are removed preserving order.
func FromPost(post *reddit.Post) []string {
	var urls []string

	if post.IsGallery {
		for _, item := range post.GalleryData.Items {
			meta, ok := post.MediaMetadata[item.MediaID]
			if !ok || meta.Status != "valid" || meta.S.U == "" {
				continue
			}
			urls = append(urls, unescapeRedditURL(meta.S.U))
		}
	} else if IsImageURL(post.URL) {
		urls = append(urls, post.URL)
	} else if len(post.Preview.Images) > 0 && post.Preview.Images[0].Source.URL != "" {
		urls = append(urls, unescapeRedditURL(post.Preview.Images[0].Source.URL))
	}

	urls = append(urls, fromText(post.Selftext)...)

	return dedupe(urls)
}

// FromComment collects the image URLs embedded in a comment body
func FromComment(comment *reddit.Comment) []string {
	return dedupe(fromText(comment.Body))
}

// fromText extracts image URLs from markdown image syntax and bare links
func fromText(text string) []string {
	var urls []string

	for _, m := range markdownImageRe.FindAllStringSubmatch(text, -1) {
		candidate := unescapeRedditURL(strings.TrimSpace(m[1]))
		if IsImageURL(candidate) {
			urls = append(urls, candidate)
		}
	}

	for _, raw := range bareURLRe.FindAllString(text, -1) {
		candidate := unescapeRedditURL(normalizeBareURL(raw))
		if IsImageURL(candidate) {
			urls = append(urls, candidate)
		}
	}

	return urls
}

func normalizeBareURL(raw string) string {
	raw = strings.TrimRight(raw, ".,;:!?")
	if strings.HasPrefix(raw, "www.") {
		raw = "https://" + raw
	}
	return raw
}

// unescapeRedditURL undoes the HTML entity escaping Reddit applies to
// preview and media URLs embedded in JSON.
func unescapeRedditURL(rawURL string) string {
	return strings.ReplaceAll(rawURL, "&amp;", "&")
}

func dedupe(urls []string) []string {
	if len(urls) < 2 {
		return urls
	}
	seen := make(map[string]bool, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// FilenameFromURL derives a local filename from a source URL: the unescaped
// basename of the URL path with the query string stripped. Returns an empty
// string when the URL has no usable basename.
func FilenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" {
		return ""
	}

	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}
