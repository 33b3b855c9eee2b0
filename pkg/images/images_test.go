package images

import (
	"testing"

	"psrscraper/pkg/reddit"

	"github.com/stretchr/testify/assert"
)

func TestIsImageURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{name: "jpg extension", url: "https://example.com/photo.jpg", expected: true},
		{name: "uppercase extension", url: "https://example.com/photo.PNG", expected: true},
		{name: "webp extension", url: "https://example.com/photo.webp", expected: true},
		{name: "i.redd.it without extension", url: "https://i.redd.it/abc123", expected: true},
		{name: "preview.redd.it with query", url: "https://preview.redd.it/abc.jpg?width=640&s=xyz", expected: true},
		{name: "imgur direct link", url: "https://i.imgur.com/abc123.jpeg", expected: true},
		{name: "reddit post link", url: "https://www.reddit.com/r/PhotoshopRequest/comments/abc", expected: false},
		{name: "video file", url: "https://example.com/clip.mp4", expected: false},
		{name: "relative path", url: "/photo.jpg", expected: false},
		{name: "empty", url: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsImageURL(tt.url))
		})
	}
}

func TestFromPost(t *testing.T) {
	t.Run("direct image link", func(t *testing.T) {
		post := &reddit.Post{URL: "https://i.redd.it/abc123.jpg"}

		urls := FromPost(post)
		assert.Equal(t, []string{"https://i.redd.it/abc123.jpg"}, urls)
	})

	t.Run("gallery post preserves item order", func(t *testing.T) {
		post := &reddit.Post{
			IsGallery: true,
			URL:       "https://www.reddit.com/gallery/abc123",
			GalleryData: reddit.GalleryData{
				Items: []reddit.GalleryItem{
					{MediaID: "m2"},
					{MediaID: "m1"},
					{MediaID: "missing"},
				},
			},
			MediaMetadata: map[string]reddit.MediaMetadata{
				"m1": {Status: "valid", S: reddit.MediaSource{U: "https://preview.redd.it/m1.jpg?width=640&amp;s=aaa"}},
				"m2": {Status: "valid", S: reddit.MediaSource{U: "https://preview.redd.it/m2.jpg?width=640&amp;s=bbb"}},
				"m3": {Status: "failed", S: reddit.MediaSource{U: "https://preview.redd.it/m3.jpg"}},
			},
		}

		urls := FromPost(post)
		assert.Equal(t, []string{
			"https://preview.redd.it/m2.jpg?width=640&s=bbb",
			"https://preview.redd.it/m1.jpg?width=640&s=aaa",
		}, urls)
	})

	t.Run("falls back to preview source", func(t *testing.T) {
		post := &reddit.Post{
			URL: "https://www.reddit.com/r/PhotoshopRequest/comments/abc",
			Preview: reddit.Preview{
				Images: []reddit.PreviewImage{
					{Source: reddit.PreviewSource{URL: "https://preview.redd.it/src.jpg?auto=webp&amp;s=ccc"}},
				},
			},
		}

		urls := FromPost(post)
		assert.Equal(t, []string{"https://preview.redd.it/src.jpg?auto=webp&s=ccc"}, urls)
	})

	t.Run("selftext images are appended", func(t *testing.T) {
		post := &reddit.Post{
			URL:      "https://i.redd.it/main.jpg",
			Selftext: "Here is another angle ![alt](https://i.redd.it/extra.png) and a note",
		}

		urls := FromPost(post)
		assert.Equal(t, []string{
			"https://i.redd.it/main.jpg",
			"https://i.redd.it/extra.png",
		}, urls)
	})

	t.Run("duplicates removed", func(t *testing.T) {
		post := &reddit.Post{
			URL:      "https://i.redd.it/main.jpg",
			Selftext: "same one: https://i.redd.it/main.jpg",
		}

		urls := FromPost(post)
		assert.Equal(t, []string{"https://i.redd.it/main.jpg"}, urls)
	})

	t.Run("text post without images", func(t *testing.T) {
		post := &reddit.Post{
			URL:      "https://www.reddit.com/r/PhotoshopRequest/comments/abc",
			Selftext: "Please see the comments for the photo.",
		}

		assert.Empty(t, FromPost(post))
	})
}

func TestFromComment(t *testing.T) {
	t.Run("markdown image", func(t *testing.T) {
		comment := &reddit.Comment{Body: "Done! ![result](https://i.redd.it/edit1.jpg)"}

		urls := FromComment(comment)
		assert.Equal(t, []string{"https://i.redd.it/edit1.jpg"}, urls)
	})

	t.Run("bare image link with trailing punctuation", func(t *testing.T) {
		comment := &reddit.Comment{Body: "Here you go: https://i.imgur.com/xyz.png."}

		urls := FromComment(comment)
		assert.Equal(t, []string{"https://i.imgur.com/xyz.png"}, urls)
	})

	t.Run("escaped preview URL", func(t *testing.T) {
		comment := &reddit.Comment{Body: "![a](https://preview.redd.it/x.jpg?width=1080&amp;s=abc)"}

		urls := FromComment(comment)
		assert.Equal(t, []string{"https://preview.redd.it/x.jpg?width=1080&s=abc"}, urls)
	})

	t.Run("multiple images keep order", func(t *testing.T) {
		comment := &reddit.Comment{
			Body: "![one](https://i.redd.it/a.jpg) and ![two](https://i.redd.it/b.jpg)",
		}

		urls := FromComment(comment)
		assert.Equal(t, []string{"https://i.redd.it/a.jpg", "https://i.redd.it/b.jpg"}, urls)
	})

	t.Run("non-image links ignored", func(t *testing.T) {
		comment := &reddit.Comment{Body: "See https://www.reddit.com/r/PhotoshopRequest/wiki/rules"}

		assert.Empty(t, FromComment(comment))
	})
}

func TestFilenameFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{name: "simple", url: "https://i.redd.it/abc123.jpg", expected: "abc123.jpg"},
		{name: "query stripped", url: "https://preview.redd.it/abc.jpg?width=640&s=x", expected: "abc.jpg"},
		{name: "percent escapes decoded", url: "https://example.com/my%20photo.png", expected: "my photo.png"},
		{name: "no path", url: "https://i.redd.it/", expected: ""},
		{name: "host only", url: "https://i.redd.it", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FilenameFromURL(tt.url))
		})
	}
}
