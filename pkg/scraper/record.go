package scraper

import (
	"fmt"
	"strings"
	"time"

	"psrscraper/pkg/psrbot"
)

// PostRecord is the structured record written for each archived post
type PostRecord struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	TitleTranslated    string          `json:"title_translated,omitempty"`
	Author             string          `json:"author"`
	Created            time.Time       `json:"created"`
	Score              int             `json:"score"`
	URL                string          `json:"url"`
	Selftext           string          `json:"selftext,omitempty"`
	SelftextTranslated string          `json:"selftext_translated,omitempty"`
	NumComments        int             `json:"num_comments"`
	Flair              string          `json:"flair,omitempty"`
	ImageURLs          []string        `json:"image_urls,omitempty"`
	BotDetails         *psrbot.Details `json:"psr_bot_details,omitempty"`
}

// RenderText produces the human-readable rendering written next to the JSON
func (r *PostRecord) RenderText() string {
	var b strings.Builder

	writeField := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s: %s\n", label, value)
	}

	writeField("Post ID", r.ID)
	writeField("Title", r.Title)
	writeField("Title (translated)", r.TitleTranslated)
	writeField("Author", r.Author)
	writeField("Created", r.Created.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Score: %d\n", r.Score)
	writeField("URL", r.URL)
	writeField("Flair", r.Flair)
	fmt.Fprintf(&b, "Comments: %d\n", r.NumComments)

	if r.BotDetails != nil && !r.BotDetails.IsEmpty() {
		b.WriteString("\n--- Bot Details ---\n")
		writeField("Request Type", r.BotDetails.RequestType)
		writeField("Status", r.BotDetails.Status)
		writeField("Deadline", r.BotDetails.Deadline)
		writeField("Completion Deadline", r.BotDetails.CompletionDeadline)
	}

	if r.Selftext != "" {
		b.WriteString("\n--- Text ---\n")
		b.WriteString(r.Selftext)
		b.WriteString("\n")
	}
	if r.SelftextTranslated != "" {
		b.WriteString("\n--- Text (translated) ---\n")
		b.WriteString(r.SelftextTranslated)
		b.WriteString("\n")
	}

	if len(r.ImageURLs) > 0 {
		b.WriteString("\n--- Images ---\n")
		for _, u := range r.ImageURLs {
			b.WriteString(u)
			b.WriteString("\n")
		}
	}

	return b.String()
}
