// Package psrbot parses the moderation bot's comment on r/PhotoshopRequest
// submissions. The bot posts a stickied summary with the request type, the
// current status, and any deadlines.
package psrbot

import (
	"regexp"
	"strings"

	"psrscraper/pkg/reddit"
)

// DefaultBotUsername is the account the subreddit's moderation bot posts from
const DefaultBotUsername = "psr-bot"

// Details holds the fields parsed from a bot comment. Fields the bot did
// not mention are left empty and omitted from JSON output.
type Details struct {
	RequestType        string `json:"request_type,omitempty"`
	Status             string `json:"status,omitempty"`
	Deadline           string `json:"deadline,omitempty"`
	CompletionDeadline string `json:"completion_deadline,omitempty"`
}

// IsEmpty reports whether no field was parsed from the comment
func (d Details) IsEmpty() bool {
	return d.RequestType == "" && d.Status == "" && d.Deadline == "" && d.CompletionDeadline == ""
}

// IsSolved reports whether the bot marked the request as solved
func (d Details) IsSolved() bool {
	return strings.EqualFold(d.Status, "solved")
}

var (
	requestTypeRe        = regexp.MustCompile(`(?i)Request Type:\s*(\w+)`)
	statusRe             = regexp.MustCompile(`(?i)Status:\s*(\w+)`)
	deadlineRe           = regexp.MustCompile(`(?i)Deadline:\s*([^\n]+)`)
	completionDeadlineRe = regexp.MustCompile(`(?i)Completion Deadline:\s*([^\n]+)`)
)

// The bot wraps its labels in markdown bold ("**Status:** Open"); the
// emphasis markers are stripped so the patterns see plain "Label: value".
var emphasisStripper = strings.NewReplacer("*", "", "`", "")

// Parse extracts the bot's structured fields from a comment body.
// The bot formats its comment as "Label: value" lines inside markdown;
// matching is case-insensitive and tolerant of surrounding text.
func Parse(body string) Details {
	var d Details
	body = emphasisStripper.Replace(body)

	if m := requestTypeRe.FindStringSubmatch(body); m != nil {
		d.RequestType = strings.TrimSpace(m[1])
	}
	if m := statusRe.FindStringSubmatch(body); m != nil {
		d.Status = strings.TrimSpace(m[1])
	}
	// "Completion Deadline:" also matches the plain deadline pattern, so
	// strip its lines before looking for "Deadline:".
	if m := completionDeadlineRe.FindStringSubmatch(body); m != nil {
		d.CompletionDeadline = strings.TrimSpace(m[1])
	}
	if m := deadlineRe.FindStringSubmatch(stripCompletionDeadline(body)); m != nil {
		d.Deadline = strings.TrimSpace(m[1])
	}

	return d
}

func stripCompletionDeadline(body string) string {
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if completionDeadlineRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// FindBotComment locates the bot's comment among a post's top-level
// comments. Stickied bot comments win; otherwise the first comment by the
// bot account is used. Returns nil when the bot has not commented.
func FindBotComment(comments []reddit.Comment, botUsername string) *reddit.Comment {
	if botUsername == "" {
		botUsername = DefaultBotUsername
	}

	var first *reddit.Comment
	for i := range comments {
		if !strings.EqualFold(comments[i].Author, botUsername) {
			continue
		}
		if comments[i].Stickied {
			return &comments[i]
		}
		if first == nil {
			first = &comments[i]
		}
	}
	return first
}
