package ui

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusTracker keeps track of scrape progress across posts
type StatusTracker struct {
	TotalPosts       int
	PostsProcessed   int
	PostsSkipped     int
	ImagesDownloaded int
	ImagesSkipped    int
	Failures         int
	StartTime        time.Time
}

// NewStatusTracker creates a new status tracker
func NewStatusTracker(totalPosts int) *StatusTracker {
	return &StatusTracker{
		TotalPosts: totalPosts,
		StartTime:  time.Now(),
	}
}

// IncrementProcessed records a fully processed post
func (st *StatusTracker) IncrementProcessed() {
	st.PostsProcessed++
}

// IncrementSkipped records a post skipped before processing
func (st *StatusTracker) IncrementSkipped() {
	st.PostsSkipped++
}

// IncrementDownloaded records a downloaded image
func (st *StatusTracker) IncrementDownloaded() {
	st.ImagesDownloaded++
}

// IncrementImageSkipped records an image skipped as already on disk
func (st *StatusTracker) IncrementImageSkipped() {
	st.ImagesSkipped++
}

// IncrementFailures records a failed download or translation
func (st *StatusTracker) IncrementFailures() {
	st.Failures++
}

// GetPostProgress returns a formatted progress bar across posts
func (st *StatusTracker) GetPostProgress() string {
	const width = 20
	done := st.PostsProcessed + st.PostsSkipped
	total := st.TotalPosts
	if total == 0 {
		total = 1
	}
	progress := float64(done) / float64(total)
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, done, st.TotalPosts)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// PrintProgress prints the current progress status
func (st *StatusTracker) PrintProgress() {
	if IsQuietMode() {
		return
	}
	fmt.Printf("\r%s Posts: %s | Images: %d",
		Green("[ARCHIVED]"),
		st.GetPostProgress(),
		st.ImagesDownloaded)
}

// PrintPostStatus prints the post currently being processed
func (st *StatusTracker) PrintPostStatus(postID, title string) {
	if IsQuietMode() {
		return
	}
	fmt.Printf("\n%s %s %s\n", Magenta("[POST]"), Yellow(postID), Dim(truncateTitle(title, 60)))
}

// truncateTitle shortens a title to max runes, counting in runes so a
// multi-byte character is never split.
func truncateTitle(title string, max int) string {
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	return string(runes[:max-3]) + "..."
}

// PrintSummary prints the final scrape summary
func (st *StatusTracker) PrintSummary() {
	if IsQuietMode() {
		return
	}
	fmt.Printf("\n\n%s\n", Green("[SCRAPE COMPLETE]"))
	fmt.Printf("  Posts processed:   %d\n", st.PostsProcessed)
	fmt.Printf("  Posts skipped:     %d\n", st.PostsSkipped)
	fmt.Printf("  Images downloaded: %d\n", st.ImagesDownloaded)
	fmt.Printf("  Images skipped:    %d\n", st.ImagesSkipped)
	if st.Failures > 0 {
		fmt.Printf("  Failures:          %s\n", Red(fmt.Sprintf("%d", st.Failures)))
	}
	fmt.Printf("  Elapsed:           %s\n", st.GetElapsedTime().Round(time.Second))
}
