package storage

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// PostJSONFile is the structured record written into each post directory
	PostJSONFile = "post_data.json"

	// PostTextFile is the human-readable record written alongside the JSON
	PostTextFile = "post_data.txt"

	// CommentsDirName holds images downloaded from a post's comments
	CommentsDirName = "comments"
)

// Manager handles the on-disk output tree and duplicate detection.
// Output is laid out as <base>/<YYYY-MM-DD>/<post_id>/ with comment images
// under a comments/ subdirectory.
type Manager struct {
	baseDir string
	seen    map[string]bool
	sources map[string]bool
	mu      sync.RWMutex
}

// NewManager creates a storage manager rooted at baseDir
func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		baseDir: baseDir,
		seen:    make(map[string]bool),
		sources: make(map[string]bool),
	}, nil
}

// BaseDir returns the output root
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// PostDir creates and returns the directory for a post, grouped by the
// post's creation date. Files already present are registered for
// duplicate detection so reruns skip completed downloads.
func (m *Manager) PostDir(created time.Time, postID string) (string, error) {
	dir := filepath.Join(m.baseDir, created.UTC().Format("2006-01-02"), postID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create post directory: %w", err)
	}

	if err := m.scanExistingFiles(dir); err != nil {
		return "", err
	}
	if err := m.scanExistingFiles(filepath.Join(dir, CommentsDirName)); err != nil {
		return "", err
	}

	return dir, nil
}

// CommentsDir creates and returns the comments subdirectory of a post dir
func (m *Manager) CommentsDir(postDir string) (string, error) {
	dir := filepath.Join(postDir, CommentsDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create comments directory: %w", err)
	}
	return dir, nil
}

// scanExistingFiles registers files already on disk for duplicate detection
func (m *Manager) scanExistingFiles(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read directory: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m.seen[filepath.Join(dir, entry.Name())] = true
	}

	return nil
}

// IsDownloaded checks if a file at dir/filename has already been written
func (m *Manager) IsDownloaded(dir, filename string) bool {
	key := filepath.Join(dir, filename)

	m.mu.RLock()
	known := m.seen[key]
	m.mu.RUnlock()
	if known {
		return true
	}

	// Double-check file existence
	if _, err := os.Stat(key); err == nil {
		m.mu.Lock()
		m.seen[key] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// MarkSource records a source-derived filename for dir and reports whether
// the same name was already recorded there. Reddit mirrors one upload under
// several URLs; only the first occurrence of a source filename is kept.
func (m *Manager) MarkSource(dir, filename string) bool {
	key := filepath.Join(dir, filename)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sources[key] {
		return true
	}
	m.sources[key] = true
	return false
}

// SaveImage writes image data to dir/filename using a temporary file and
// an atomic rename, then registers the file for duplicate detection.
func (m *Manager) SaveImage(dir, filename string, data []byte) error {
	target := filepath.Join(dir, filename)

	if err := writeAtomic(target, data); err != nil {
		return err
	}

	m.mu.Lock()
	m.seen[target] = true
	m.mu.Unlock()

	return nil
}

// SaveJSON marshals v with indentation and writes it to dir/name atomically
func (m *Manager) SaveJSON(dir, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return writeAtomic(filepath.Join(dir, name), append(data, '\n'))
}

// SaveText writes a text file to dir/name atomically
func (m *Manager) SaveText(dir, name, text string) error {
	return writeAtomic(filepath.Join(dir, name), []byte(text))
}

// DownloadedCount returns the number of files known to the manager
func (m *Manager) DownloadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.seen)
}

func writeAtomic(target string, data []byte) error {
	tempFile := target + ".tmp"

	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, target); err != nil {
		os.Remove(tempFile) // Clean up temp file
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// ExtensionFor picks a file extension for a downloaded image, preferring
// the extension already present in the filename, then the response
// Content-Type, and finally .jpg.
func ExtensionFor(filename, contentType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && ext != "." {
		return ext
	}

	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			switch mediaType {
			case "image/jpeg":
				return ".jpg"
			case "image/png":
				return ".png"
			case "image/gif":
				return ".gif"
			case "image/webp":
				return ".webp"
			case "image/bmp":
				return ".bmp"
			}
		}
	}

	return ".jpg"
}
