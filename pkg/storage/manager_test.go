package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManager(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	// Test initial state
	if manager.DownloadedCount() != 0 {
		t.Error("Expected initial download count to be 0")
	}
	if manager.BaseDir() != tempDir {
		t.Errorf("Expected base dir %s, got %s", tempDir, manager.BaseDir())
	}

	// Test post directory layout
	created := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)
	postDir, err := manager.PostDir(created, "abc123")
	if err != nil {
		t.Fatalf("Failed to create post dir: %v", err)
	}

	expectedDir := filepath.Join(tempDir, "2026-08-20", "abc123")
	if postDir != expectedDir {
		t.Errorf("Expected post dir %s, got %s", expectedDir, postDir)
	}
	if _, err := os.Stat(postDir); err != nil {
		t.Errorf("Expected post dir to exist: %v", err)
	}

	// Test IsDownloaded for non-existent file
	if manager.IsDownloaded(postDir, "abc123_image_01.jpg") {
		t.Error("Expected IsDownloaded to return false for non-existent file")
	}

	// Test SaveImage
	testData := []byte("test image data")
	if err := manager.SaveImage(postDir, "abc123_image_01.jpg", testData); err != nil {
		t.Fatalf("Failed to save image: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(postDir, "abc123_image_01.jpg"))
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if !bytes.Equal(content, testData) {
		t.Error("File content does not match expected data")
	}

	if !manager.IsDownloaded(postDir, "abc123_image_01.jpg") {
		t.Error("Expected IsDownloaded to return true for saved file")
	}
}

func TestManagerScansExistingFiles(t *testing.T) {
	tempDir := t.TempDir()
	created := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	// Lay down files as a previous run would have
	postDir := filepath.Join(tempDir, "2026-08-20", "abc123")
	commentsDir := filepath.Join(postDir, "comments")
	if err := os.MkdirAll(commentsDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(postDir, "abc123_image_01.jpg"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(commentsDir, "helper_image_01.png"), []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if _, err := manager.PostDir(created, "abc123"); err != nil {
		t.Fatalf("Failed to open post dir: %v", err)
	}

	if !manager.IsDownloaded(postDir, "abc123_image_01.jpg") {
		t.Error("Expected existing post image to be detected")
	}
	if !manager.IsDownloaded(commentsDir, "helper_image_01.png") {
		t.Error("Expected existing comment image to be detected")
	}
	if manager.IsDownloaded(postDir, "abc123_image_02.jpg") {
		t.Error("Expected unseen filename to not be detected")
	}
}

func TestMarkSource(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatal(err)
	}

	postDir := filepath.Join(tempDir, "2026-08-20", "abc123")
	otherDir := filepath.Join(tempDir, "2026-08-20", "def456")

	if manager.MarkSource(postDir, "photo.jpg") {
		t.Error("Expected first occurrence of a source filename to be new")
	}
	if !manager.MarkSource(postDir, "photo.jpg") {
		t.Error("Expected repeated source filename to be reported as seen")
	}
	if manager.MarkSource(otherDir, "photo.jpg") {
		t.Error("Expected the same filename in another directory to be new")
	}
	if manager.MarkSource(postDir, "other.jpg") {
		t.Error("Expected a different filename to be new")
	}
}

func TestCommentsDir(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatal(err)
	}

	postDir, err := manager.PostDir(time.Now(), "abc123")
	if err != nil {
		t.Fatal(err)
	}

	commentsDir, err := manager.CommentsDir(postDir)
	if err != nil {
		t.Fatalf("Failed to create comments dir: %v", err)
	}
	if commentsDir != filepath.Join(postDir, "comments") {
		t.Errorf("Unexpected comments dir: %s", commentsDir)
	}
	if _, err := os.Stat(commentsDir); err != nil {
		t.Errorf("Expected comments dir to exist: %v", err)
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatal(err)
	}

	record := map[string]interface{}{
		"id":    "abc123",
		"title": "Remove the background please",
		"score": float64(42),
	}

	if err := manager.SaveJSON(tempDir, PostJSONFile, record); err != nil {
		t.Fatalf("Failed to save JSON: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tempDir, PostJSONFile))
	if err != nil {
		t.Fatalf("Failed to read JSON: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	if decoded["id"] != record["id"] || decoded["title"] != record["title"] || decoded["score"] != record["score"] {
		t.Errorf("Round-tripped record does not match: %v", decoded)
	}
}

func TestSaveText(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatal(err)
	}

	if err := manager.SaveText(tempDir, PostTextFile, "Title: hello\n"); err != nil {
		t.Fatalf("Failed to save text: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tempDir, PostTextFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Title: hello\n" {
		t.Errorf("Unexpected text content: %q", string(data))
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		expected    string
	}{
		{name: "extension from filename", filename: "photo.png", contentType: "image/jpeg", expected: ".png"},
		{name: "uppercase filename extension", filename: "photo.JPG", contentType: "", expected: ".jpg"},
		{name: "extension from content type", filename: "abc123", contentType: "image/webp", expected: ".webp"},
		{name: "content type with charset", filename: "abc123", contentType: "image/png; charset=utf-8", expected: ".png"},
		{name: "gif content type", filename: "abc123", contentType: "image/gif", expected: ".gif"},
		{name: "unknown content type falls back", filename: "abc123", contentType: "application/octet-stream", expected: ".jpg"},
		{name: "nothing known falls back", filename: "abc123", contentType: "", expected: ".jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtensionFor(tt.filename, tt.contentType); got != tt.expected {
				t.Errorf("ExtensionFor(%q, %q) = %q, want %q", tt.filename, tt.contentType, got, tt.expected)
			}
		})
	}
}
