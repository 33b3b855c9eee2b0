package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"psrscraper/pkg/reddit"
)

// imageFixture is a canned image response
type imageFixture struct {
	data        []byte
	contentType string
}

// MockRedditServer simulates the Reddit OAuth and API endpoints with
// in-memory fixtures.
type MockRedditServer struct {
	server         *httptest.Server
	mu             sync.RWMutex
	requestCount   int32
	tokenRequests  int32
	imageRequests  int32
	posts          []reddit.Post
	comments       map[string][]reddit.Comment
	images         map[string]imageFixture
	errorResponses map[string]int // Map of path prefixes to error codes
}

// NewMockRedditServer creates a new mock Reddit API server
func NewMockRedditServer() *MockRedditServer {
	m := &MockRedditServer{
		comments:       make(map[string][]reddit.Comment),
		images:         make(map[string]imageFixture),
		errorResponses: make(map[string]int),
	}

	mux := http.NewServeMux()

	// OAuth token endpoint
	mux.HandleFunc("/api/v1/access_token", m.handleToken)

	// Subreddit "new" listing
	mux.HandleFunc("/r/", m.handleListing)

	// Post comments
	mux.HandleFunc("/comments/", m.handleComments)

	// Image hosting (simulated CDN)
	mux.HandleFunc("/images/", m.handleImage)

	m.server = httptest.NewServer(mux)
	return m
}

// handleToken handles app-only OAuth token requests
func (m *MockRedditServer) handleToken(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)
	atomic.AddInt32(&m.tokenRequests, 1)

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if _, _, ok := r.BasicAuth(); !ok {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorized"})
		return
	}

	body, _ := io.ReadAll(r.Body)
	if !strings.Contains(string(body), "grant_type=client_credentials") {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token": "mock_access_token",
		"token_type":   "bearer",
		"expires_in":   3600,
		"scope":        "*",
	})
}

// handleListing serves the subreddit's "new" listing from the configured posts
func (m *MockRedditServer) handleListing(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	if code := m.getErrorResponse(r.URL.Path); code > 0 {
		m.sendError(w, code)
		return
	}

	m.mu.RLock()
	posts := make([]reddit.Post, len(m.posts))
	copy(posts, m.posts)
	m.mu.RUnlock()

	// Single page; an empty after ends pagination
	listing := reddit.Listing{Kind: "Listing"}
	for i := range posts {
		data, err := json.Marshal(&posts[i])
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		listing.Data.Children = append(listing.Data.Children, reddit.Thing{
			Kind: "t3",
			Data: data,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&listing)
}

// handleComments serves a post's comment listing. Reddit returns two
// listings: the post itself, then the comments.
func (m *MockRedditServer) handleComments(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	if code := m.getErrorResponse(r.URL.Path); code > 0 {
		m.sendError(w, code)
		return
	}

	postID := strings.TrimPrefix(r.URL.Path, "/comments/")

	m.mu.RLock()
	comments := m.comments[postID]
	m.mu.RUnlock()

	commentListing := reddit.Listing{Kind: "Listing"}
	for i := range comments {
		data, err := json.Marshal(&comments[i])
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		commentListing.Data.Children = append(commentListing.Data.Children, reddit.Thing{
			Kind: "t1",
			Data: data,
		})
	}

	postListing := reddit.Listing{Kind: "Listing"}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode([]reddit.Listing{postListing, commentListing})
}

// handleImage serves canned image bytes
func (m *MockRedditServer) handleImage(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)
	atomic.AddInt32(&m.imageRequests, 1)

	if code := m.getErrorResponse(r.URL.Path); code > 0 {
		w.WriteHeader(code)
		return
	}

	m.mu.RLock()
	fixture, ok := m.images[r.URL.Path]
	m.mu.RUnlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", fixture.contentType)
	w.Write(fixture.data)
}

// sendError sends an error response
func (m *MockRedditServer) sendError(w http.ResponseWriter, code int) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": fmt.Sprintf("Error %d", code),
		"error":   code,
	})
}

// AddPost adds a post to the listing
func (m *MockRedditServer) AddPost(post reddit.Post) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts = append(m.posts, post)
}

// SetComments sets the comment fixtures for a post
func (m *MockRedditServer) SetComments(postID string, comments []reddit.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[postID] = comments
}

// AddImage registers an image under /images/<name> and returns its full URL
func (m *MockRedditServer) AddImage(name string, data []byte, contentType string) string {
	path := "/images/" + name
	m.mu.Lock()
	m.images[path] = imageFixture{data: data, contentType: contentType}
	m.mu.Unlock()
	return m.server.URL + path
}

// SetErrorResponse configures a path prefix to return a specific error code
func (m *MockRedditServer) SetErrorResponse(pathPrefix string, code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorResponses[pathPrefix] = code
}

// ClearErrorResponse removes error configuration for a path prefix
func (m *MockRedditServer) ClearErrorResponse(pathPrefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errorResponses, pathPrefix)
}

// getErrorResponse checks if an error is configured for the path
func (m *MockRedditServer) getErrorResponse(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for prefix, code := range m.errorResponses {
		if strings.HasPrefix(path, prefix) {
			return code
		}
	}
	return 0
}

// GetURL returns the base URL of the mock server
func (m *MockRedditServer) GetURL() string {
	return m.server.URL
}

// TokenURL returns the mock OAuth token endpoint
func (m *MockRedditServer) TokenURL() string {
	return m.server.URL + "/api/v1/access_token"
}

// GetRequestCount returns the total number of requests
func (m *MockRedditServer) GetRequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// GetTokenRequests returns the number of token requests
func (m *MockRedditServer) GetTokenRequests() int {
	return int(atomic.LoadInt32(&m.tokenRequests))
}

// GetImageRequests returns the number of image downloads served
func (m *MockRedditServer) GetImageRequests() int {
	return int(atomic.LoadInt32(&m.imageRequests))
}

// ResetCounters resets all request counters
func (m *MockRedditServer) ResetCounters() {
	atomic.StoreInt32(&m.requestCount, 0)
	atomic.StoreInt32(&m.tokenRequests, 0)
	atomic.StoreInt32(&m.imageRequests, 0)
}

// Close shuts down the mock server
func (m *MockRedditServer) Close() {
	m.server.Close()
}

// MockTranslationServer simulates an OpenAI-compatible chat completions
// endpoint. It echoes the user message back with a "translated: " prefix so
// tests can verify the pipeline without a real model.
type MockTranslationServer struct {
	server       *httptest.Server
	mu           sync.RWMutex
	requestCount int32
	statusCode   int
	lastModel    string
}

// NewMockTranslationServer creates a new mock translation server
func NewMockTranslationServer() *MockTranslationServer {
	m := &MockTranslationServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", m.handleCompletions)

	m.server = httptest.NewServer(mux)
	return m
}

// handleCompletions handles chat completion requests
func (m *MockTranslationServer) handleCompletions(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	m.mu.RLock()
	statusCode := m.statusCode
	m.mu.RUnlock()

	if statusCode > 0 {
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "simulated failure", "type": "server_error"},
		})
		return
	}

	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var request struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.lastModel = request.Model
	m.mu.Unlock()

	var userText string
	for _, msg := range request.Messages {
		if msg.Role == "user" {
			userText = msg.Content
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message": map[string]string{
					"role":    "assistant",
					"content": "translated: " + userText,
				},
			},
		},
	})
}

// SetStatusCode forces the server to respond with the given error status.
// Zero restores normal behavior.
func (m *MockTranslationServer) SetStatusCode(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCode = code
}

// GetRequestCount returns the number of completion requests
func (m *MockTranslationServer) GetRequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// LastModel returns the model named in the most recent request
func (m *MockTranslationServer) LastModel() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastModel
}

// GetURL returns the base URL of the mock server
func (m *MockTranslationServer) GetURL() string {
	return m.server.URL
}

// Close shuts down the mock server
func (m *MockTranslationServer) Close() {
	m.server.Close()
}
