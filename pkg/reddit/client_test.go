package reddit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"psrscraper/pkg/config"
	"psrscraper/pkg/errors"
	"psrscraper/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

// Helper function to create a mock HTTP client
func newMockHTTPClient(handler func(req *http.Request) (*http.Response, error)) *http.Client {
	return &http.Client{
		Transport: &mockRoundTripper{handler: handler},
		Timeout:   30 * time.Second,
	}
}

// Helper function to create a response
func newResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func testRedditConfig() *config.RedditConfig {
	return &config.RedditConfig{
		ClientID:       "test-id",
		ClientSecret:   "test-secret",
		UserAgent:      "psrscraper test",
		RequestTimeout: 30 * time.Second,
	}
}

// Helper function to create a mock client with predefined responses keyed by URL.
// The client is given a token so requests skip the token exchange.
func newTestClient(log logger.Logger, responses map[string]interface{}) *Client {
	mockHTTPClient := newMockHTTPClient(func(req *http.Request) (*http.Response, error) {
		if response, exists := responses[req.URL.String()]; exists {
			switch v := response.(type) {
			case error:
				return nil, v
			case int:
				// Just status code
				resp := newResponse(v, "")
				resp.Request = req
				return resp, nil
			default:
				// Assume it's a struct to be JSON encoded
				responseBody, _ := json.Marshal(v)
				return &http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewReader(responseBody)),
					Header:     make(http.Header),
					Request:    req,
				}, nil
			}
		}
		// Default to 404 for unmatched URLs
		resp := newResponse(http.StatusNotFound, "")
		resp.Request = req
		return resp, nil
	})

	client := NewClient(testRedditConfig(), log)
	client.httpClient = mockHTTPClient
	client.token = "test-token"
	client.tokenExpiry = time.Now().Add(time.Hour)
	return client
}

func postThing(t *testing.T, post Post) Thing {
	t.Helper()
	data, err := json.Marshal(post)
	require.NoError(t, err)
	return Thing{Kind: "t3", Data: data}
}

func commentThing(t *testing.T, comment Comment) Thing {
	t.Helper()
	data, err := json.Marshal(comment)
	require.NoError(t, err)
	return Thing{Kind: "t1", Data: data}
}

func TestNewClient(t *testing.T) {
	log := logger.NewTestLogger()
	client := NewClient(testRedditConfig(), log)

	assert.NotNil(t, client)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.headers)
	assert.Equal(t, BaseURL, client.baseURL)
	assert.Equal(t, TokenURL, client.tokenURL)
	assert.Equal(t, log, client.logger)
}

func TestAuthenticate(t *testing.T) {
	log := logger.NewTestLogger()

	t.Run("successful token exchange", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)

			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "test-id", user)
			assert.Equal(t, "test-secret", pass)

			require.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
			assert.Equal(t, "psrscraper test", r.Header.Get("User-Agent"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(tokenResponse{
				AccessToken: "granted-token",
				TokenType:   "bearer",
				ExpiresIn:   3600,
			})
		}))
		defer server.Close()

		client := NewClient(testRedditConfig(), log)
		client.tokenURL = server.URL

		err := client.Authenticate()
		require.NoError(t, err)
		assert.Equal(t, "granted-token", client.token)
		assert.True(t, client.tokenExpiry.After(time.Now()))
	})

	t.Run("rejected credentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewClient(testRedditConfig(), log)
		client.tokenURL = server.URL

		err := client.Authenticate()
		assert.Error(t, err)

		var apiErr *errors.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, errors.ErrorTypeAuth, apiErr.Type)
	})

	t.Run("empty token in response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error": "invalid_grant"}`))
		}))
		defer server.Close()

		client := NewClient(testRedditConfig(), log)
		client.tokenURL = server.URL

		err := client.Authenticate()
		assert.Error(t, err)

		var apiErr *errors.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, errors.ErrorTypeAuth, apiErr.Type)
	})
}

func TestEnsureToken(t *testing.T) {
	log := logger.NewTestLogger()

	t.Run("valid token is reused", func(t *testing.T) {
		client := NewClient(testRedditConfig(), log)
		client.token = "cached"
		client.tokenExpiry = time.Now().Add(time.Hour)
		// No token server configured; a token request would fail
		client.tokenURL = "http://127.0.0.1:0"

		require.NoError(t, client.ensureToken())
		assert.Equal(t, "cached", client.token)
	})

	t.Run("expiring token is refreshed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(tokenResponse{AccessToken: "fresh", ExpiresIn: 3600})
		}))
		defer server.Close()

		client := NewClient(testRedditConfig(), log)
		client.token = "stale"
		client.tokenExpiry = time.Now().Add(10 * time.Second)
		client.tokenURL = server.URL

		require.NoError(t, client.ensureToken())
		assert.Equal(t, "fresh", client.token)
	})
}

func TestCheckResponseStatus(t *testing.T) {
	client := NewClient(testRedditConfig(), logger.NewTestLogger())

	tests := []struct {
		name         string
		statusCode   int
		expectedType errors.ErrorType
	}{
		{name: "200 OK", statusCode: http.StatusOK},
		{name: "401 Unauthorized", statusCode: http.StatusUnauthorized, expectedType: errors.ErrorTypeAuth},
		{name: "403 Forbidden", statusCode: http.StatusForbidden, expectedType: errors.ErrorTypeAuth},
		{name: "404 Not Found", statusCode: http.StatusNotFound, expectedType: errors.ErrorTypeNotFound},
		{name: "429 Too Many Requests", statusCode: http.StatusTooManyRequests, expectedType: errors.ErrorTypeRateLimit},
		{name: "500 Internal Server Error", statusCode: http.StatusInternalServerError, expectedType: errors.ErrorTypeServerError},
		{name: "503 Service Unavailable", statusCode: http.StatusServiceUnavailable, expectedType: errors.ErrorTypeServerError},
		{name: "400 Bad Request", statusCode: http.StatusBadRequest, expectedType: errors.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "http://example.com", nil)
			resp := &http.Response{
				StatusCode: tt.statusCode,
				Request:    req,
			}

			err := client.checkResponseStatus(resp)
			if tt.expectedType == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				var apiErr *errors.Error
				assert.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.expectedType, apiErr.Type)
				assert.Equal(t, tt.statusCode, apiErr.Code)
			}
		})
	}

	t.Run("response without request", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusInternalServerError}

		err := client.checkResponseStatus(resp)
		assert.Error(t, err)

		var apiErr *errors.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, errors.ErrorTypeServerError, apiErr.Type)
	})
}

func TestFetchNewPosts(t *testing.T) {
	log := logger.NewTestLogger()

	t.Run("collects posts matching flair", func(t *testing.T) {
		listing := Listing{
			Kind: "Listing",
			Data: ListingData{
				After: "",
				Children: []Thing{
					postThing(t, Post{ID: "aaa111", Title: "Remove background", LinkFlairText: "Paid"}),
					postThing(t, Post{ID: "bbb222", Title: "Restore photo", LinkFlairText: "Free"}),
					postThing(t, Post{ID: "ccc333", Title: "Colorize this", LinkFlairText: "Paid"}),
				},
			},
		}

		client := newTestClient(log, map[string]interface{}{
			GetNewListingURL("PhotoshopRequest", ""): listing,
		})

		posts, err := client.FetchNewPosts("PhotoshopRequest", FlairPaid, 5)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "aaa111", posts[0].ID)
		assert.Equal(t, "ccc333", posts[1].ID)
	})

	t.Run("paginates until count is reached", func(t *testing.T) {
		page1 := Listing{
			Data: ListingData{
				After: "t3_bbb222",
				Children: []Thing{
					postThing(t, Post{ID: "aaa111", LinkFlairText: "Paid"}),
					postThing(t, Post{ID: "bbb222", LinkFlairText: "Free"}),
				},
			},
		}
		page2 := Listing{
			Data: ListingData{
				After: "",
				Children: []Thing{
					postThing(t, Post{ID: "ccc333", LinkFlairText: "Paid"}),
				},
			},
		}

		client := newTestClient(log, map[string]interface{}{
			GetNewListingURL("PhotoshopRequest", ""):          page1,
			GetNewListingURL("PhotoshopRequest", "t3_bbb222"): page2,
		})

		posts, err := client.FetchNewPosts("PhotoshopRequest", FlairPaid, 2)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "aaa111", posts[0].ID)
		assert.Equal(t, "ccc333", posts[1].ID)
	})

	t.Run("stops at end of listing", func(t *testing.T) {
		listing := Listing{
			Data: ListingData{
				After: "",
				Children: []Thing{
					postThing(t, Post{ID: "aaa111", LinkFlairText: "Paid"}),
				},
			},
		}

		client := newTestClient(log, map[string]interface{}{
			GetNewListingURL("PhotoshopRequest", ""): listing,
		})

		posts, err := client.FetchNewPosts("PhotoshopRequest", FlairPaid, 10)
		require.NoError(t, err)
		assert.Len(t, posts, 1)
	})

	t.Run("all flair matches unflaired posts", func(t *testing.T) {
		listing := Listing{
			Data: ListingData{
				Children: []Thing{
					postThing(t, Post{ID: "aaa111", LinkFlairText: ""}),
					postThing(t, Post{ID: "bbb222", LinkFlairText: "Paid"}),
				},
			},
		}

		client := newTestClient(log, map[string]interface{}{
			GetNewListingURL("PhotoshopRequest", ""): listing,
		})

		posts, err := client.FetchNewPosts("PhotoshopRequest", FlairAll, 5)
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	})

	t.Run("listing fetch error", func(t *testing.T) {
		client := newTestClient(log, map[string]interface{}{
			GetNewListingURL("PhotoshopRequest", ""): http.StatusInternalServerError,
		})

		posts, err := client.FetchNewPosts("PhotoshopRequest", FlairPaid, 5)
		assert.Nil(t, posts)
		assert.Error(t, err)

		var apiErr *errors.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, errors.ErrorTypeServerError, apiErr.Type)
	})
}

func TestFetchComments(t *testing.T) {
	log := logger.NewTestLogger()

	t.Run("returns top-level comments", func(t *testing.T) {
		response := []Listing{
			{Data: ListingData{Children: []Thing{postThing(t, Post{ID: "aaa111"})}}},
			{Data: ListingData{Children: []Thing{
				commentThing(t, Comment{ID: "c1", Author: "psr-bot", Body: "Request Type: Paid", Stickied: true}),
				commentThing(t, Comment{ID: "c2", Author: "helper", Body: "Here you go ![edit](https://i.redd.it/abc.jpg)"}),
			}}},
		}

		client := newTestClient(log, map[string]interface{}{
			GetCommentsURL("aaa111"): response,
		})

		comments, err := client.FetchComments("aaa111")
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "psr-bot", comments[0].Author)
		assert.True(t, comments[0].Stickied)
		assert.Equal(t, "helper", comments[1].Author)
	})

	t.Run("ignores non-comment children", func(t *testing.T) {
		response := []Listing{
			{Data: ListingData{}},
			{Data: ListingData{Children: []Thing{
				commentThing(t, Comment{ID: "c1", Author: "helper"}),
				{Kind: "more", Data: json.RawMessage(`{"count": 12}`)},
			}}},
		}

		client := newTestClient(log, map[string]interface{}{
			GetCommentsURL("aaa111"): response,
		})

		comments, err := client.FetchComments("aaa111")
		require.NoError(t, err)
		assert.Len(t, comments, 1)
	})

	t.Run("malformed response", func(t *testing.T) {
		response := []Listing{
			{Data: ListingData{}},
		}

		client := newTestClient(log, map[string]interface{}{
			GetCommentsURL("aaa111"): response,
		})

		comments, err := client.FetchComments("aaa111")
		assert.Nil(t, comments)
		assert.Error(t, err)

		var apiErr *errors.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, errors.ErrorTypeParsing, apiErr.Type)
	})
}

func TestDownloadImage(t *testing.T) {
	log := logger.NewTestLogger()
	client := NewClient(testRedditConfig(), log)

	t.Run("successful download", func(t *testing.T) {
		expectedData := []byte("fake image data")

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "psrscraper test", r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "image/jpeg")
			w.WriteHeader(http.StatusOK)
			w.Write(expectedData)
		}))
		defer server.Close()

		data, contentType, err := client.DownloadImage(server.URL + "/photo.jpg")
		require.NoError(t, err)
		assert.Equal(t, expectedData, data)
		assert.Equal(t, "image/jpeg", contentType)
	})

	t.Run("download error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		data, _, err := client.DownloadImage(server.URL + "/notfound.jpg")
		assert.Nil(t, data)
		assert.Error(t, err)

		var apiErr *errors.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, errors.ErrorTypeNotFound, apiErr.Type)
	})
}

func TestParseFlair(t *testing.T) {
	tests := []struct {
		input string
		want  Flair
		ok    bool
	}{
		{"Paid", FlairPaid, true},
		{"paid", FlairPaid, true},
		{" FREE ", FlairFree, true},
		{"all", FlairAll, true},
		{"Solved", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseFlair(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseFlair(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFlairMatches(t *testing.T) {
	assert.True(t, FlairAll.Matches(""))
	assert.True(t, FlairAll.Matches("Paid"))
	assert.True(t, FlairPaid.Matches("Paid"))
	assert.True(t, FlairPaid.Matches("paid "))
	assert.False(t, FlairPaid.Matches("Free"))
	assert.False(t, FlairFree.Matches(""))
}

func TestPostCreatedTime(t *testing.T) {
	post := Post{CreatedUTC: 1700000000}
	created := post.CreatedTime()

	assert.Equal(t, time.UTC, created.Location())
	assert.Equal(t, int64(1700000000), created.Unix())
}
