package reddit

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"psrscraper/pkg/config"
	"psrscraper/pkg/errors"
	"psrscraper/pkg/logger"
)

// Client is an app-only (client credentials) Reddit API client
type Client struct {
	httpClient   *http.Client
	headers      map[string]string
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	userAgent    string
	token        string
	tokenExpiry  time.Time
	logger       logger.Logger
}

// NewClient creates a new Reddit API client from the given configuration
func NewClient(cfg *config.RedditConfig, log logger.Logger) *Client {
	// Use default logger if none provided
	if log == nil {
		log = logger.GetLogger()
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"Accept": "application/json",
		},
		baseURL:      BaseURL,
		tokenURL:     TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		userAgent:    cfg.UserAgent,
		logger:       log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetEndpoints overrides the API and token endpoints, for testing
// against a local server.
func (c *Client) SetEndpoints(baseURL, tokenURL string) {
	c.baseURL = baseURL
	c.tokenURL = tokenURL
}

// Authenticate performs the app-only OAuth token request.
// Reddit grants roughly an hour per token; the expiry is tracked so
// subsequent requests re-authenticate transparently.
func (c *Client) Authenticate() error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequest("POST", c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.New(errors.ErrorTypeUnknown, 0, "failed to create token request: %v", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.DebugWithFields("requesting access token", map[string]interface{}{
		"url": c.tokenURL,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.New(errors.ErrorTypeNetwork, 0, "token request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.ErrorWithFields("token request rejected", map[string]interface{}{
			"status": resp.StatusCode,
		})
		return errors.New(errors.FromStatusCode(resp.StatusCode), resp.StatusCode,
			"token request returned status %d", resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return errors.New(errors.ErrorTypeParsing, resp.StatusCode, "failed to parse token response: %v", err)
	}
	if token.AccessToken == "" {
		return errors.New(errors.ErrorTypeAuth, resp.StatusCode, "token response contained no access token")
	}

	c.token = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)

	c.logger.DebugWithFields("access token acquired", map[string]interface{}{
		"expires_in": token.ExpiresIn,
	})

	return nil
}

// ensureToken authenticates if no valid token is held
func (c *Client) ensureToken() error {
	if c.token != "" && time.Until(c.tokenExpiry) > time.Minute {
		return nil
	}
	return c.Authenticate()
}

// doRequest performs an HTTP request with the configured headers and auth token
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.New(errors.ErrorTypeNetwork, 0, "network error: %v", err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// Get performs an authenticated GET request to the specified URL
func (c *Client) Get(url string) (*http.Response, error) {
	if err := c.ensureToken(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}

	return c.doRequest(req)
}

// GetJSON performs a GET request and decodes the JSON response
func (c *Client) GetJSON(url string, target interface{}) error {
	resp, err := c.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.New(errors.ErrorTypeNetwork, resp.StatusCode, "failed to read response body: %v", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errors.New(errors.ErrorTypeParsing, resp.StatusCode, "failed to parse JSON: %v", err)
	}

	return nil
}

// responseURL reports the request URL of a response for logging. Responses
// built by tests or intermediaries may carry no Request.
func responseURL(resp *http.Response) string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return ""
}

// checkResponseStatus checks the HTTP response status and returns appropriate errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    responseURL(resp),
		})
		return errors.New(errors.ErrorTypeAuth, resp.StatusCode, "authentication required")
	case http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    responseURL(resp),
		})
		return errors.New(errors.ErrorTypeNotFound, resp.StatusCode, "resource not found")
	case http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    responseURL(resp),
		})
		return errors.New(errors.ErrorTypeRateLimit, resp.StatusCode, "rate limit exceeded")
	default:
		if resp.StatusCode >= 500 {
			c.logger.ErrorWithFields("server error", map[string]interface{}{
				"status": resp.StatusCode,
				"url":    responseURL(resp),
			})
			return errors.New(errors.ErrorTypeServerError, resp.StatusCode, "server error")
		}
		if resp.StatusCode >= 400 {
			c.logger.ErrorWithFields("unexpected API error", map[string]interface{}{
				"status": resp.StatusCode,
				"url":    responseURL(resp),
			})
			return errors.New(errors.ErrorTypeUnknown, resp.StatusCode,
				"unexpected status code: %d", resp.StatusCode)
		}
		return nil
	}
}

// FetchNewPosts iterates the subreddit's "new" listing and collects posts
// whose flair passes the filter, stopping once count posts are collected or
// the listing is exhausted.
func (c *Client) FetchNewPosts(subreddit string, flair Flair, count int) ([]Post, error) {
	c.logger.DebugWithFields("fetching new posts", map[string]interface{}{
		"subreddit": subreddit,
		"flair":     string(flair),
		"count":     count,
	})

	var posts []Post
	after := ""

	for len(posts) < count {
		var listing Listing
		if err := c.GetJSON(newListingURL(c.baseURL, subreddit, after), &listing); err != nil {
			return nil, err
		}

		if len(listing.Data.Children) == 0 {
			break
		}

		for _, child := range listing.Data.Children {
			if child.Kind != "t3" {
				continue
			}
			var post Post
			if err := json.Unmarshal(child.Data, &post); err != nil {
				c.logger.WarnWithFields("skipping unparseable post", map[string]interface{}{
					"subreddit": subreddit,
					"error":     err.Error(),
				})
				continue
			}
			if !flair.Matches(post.LinkFlairText) {
				continue
			}
			posts = append(posts, post)
			if len(posts) == count {
				break
			}
		}

		after = listing.Data.After
		if after == "" {
			break
		}
	}

	c.logger.InfoWithFields("fetched posts", map[string]interface{}{
		"subreddit": subreddit,
		"matched":   len(posts),
	})

	return posts, nil
}

// FetchComments fetches the top-level comments of a post.
// The comments endpoint returns a two-element array: the post listing
// followed by the comment listing.
func (c *Client) FetchComments(postID string) ([]Comment, error) {
	c.logger.DebugWithFields("fetching comments", map[string]interface{}{
		"post_id": postID,
	})

	var listings []Listing
	if err := c.GetJSON(commentsURL(c.baseURL, postID), &listings); err != nil {
		return nil, err
	}

	if len(listings) < 2 {
		return nil, errors.New(errors.ErrorTypeParsing, 0,
			"comment response for %s had %d listings, expected 2", postID, len(listings))
	}

	var comments []Comment
	for _, child := range listings[1].Data.Children {
		if child.Kind != "t1" {
			continue
		}
		var comment Comment
		if err := json.Unmarshal(child.Data, &comment); err != nil {
			c.logger.WarnWithFields("skipping unparseable comment", map[string]interface{}{
				"post_id": postID,
				"error":   err.Error(),
			})
			continue
		}
		comments = append(comments, comment)
	}

	return comments, nil
}

// DownloadImage downloads an image and returns its bytes and Content-Type.
// Image hosts do not require the API token, but sending the configured
// user agent keeps the request identifiable.
func (c *Client) DownloadImage(imageURL string) ([]byte, string, error) {
	c.logger.DebugWithFields("downloading image", map[string]interface{}{
		"url": imageURL,
	})

	req, err := http.NewRequest("GET", imageURL, nil)
	if err != nil {
		return nil, "", errors.New(errors.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", errors.New(errors.ErrorTypeNetwork, 0, "network error: %v", err)
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, "", err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.ErrorWithFields("failed to read image data", map[string]interface{}{
			"url":   imageURL,
			"error": err.Error(),
		})
		return nil, "", errors.New(errors.ErrorTypeNetwork, 0, "failed to download image: %v", err)
	}

	c.logger.DebugWithFields("downloaded image", map[string]interface{}{
		"url":  imageURL,
		"size": len(data),
	})

	return data, resp.Header.Get("Content-Type"), nil
}
