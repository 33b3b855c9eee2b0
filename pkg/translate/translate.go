// Package translate provides title and selftext translation through an
// OpenAI-compatible chat completions API.
package translate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"psrscraper/pkg/config"
	"psrscraper/pkg/errors"
	"psrscraper/pkg/logger"
)

// Languages supported as translation targets
var Languages = []string{
	"Chinese",
	"Traditional Chinese",
	"Japanese",
	"Korean",
	"Spanish",
	"French",
	"German",
}

// IsSupportedLanguage reports whether lang is a valid translation target
func IsSupportedLanguage(lang string) bool {
	for _, l := range Languages {
		if strings.EqualFold(l, strings.TrimSpace(lang)) {
			return true
		}
	}
	return false
}

const (
	completionsPath = "/v1/chat/completions"

	// temperature keeps translations close to literal
	temperature = 0.3
)

const systemPromptFormat = "You are a translator. Translate the user's text to %s. " +
	"Preserve URLs, usernames, and technical terms exactly as written. " +
	"Reply with the translation only, no explanations."

// Client talks to an OpenAI-compatible chat completions endpoint
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     logger.Logger
}

// NewClient creates a translation client from the given configuration
func NewClient(cfg *config.OpenAIConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      model,
		logger:     log,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Translate translates text into the target language. Empty input is
// returned unchanged without a request.
func (c *Client) Translate(text, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if c.apiKey == "" {
		return "", errors.New(errors.ErrorTypeAuth, 0, "translation API key is not configured")
	}

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(systemPromptFormat, targetLanguage)},
			{Role: "user", Content: text},
		},
		Temperature: temperature,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.New(errors.ErrorTypeUnknown, 0, "failed to encode translation request: %v", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+completionsPath, bytes.NewReader(payload))
	if err != nil {
		return "", errors.New(errors.ErrorTypeUnknown, 0, "failed to create translation request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	c.logger.DebugWithFields("sending translation request", map[string]interface{}{
		"model":       c.model,
		"target_lang": targetLanguage,
		"text_length": len(text),
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.New(errors.ErrorTypeNetwork, 0, "translation request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.New(errors.ErrorTypeNetwork, resp.StatusCode, "failed to read translation response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnWithFields("translation API error", map[string]interface{}{
			"status":   resp.StatusCode,
			"duration": time.Since(start),
		})
		return "", errors.New(errors.FromStatusCode(resp.StatusCode), resp.StatusCode,
			"translation API returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.New(errors.ErrorTypeParsing, resp.StatusCode, "failed to parse translation response: %v", err)
	}
	if parsed.Error != nil {
		return "", errors.New(errors.ErrorTypeServerError, resp.StatusCode,
			"translation API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New(errors.ErrorTypeParsing, resp.StatusCode, "translation response contained no choices")
	}

	translated := strings.TrimSpace(parsed.Choices[0].Message.Content)

	c.logger.DebugWithFields("translation completed", map[string]interface{}{
		"target_lang": targetLanguage,
		"duration":    time.Since(start),
	})

	return translated, nil
}
