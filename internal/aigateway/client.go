// Package aigateway talks to an OpenAI-compatible chat-completions gateway
// that can return generated images.
package aigateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var (
	ErrRateLimited      = errors.New("ai gateway rate limited")
	ErrCreditsExhausted = errors.New("ai gateway credits exhausted")
	ErrNotConfigured    = errors.New("ai gateway api key is not configured")
	ErrNoImage          = errors.New("no image generated")
)

const defaultTimeout = 2 * time.Minute

type Client struct {
	client *http.Client
	url    string
	apiKey string
	model  string
	logger *slog.Logger
}

func NewClient(url, apiKey, model string, logger *slog.Logger) *Client {
	return &Client{
		client: &http.Client{Timeout: defaultTimeout},
		url:    url,
		apiKey: apiKey,
		model:  model,
		logger: logger.With("component", "ai_gateway"),
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model      string    `json:"model"`
	Messages   []message `json:"messages"`
	Modalities []string  `json:"modalities"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Images []struct {
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateImage sends prompt and returns the decoded bytes of the first
// image in the reply.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(completionRequest{
		Model:      c.model,
		Messages:   []message{{Role: "user", Content: prompt}},
		Modalities: []string{"image", "text"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.ErrorContext(ctx, "gateway error", "status", resp.StatusCode, "body", string(text))
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return nil, ErrRateLimited
		case http.StatusPaymentRequired:
			return nil, ErrCreditsExhausted
		}
		return nil, fmt.Errorf("ai gateway error: %d", resp.StatusCode)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 || len(out.Choices[0].Message.Images) == 0 {
		return nil, ErrNoImage
	}
	return DecodeDataURL(out.Choices[0].Message.Images[0].ImageURL.URL)
}

// DecodeDataURL decodes a base64 "data:image/...;base64," URL.
func DecodeDataURL(dataURL string) ([]byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:image/")
	if !ok {
		return nil, ErrNoImage
	}
	_, payload, ok := strings.Cut(rest, ";base64,")
	if !ok || payload == "" {
		return nil, ErrNoImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return data, nil
}

// ThumbnailPrompt is the prompt used for project thumbnails.
func ThumbnailPrompt(projectTitle string) string {
	return fmt.Sprintf("Generate a professional, futuristic robotics-themed thumbnail image for a project called %q. "+
		"The image should feature abstract robotic elements, circuit patterns, blue and cyan color scheme with glowing effects, tech aesthetic. "+
		"Modern, clean, professional look suitable for a portfolio. No text in the image.", projectTitle)
}
