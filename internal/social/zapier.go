package social

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ZapierPayload is the flattened shape the automation webhook consumes. The
// top-level fields are what a zap maps directly; blog_post carries the full
// record for multi-step workflows.
type ZapierPayload struct {
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	ImageURL      string         `json:"image_url"`
	LinkURL       string         `json:"link_url"`
	BlogPost      ZapierBlogPost `json:"blog_post"`
	SocialCardURL string         `json:"social_card_url"`
}

// ZapierBlogPost is the nested post record inside ZapierPayload.
type ZapierBlogPost struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Excerpt     string `json:"excerpt"`
	PublishedAt string `json:"published_at"`
	Author      string `json:"author"`
	ImageURL    string `json:"image_url"`
	BlogURL     string `json:"blog_url"`
}

// WebhookChannel posts announcements to a configured automation webhook.
type WebhookChannel struct {
	url        string
	httpClient *http.Client
}

var _ Channel = (*WebhookChannel)(nil)

// NewWebhookChannel constructs the channel.
func NewWebhookChannel(url string) (*WebhookChannel, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("social: webhook url is required")
	}
	return &WebhookChannel{
		url:        url,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Name implements Channel.
func (c *WebhookChannel) Name() string { return "zapier" }

// Publish implements Channel.
func (c *WebhookChannel) Publish(ctx context.Context, a Announcement) (string, error) {
	payload := ZapierPayload{
		Title:    a.Post.Title,
		Content:  a.Update,
		ImageURL: a.Post.ImageURL,
		LinkURL:  a.PostURL,
		BlogPost: ZapierBlogPost{
			ID:          a.Post.ID,
			Title:       a.Post.Title,
			Slug:        a.Post.Slug,
			Excerpt:     a.Excerpt,
			PublishedAt: a.Post.PublishedAt.UTC().Format(time.RFC3339),
			Author:      a.Post.AuthorName,
			ImageURL:    a.Post.ImageURL,
			BlogURL:     a.PostURL,
		},
		SocialCardURL: a.SocialCardURL,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("social: encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("social: new webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("social: webhook: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("social: webhook http %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return "sent to webhook", nil
}
