// Package mail sends transactional email through an HTTP email API.
package mail

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

const defaultBaseURL = "https://api.resend.com"

// Message is a single outbound email.
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Mailer sends a message and returns the provider-assigned message ID.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Config controls the HTTP mailer.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// ResendMailer is the HTTP implementation of Mailer.
type ResendMailer struct {
	cfg        Config
	httpClient *http.Client
}

var _ Mailer = (*ResendMailer)(nil)

// NewResendMailer constructs the HTTP mailer.
func NewResendMailer(cfg Config) (*ResendMailer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("mail: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	timeout := 15 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &ResendMailer{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send implements Mailer. The call is made exactly once; delivery failures
// surface as errors and are never retried here.
func (m *ResendMailer) Send(ctx context.Context, msg Message) (string, error) {
	if msg.From == "" || len(msg.To) == 0 {
		return "", errors.New("mail: from and to are required")
	}
	encoded, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("mail: encode message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.cfg.BaseURL+"/emails", bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("mail: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mail: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("mail: read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("mail: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var decoded sendResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("mail: decode response: %w", err)
	}
	return decoded.ID, nil
}

// NoOpMailer discards messages. Used when email is not configured.
type NoOpMailer struct{}

var _ Mailer = (*NoOpMailer)(nil)

// Send implements Mailer.
func (NoOpMailer) Send(context.Context, Message) (string, error) {
	return "noop", nil
}
