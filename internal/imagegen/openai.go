package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIConfig configures the primary image provider.
type OpenAIConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	TimeoutSeconds int
}

// OpenAI calls the images/generations endpoint and decodes the b64_json
// payload.
type OpenAI struct {
	cfg        OpenAIConfig
	httpClient *http.Client
}

// NewOpenAI constructs the provider.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	timeout := 120 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "dall-e-3"
	}
	return &OpenAI{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name implements Provider.
func (o *OpenAI) Name() string { return "openai" }

type openAIRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
	Quality        string `json:"quality"`
}

type openAIResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Generate implements Provider.
func (o *OpenAI) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if strings.TrimSpace(o.cfg.APIKey) == "" {
		return nil, errors.New("openai image: api key required")
	}
	payload := openAIRequest{
		Model:          o.cfg.Model,
		Prompt:         prompt,
		N:              1,
		Size:           "1792x1024",
		ResponseFormat: "b64_json",
		Quality:        "hd",
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openai image: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.cfg.BaseURL+"/images/generations", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("openai image: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai image: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai image: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("openai image: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded openAIResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("openai image: decode response: %w", err)
	}
	if len(decoded.Data) == 0 || decoded.Data[0].B64JSON == "" {
		return nil, errors.New("openai image: response has no image data")
	}
	raw, err := base64.StdEncoding.DecodeString(decoded.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("openai image: decode base64: %w", err)
	}
	return raw, nil
}
