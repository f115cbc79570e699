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
	"net/url"
	"strings"
	"time"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiConfig configures the fallback image provider.
type GeminiConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	TimeoutSeconds int
}

// Gemini calls the Imagen predict endpoint and decodes the base64 prediction.
type Gemini struct {
	cfg        GeminiConfig
	httpClient *http.Client
}

// NewGemini constructs the provider.
func NewGemini(cfg GeminiConfig) *Gemini {
	timeout := 120 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "imagen-3.0-generate-002"
	}
	return &Gemini{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Name implements Provider.
func (g *Gemini) Name() string { return "gemini" }

type geminiRequest struct {
	Instances  []geminiInstance `json:"instances"`
	Parameters geminiParameters `json:"parameters"`
}

type geminiInstance struct {
	Prompt string `json:"prompt"`
}

type geminiParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio"`
}

type geminiResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
	} `json:"predictions"`
}

// Generate implements Provider. An empty prediction list counts as failure so
// the chain can move on to the next provider.
func (g *Gemini) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if strings.TrimSpace(g.cfg.APIKey) == "" {
		return nil, errors.New("gemini image: api key required")
	}
	endpoint := fmt.Sprintf("%s/models/%s:predict?key=%s",
		g.cfg.BaseURL, g.cfg.Model, url.QueryEscape(g.cfg.APIKey))
	payload := geminiRequest{
		Instances:  []geminiInstance{{Prompt: prompt}},
		Parameters: geminiParameters{SampleCount: 1, AspectRatio: "16:9"},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gemini image: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("gemini image: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini image: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gemini image: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("gemini image: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded geminiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("gemini image: decode response: %w", err)
	}
	if len(decoded.Predictions) == 0 || decoded.Predictions[0].BytesBase64Encoded == "" {
		return nil, errors.New("gemini image: response has no predictions")
	}
	raw, err := base64.StdEncoding.DecodeString(decoded.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("gemini image: decode base64: %w", err)
	}
	return raw, nil
}
