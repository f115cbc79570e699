package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avablackwood/presskit/internal/blog"
)

const defaultTimeout = 15 * time.Second

// SanityConfig holds the connection parameters for the document API.
type SanityConfig struct {
	ProjectID      string
	Dataset        string
	APIVersion     string
	Token          string
	BaseURL        string // overrides the projectID-derived host, for tests
	TimeoutSeconds int
}

// SanityStore implements Store against the Sanity HTTP API: GROQ queries for
// reads, the mutate endpoint for creates, and the asset endpoint for uploads.
type SanityStore struct {
	cfg        SanityConfig
	httpClient *http.Client
}

var _ Store = (*SanityStore)(nil)

// NewSanityStore constructs the client.
func NewSanityStore(cfg SanityConfig) (*SanityStore, error) {
	if cfg.BaseURL == "" {
		if cfg.ProjectID == "" {
			return nil, errors.New("cms: project id is required")
		}
		cfg.BaseURL = fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Dataset == "" {
		cfg.Dataset = "production"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2025-07-17"
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &SanityStore{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

// query runs a GROQ query with JSON-encoded params and decodes the result.
func (s *SanityStore) query(ctx context.Context, groq string, params map[string]any, target any) error {
	values := url.Values{}
	values.Set("query", groq)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("cms query: encode param %s: %w", name, err)
		}
		values.Set("$"+name, string(encoded))
	}
	endpoint := fmt.Sprintf("%s/v%s/data/query/%s?%s",
		s.cfg.BaseURL, s.cfg.APIVersion, s.cfg.Dataset, values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("cms query: new request: %w", err)
	}
	s.authorize(req)

	body, err := s.do(req)
	if err != nil {
		return fmt.Errorf("cms query: %w", err)
	}
	var decoded queryResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("cms query: decode response: %w", err)
	}
	if len(decoded.Result) == 0 || string(decoded.Result) == "null" {
		return ErrNotFound
	}
	if err := json.Unmarshal(decoded.Result, target); err != nil {
		return fmt.Errorf("cms query: decode result: %w", err)
	}
	return nil
}

// FetchPost implements Store.
func (s *SanityStore) FetchPost(ctx context.Context, slug string) (blog.Post, error) {
	const groq = `*[_type == "post" && slug.current == $slug][0]{
		_id,
		title,
		"slug": slug.current,
		publishedAt,
		"imageUrl": mainImage.asset->url,
		"excerpt": pt::text(body[0...3]),
		"authorName": author->name
	}`
	var doc struct {
		ID          string    `json:"_id"`
		Title       string    `json:"title"`
		Slug        string    `json:"slug"`
		PublishedAt time.Time `json:"publishedAt"`
		ImageURL    string    `json:"imageUrl"`
		Excerpt     string    `json:"excerpt"`
		AuthorName  string    `json:"authorName"`
	}
	if err := s.query(ctx, groq, map[string]any{"slug": slug}, &doc); err != nil {
		return blog.Post{}, err
	}
	if doc.ID == "" {
		return blog.Post{}, ErrNotFound
	}
	return blog.Post{
		ID:          doc.ID,
		Title:       doc.Title,
		Slug:        doc.Slug,
		Excerpt:     doc.Excerpt,
		ImageURL:    doc.ImageURL,
		AuthorName:  doc.AuthorName,
		PublishedAt: doc.PublishedAt,
	}, nil
}

// PostTitles implements Store.
func (s *SanityStore) PostTitles(ctx context.Context) ([]string, error) {
	var docs []struct {
		Title string `json:"title"`
	}
	err := s.query(ctx, `*[_type == "post"]{title}`, nil, &docs)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.Title != "" {
			titles = append(titles, d.Title)
		}
	}
	return titles, nil
}

// SlugExists implements Store.
func (s *SanityStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int
	err := s.query(ctx, `count(*[_type == "post" && slug.current == $slug])`,
		map[string]any{"slug": slug}, &count)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ResolveAuthor implements Store.
func (s *SanityStore) ResolveAuthor(ctx context.Context, name string) (string, error) {
	var doc struct {
		ID string `json:"_id"`
	}
	err := s.query(ctx, `*[_type == "author" && name == $name][0]{_id}`,
		map[string]any{"name": name}, &doc)
	if err != nil {
		return "", err
	}
	if doc.ID == "" {
		return "", ErrNotFound
	}
	return doc.ID, nil
}

type mutateRequest struct {
	Mutations []map[string]any `json:"mutations"`
}

type mutateResponse struct {
	Results []struct {
		ID string `json:"id"`
	} `json:"results"`
}

// CreatePost implements Store. The document is created in a single mutate
// call; a failed create leaves no partial state behind.
func (s *SanityStore) CreatePost(ctx context.Context, post NewPost) (string, error) {
	doc := map[string]any{
		"_type": "post",
		"title": post.Title,
		"slug":  map[string]any{"_type": "slug", "current": post.Slug},
		"author": map[string]any{
			"_type": "reference",
			"_ref":  post.AuthorID,
		},
		"mainImage": map[string]any{
			"_type": "image",
			"asset": map[string]any{
				"_type": "reference",
				"_ref":  post.ImageAssetID,
			},
		},
		"body":        post.Body,
		"publishedAt": post.PublishedAt.UTC().Format(time.RFC3339),
	}
	payload := mutateRequest{Mutations: []map[string]any{{"create": doc}}}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("cms create: encode body: %w", err)
	}
	endpoint := fmt.Sprintf("%s/v%s/data/mutate/%s?returnIds=true",
		s.cfg.BaseURL, s.cfg.APIVersion, s.cfg.Dataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("cms create: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	body, err := s.do(req)
	if err != nil {
		return "", fmt.Errorf("cms create: %w", err)
	}
	var decoded mutateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("cms create: decode response: %w", err)
	}
	if len(decoded.Results) == 0 || decoded.Results[0].ID == "" {
		return "", errors.New("cms create: response has no document id")
	}
	return decoded.Results[0].ID, nil
}

type assetResponse struct {
	Document struct {
		ID  string `json:"_id"`
		URL string `json:"url"`
	} `json:"document"`
}

// UploadImage implements Store.
func (s *SanityStore) UploadImage(ctx context.Context, filename, contentType string, data []byte) (Asset, error) {
	if len(data) == 0 {
		return Asset{}, errors.New("cms upload: empty image data")
	}
	endpoint := fmt.Sprintf("%s/v%s/assets/images/%s?filename=%s",
		s.cfg.BaseURL, s.cfg.APIVersion, s.cfg.Dataset, url.QueryEscape(filename))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return Asset{}, fmt.Errorf("cms upload: new request: %w", err)
	}
	if contentType == "" {
		contentType = "image/png"
	}
	req.Header.Set("Content-Type", contentType)
	s.authorize(req)

	body, err := s.do(req)
	if err != nil {
		return Asset{}, fmt.Errorf("cms upload: %w", err)
	}
	var decoded assetResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Asset{}, fmt.Errorf("cms upload: decode response: %w", err)
	}
	if decoded.Document.ID == "" {
		return Asset{}, errors.New("cms upload: response has no asset id")
	}
	return Asset{ID: decoded.Document.ID, URL: decoded.Document.URL}, nil
}

func (s *SanityStore) authorize(req *http.Request) {
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}
}

func (s *SanityStore) do(req *http.Request) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
