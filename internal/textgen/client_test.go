package textgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func candidateBody(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestCompleteReturnsCandidateText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Contains(t, r.URL.Path, "models/gemini-2.0-flash:generateContent")
		require.Equal(t, "secret", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "write a post", req.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(candidateBody("hello world")))
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: srv.URL})
	text, err := client.Complete(context.Background(), "write a post")
	require.NoError(t, err)
	require.Equal(t, "hello world", text)
}

func TestCompleteSurfacesHTTPErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: srv.URL})
	_, err := client.Complete(context.Background(), "prompt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "http 429")
}

func TestCompleteRejectsEmptyCandidates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: srv.URL})
	_, err := client.Complete(context.Background(), "prompt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no candidate text")
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{})
	_, err := client.Complete(context.Background(), "prompt")
	require.Error(t, err)
}

func TestDecodeModelJSONFencedBlock(t *testing.T) {
	t.Parallel()

	raw := "Here is your post:\n```json\n{\"title\":\"Bare Without Touch\"}\n```\nEnjoy."
	var out struct {
		Title string `json:"title"`
	}
	require.NoError(t, DecodeModelJSON(raw, &out))
	require.Equal(t, "Bare Without Touch", out.Title)
}

func TestDecodeModelJSONBareObject(t *testing.T) {
	t.Parallel()

	var out map[string]any
	require.NoError(t, DecodeModelJSON(`{"a":1}`, &out))
	require.Equal(t, float64(1), out["a"])
}

func TestDecodeModelJSONEmbeddedObject(t *testing.T) {
	t.Parallel()

	var out map[string]any
	require.NoError(t, DecodeModelJSON("noise before {\"a\":1} noise after", &out))
	require.Equal(t, float64(1), out["a"])
}

func TestDecodeModelJSONMalformed(t *testing.T) {
	t.Parallel()

	var out map[string]any
	err := DecodeModelJSON("no json here at all", &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "payload snippet")
}
