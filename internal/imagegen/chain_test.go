package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	name  string
	data  []byte
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(_ context.Context, _ string) ([]byte, error) {
	s.calls++
	return s.data, s.err
}

func TestChainFirstProviderWins(t *testing.T) {
	t.Parallel()

	primary := &stubProvider{name: "primary", data: []byte("png")}
	secondary := &stubProvider{name: "secondary", data: []byte("other")}
	chain := NewChain(zap.NewNop(), primary, secondary)

	data, err := chain.Generate(context.Background(), "a silk glove on marble")
	require.NoError(t, err)
	require.Equal(t, []byte("png"), data)
	require.Equal(t, 1, primary.calls)
	require.Zero(t, secondary.calls)
}

func TestChainFallsBackExactlyOnce(t *testing.T) {
	t.Parallel()

	primary := &stubProvider{name: "primary", err: errors.New("boom")}
	secondary := &stubProvider{name: "secondary", data: []byte("png")}
	chain := NewChain(zap.NewNop(), primary, secondary)

	data, err := chain.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, []byte("png"), data)
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 1, secondary.calls)
}

func TestChainAllFailed(t *testing.T) {
	t.Parallel()

	primary := &stubProvider{name: "primary", err: errors.New("boom")}
	secondary := &stubProvider{name: "secondary", err: errors.New("also boom")}
	chain := NewChain(zap.NewNop(), primary, secondary)

	_, err := chain.Generate(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrAllProvidersFailed)
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 1, secondary.calls)
}

func TestChainEmpty(t *testing.T) {
	t.Parallel()

	chain := NewChain(zap.NewNop())
	_, err := chain.Generate(context.Background(), "prompt")
	require.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestChainStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	primary := &stubProvider{name: "primary", err: errors.New("boom")}
	chain := NewChain(zap.NewNop(), primary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := chain.Generate(ctx, "prompt")
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, primary.calls)
}

func TestOpenAIDecodesB64Payload(t *testing.T) {
	t.Parallel()

	raw := []byte{0x89, 'P', 'N', 'G'}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/images/generations", r.URL.Path)
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"b64_json":"` + base64.StdEncoding.EncodeToString(raw) + `"}]}`))
	}))
	defer srv.Close()

	p := NewOpenAI(OpenAIConfig{APIKey: "key", BaseURL: srv.URL})
	data, err := p.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, raw, data)
}

func TestOpenAINon2xxIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "billing hard limit", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewOpenAI(OpenAIConfig{APIKey: "key", BaseURL: srv.URL})
	_, err := p.Generate(context.Background(), "prompt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "http 400")
}

func TestGeminiDecodesPrediction(t *testing.T) {
	t.Parallel()

	raw := []byte("imagebytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.URL.Path, ":predict")
		_, _ = w.Write([]byte(`{"predictions":[{"bytesBase64Encoded":"` + base64.StdEncoding.EncodeToString(raw) + `"}]}`))
	}))
	defer srv.Close()

	p := NewGemini(GeminiConfig{APIKey: "key", BaseURL: srv.URL})
	data, err := p.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	require.Equal(t, raw, data)
}

func TestGeminiEmptyPredictionsIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[]}`))
	}))
	defer srv.Close()

	p := NewGemini(GeminiConfig{APIKey: "key", BaseURL: srv.URL})
	_, err := p.Generate(context.Background(), "prompt")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no predictions")
}
