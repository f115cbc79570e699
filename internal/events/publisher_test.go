package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeEvent(t *testing.T) {
	t.Parallel()

	data, err := encodeEvent(PostPublished{
		PostID:      "post-1",
		Slug:        "the-quiet-hour",
		Title:       "The Quiet Hour",
		URL:         "https://www.example.com/blog/the-quiet-hour",
		PublishedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "the-quiet-hour", decoded["slug"])
	require.Equal(t, "post-1", decoded["post_id"])
	require.Equal(t, "2026-08-01T12:00:00Z", decoded["published_at"])
}

func TestNoOpPublisher(t *testing.T) {
	t.Parallel()

	var p NoOpPublisher
	require.NoError(t, p.PublishPostPublished(context.Background(), PostPublished{}))
	require.NoError(t, p.Close())
}
