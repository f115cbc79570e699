package preview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avablackwood/presskit/internal/blog"
	"github.com/avablackwood/presskit/internal/cms"
)

func TestIsSocialCrawler(t *testing.T) {
	t.Parallel()

	crawlers := []string{
		"facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)",
		"Twitterbot/1.0",
		"TWITTERBOT/1.0",
		"Mozilla/5.0 (compatible; LinkedInBot/1.0)",
		"WhatsApp/2.23.20",
		"TelegramBot (like TwitterBot)",
		"Mozilla/5.0 (compatible; DiscordBot/2.0)",
		"Slackbot-LinkExpanding 1.0",
		"SkypeUriPreview Preview/0.5",
		"Mozilla/5.0 (compatible; RedditBot/1.0)",
		"Pinterestbot/1.0",
		"Mozilla/5.0 (compatible; Googlebot/2.1)",
		"Mozilla/5.0 (compatible; bingbot/2.0)",
		"Mozilla/5.0 (compatible; YandexBot/3.0)",
		"DuckDuckBot/1.1",
	}
	for _, ua := range crawlers {
		require.True(t, IsSocialCrawler(ua), ua)
	}

	humans := []string{
		"",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15",
		"curl/8.4.0",
	}
	for _, ua := range humans {
		require.False(t, IsSocialCrawler(ua), ua)
	}
}

func testPost() blog.Post {
	return blog.Post{
		ID:          "post-1",
		Title:       `The "Quiet" Hour`,
		Slug:        "the-quiet-hour",
		Excerpt:     "A long night in the library stacks.",
		ImageURL:    "https://cdn.example.com/quiet-hour.png",
		AuthorName:  "Ava Blackwood",
		PublishedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(SiteConfig{
		BaseURL:       "https://www.example.com/",
		SiteName:      "Ava Blackwood",
		AuthorName:    "Ava Blackwood",
		TwitterHandle: "@avablackwood",
	})
	require.NoError(t, err)
	return r
}

func TestRenderIncludesMetadataAndRedirect(t *testing.T) {
	t.Parallel()

	html, err := newRenderer(t).Render(testPost())
	require.NoError(t, err)
	doc := string(html)

	require.Contains(t, doc, `property="og:title"`)
	require.Contains(t, doc, `property="og:image" content="https://cdn.example.com/quiet-hour.png"`)
	require.Contains(t, doc, `property="og:url" content="https://www.example.com/blog/the-quiet-hour"`)
	require.Contains(t, doc, `name="twitter:card" content="summary_large_image"`)
	require.Contains(t, doc, `name="twitter:site" content="@avablackwood"`)
	require.Contains(t, doc, `application/ld+json`)
	require.Contains(t, doc, `article:published_time" content="2026-08-01T12:00:00Z"`)

	// Defense in depth: script redirect plus meta refresh fallback.
	require.Contains(t, doc, "window.location.replace")
	require.Contains(t, doc, `http-equiv="refresh"`)
	require.Contains(t, doc, "<noscript>")

	// Title quotes must not break out of attribute values.
	require.NotContains(t, doc, `content="The "Quiet" Hour"`)
}

func TestRenderDefaultsMissingFields(t *testing.T) {
	t.Parallel()

	html, err := newRenderer(t).Render(blog.Post{
		Title: "Untitled Fields",
		Slug:  "untitled-fields",
	})
	require.NoError(t, err)
	doc := string(html)
	require.Contains(t, doc, blog.DefaultExcerpt)
	require.Contains(t, doc, "Ava Blackwood")
}

func TestRenderPrefixesRelativeImage(t *testing.T) {
	t.Parallel()

	post := testPost()
	post.ImageURL = "/images/card.png"
	html, err := newRenderer(t).Render(post)
	require.NoError(t, err)
	require.Contains(t, string(html), `content="https://www.example.com/images/card.png"`)
}

func TestStaticSourceLookup(t *testing.T) {
	t.Parallel()

	src := NewStaticSource(map[string]blog.Post{
		"known": {Title: "Known", Slug: "known"},
	})

	post, err := src.Lookup(context.Background(), "known")
	require.NoError(t, err)
	require.Equal(t, "Known", post.Title)

	_, err = src.Lookup(context.Background(), "unknown")
	require.ErrorIs(t, err, cms.ErrNotFound)
}

func TestStaticPostsServeKnownSlugs(t *testing.T) {
	t.Parallel()

	src := NewStaticSource(StaticPosts())

	post, err := src.Lookup(context.Background(), "ai-generated-content-future")
	require.NoError(t, err)
	require.Equal(t, "The Future of AI-Generated Content", post.Title)
	require.Equal(t, "Ava Blackwood", post.AuthorName)

	for slug, want := range StaticPosts() {
		got, err := src.Lookup(context.Background(), slug)
		require.NoError(t, err)
		require.Equal(t, want.Slug, got.Slug)
		require.NotEmpty(t, got.Excerpt)
	}
}
