package social

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avablackwood/presskit/internal/blog"
)

func samplePost() blog.Post {
	return blog.Post{
		ID:          "post-1",
		Title:       "The Quiet Hour",
		Slug:        "the-quiet-hour",
		Excerpt:     "A   long  night in\nthe library stacks, where every whisper carries further than it should and the lamps burn low over the reading tables.",
		ImageURL:    "https://cdn.example.com/quiet-hour.png",
		AuthorName:  "Ava Blackwood",
		PublishedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewAnnouncementReplacesPlaceholder(t *testing.T) {
	t.Parallel()

	a := NewAnnouncement(samplePost(), "https://www.example.com/",
		"New post is live! Read it here: "+LinkPlaceholder)
	require.Equal(t, "https://www.example.com/blog/the-quiet-hour", a.PostURL)
	require.Equal(t, "https://www.example.com/api/social-card/the-quiet-hour", a.SocialCardURL)
	require.Contains(t, a.Update, "https://www.example.com/blog/the-quiet-hour")
	require.NotContains(t, a.Update, LinkPlaceholder)
}

func TestNewAnnouncementFallbackUpdate(t *testing.T) {
	t.Parallel()

	a := NewAnnouncement(samplePost(), "https://www.example.com", "")
	require.Contains(t, a.Update, "The Quiet Hour")
	require.Contains(t, a.Update, "Read more: https://www.example.com/blog/the-quiet-hour")
}

func TestAnnouncementExcerptCollapsedAndTruncated(t *testing.T) {
	t.Parallel()

	a := NewAnnouncement(samplePost(), "https://www.example.com", "caption")
	require.NotContains(t, a.Excerpt, "\n")
	require.NotContains(t, a.Excerpt, "  ")
	require.True(t, strings.HasSuffix(a.Excerpt, "..."))
	require.LessOrEqual(t, len(a.Excerpt), announceExcerptLen+3)
}

func TestAnnouncementExcerptCutsOnRuneBoundary(t *testing.T) {
	t.Parallel()

	post := samplePost()
	post.Excerpt = strings.Repeat("né", 100)
	a := NewAnnouncement(post, "https://www.example.com", "caption")
	require.True(t, utf8.ValidString(a.Excerpt))
	require.True(t, strings.HasSuffix(a.Excerpt, "..."))
}

func TestAnnouncementExcerptDefault(t *testing.T) {
	t.Parallel()

	post := samplePost()
	post.Excerpt = "   "
	a := NewAnnouncement(post, "https://www.example.com", "caption")
	require.Equal(t, blog.DefaultExcerpt, a.Excerpt)
}

func TestWebhookChannelPostsPayload(t *testing.T) {
	t.Parallel()

	var got ZapierPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	ch, err := NewWebhookChannel(srv.URL)
	require.NoError(t, err)

	a := NewAnnouncement(samplePost(), "https://www.example.com", "caption "+LinkPlaceholder)
	_, err = ch.Publish(context.Background(), a)
	require.NoError(t, err)

	require.Equal(t, "The Quiet Hour", got.Title)
	require.Equal(t, "https://www.example.com/blog/the-quiet-hour", got.LinkURL)
	require.Equal(t, "https://www.example.com/api/social-card/the-quiet-hour", got.SocialCardURL)
	require.Equal(t, "post-1", got.BlogPost.ID)
	require.Equal(t, "the-quiet-hour", got.BlogPost.Slug)
	require.Equal(t, "2026-08-01T12:00:00Z", got.BlogPost.PublishedAt)
	require.Equal(t, "Ava Blackwood", got.BlogPost.Author)
}

func TestWebhookChannelSurfacesHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	t.Cleanup(srv.Close)

	ch, err := NewWebhookChannel(srv.URL)
	require.NoError(t, err)

	_, err = ch.Publish(context.Background(), NewAnnouncement(samplePost(), "https://www.example.com", ""))
	require.Error(t, err)
	require.Contains(t, err.Error(), "http 410")
}

func testCreds() OAuth1Credentials {
	return OAuth1Credentials{
		ConsumerKey:       "ck",
		ConsumerSecret:    "cs",
		AccessToken:       "at",
		AccessTokenSecret: "ats",
	}
}

func TestXChannelPublishSignsRequest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		require.True(t, strings.HasPrefix(auth, "OAuth "), auth)
		require.Contains(t, auth, `oauth_consumer_key="ck"`)
		require.Contains(t, auth, `oauth_token="at"`)
		require.Contains(t, auth, `oauth_signature_method="HMAC-SHA1"`)
		require.Contains(t, auth, "oauth_signature=")

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req tweetRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.Contains(t, req.Text, "The Quiet Hour")

		_, _ = w.Write([]byte(`{"data":{"id":"1234"}}`))
	}))
	t.Cleanup(srv.Close)

	ch, err := NewXChannel(testCreds(), WithXBaseURL(srv.URL))
	require.NoError(t, err)

	detail, err := ch.Publish(context.Background(), NewAnnouncement(samplePost(), "https://www.example.com", ""))
	require.NoError(t, err)
	require.Equal(t, "posted tweet 1234", detail)
}

func TestXChannelTruncatesLongUpdates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req tweetRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.LessOrEqual(t, len([]rune(req.Text)), 280)
		require.True(t, strings.HasSuffix(req.Text, "..."))
		_, _ = w.Write([]byte(`{"data":{"id":"1"}}`))
	}))
	t.Cleanup(srv.Close)

	ch, err := NewXChannel(testCreds(), WithXBaseURL(srv.URL))
	require.NoError(t, err)

	a := NewAnnouncement(samplePost(), "https://www.example.com", strings.Repeat("long caption ", 40))
	_, err = ch.Publish(context.Background(), a)
	require.NoError(t, err)
}

func TestXChannelRequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewXChannel(OAuth1Credentials{ConsumerKey: "ck"})
	require.Error(t, err)
}

func TestPercentEncode(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Ladies%20%2B%20Gentlemen", percentEncode("Ladies + Gentlemen"))
	require.Equal(t, "An%20encoded%20string%21", percentEncode("An encoded string!"))
	require.Equal(t, "Dogs%2C%20Cats%20%26%20Mice", percentEncode("Dogs, Cats & Mice"))
	require.Equal(t, "unreserved.-_~", percentEncode("unreserved.-_~"))
}

type stubChannel struct {
	name   string
	detail string
	err    error
	calls  int
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Publish(context.Context, Announcement) (string, error) {
	s.calls++
	return s.detail, s.err
}

func TestAnnouncerFailuresAreIndependent(t *testing.T) {
	t.Parallel()

	ok := &stubChannel{name: "zapier", detail: "sent"}
	bad := &stubChannel{name: "direct", err: errors.New("rate limited")}
	ann := NewAnnouncer(zap.NewNop(), ok, bad)

	results := ann.Announce(context.Background(), NewAnnouncement(samplePost(), "https://www.example.com", ""))
	require.Len(t, results, 2)

	byChannel := map[string]Result{}
	for _, r := range results {
		byChannel[r.Channel] = r
	}
	require.True(t, byChannel["zapier"].OK)
	require.Equal(t, "sent", byChannel["zapier"].Detail)
	require.False(t, byChannel["direct"].OK)
	require.Contains(t, byChannel["direct"].Error, "rate limited")
}

func TestAnnouncerMethodFilter(t *testing.T) {
	t.Parallel()

	zapier := &stubChannel{name: "zapier", detail: "sent"}
	direct := &stubChannel{name: "direct", detail: "posted"}
	ann := NewAnnouncer(zap.NewNop(), zapier, direct)

	results := ann.Announce(context.Background(),
		NewAnnouncement(samplePost(), "https://www.example.com", ""), "zapier")
	require.Len(t, results, 1)
	require.Equal(t, "zapier", results[0].Channel)
	require.Equal(t, 1, zapier.calls)
	require.Equal(t, 0, direct.calls)
}
