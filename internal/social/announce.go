// Package social announces published posts to outside channels: an automation
// webhook and the X API.
package social

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/avablackwood/presskit/internal/blog"
)

// LinkPlaceholder is the token generated captions carry in place of the final
// post URL. It is substituted once the slug is known.
const LinkPlaceholder = "[Link to blog post]"

const announceExcerptLen = 120

// Announcement is everything a channel needs to publish an update about a
// post.
type Announcement struct {
	Post          blog.Post
	PostURL       string
	SocialCardURL string
	Update        string
	Excerpt       string
}

// NewAnnouncement assembles the channel-independent announcement for a post.
// caption may contain LinkPlaceholder; it is replaced with the post URL. An
// empty caption falls back to a composed update.
func NewAnnouncement(post blog.Post, baseURL, caption string) Announcement {
	baseURL = strings.TrimRight(baseURL, "/")
	postURL := fmt.Sprintf("%s/blog/%s", baseURL, post.Slug)
	cardURL := fmt.Sprintf("%s/api/social-card/%s", baseURL, post.Slug)

	update := strings.TrimSpace(caption)
	if update == "" {
		update = composeUpdate(post, postURL)
	} else {
		update = strings.ReplaceAll(update, LinkPlaceholder, postURL)
	}

	return Announcement{
		Post:          post,
		PostURL:       postURL,
		SocialCardURL: cardURL,
		Update:        update,
		Excerpt:       announceExcerpt(post, announceExcerptLen),
	}
}

// composeUpdate builds the fallback status text when no generated caption is
// available.
func composeUpdate(post blog.Post, postURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", post.Title)
	excerpt := announceExcerpt(post, 100)
	if excerpt != "" {
		fmt.Fprintf(&b, "%s\n\n", excerpt)
	}
	fmt.Fprintf(&b, "Read more: %s", postURL)
	return b.String()
}

// announceExcerpt collapses whitespace in the post excerpt and truncates it.
func announceExcerpt(post blog.Post, maxLen int) string {
	clean := strings.Join(strings.Fields(post.Excerpt), " ")
	if clean == "" {
		return blog.DefaultExcerpt
	}
	runes := []rune(clean)
	if len(runes) > maxLen {
		return strings.TrimSpace(string(runes[:maxLen])) + "..."
	}
	return clean
}

// Result is the outcome of one channel dispatch.
type Result struct {
	Channel string `json:"channel"`
	OK      bool   `json:"ok"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Channel publishes an announcement somewhere.
type Channel interface {
	Name() string
	Publish(ctx context.Context, a Announcement) (string, error)
}

// Announcer fans an announcement out to its channels concurrently. Every
// channel is attempted regardless of the others; failures are reported per
// channel, never joined into a single error.
type Announcer struct {
	logger   *zap.Logger
	channels []Channel
}

// NewAnnouncer builds an announcer over the given channels.
func NewAnnouncer(logger *zap.Logger, channels ...Channel) *Announcer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Announcer{logger: logger, channels: channels}
}

// Announce dispatches to every channel whose name is in methods. An empty
// methods slice dispatches to all channels.
func (a *Announcer) Announce(ctx context.Context, ann Announcement, methods ...string) []Result {
	selected := a.channels
	if len(methods) > 0 {
		allowed := make(map[string]bool, len(methods))
		for _, m := range methods {
			allowed[m] = true
		}
		selected = nil
		for _, ch := range a.channels {
			if allowed[ch.Name()] {
				selected = append(selected, ch)
			}
		}
	}

	results := make([]Result, len(selected))
	var wg sync.WaitGroup
	for i, ch := range selected {
		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()
			detail, err := ch.Publish(ctx, ann)
			if err != nil {
				a.logger.Warn("announce channel failed",
					zap.String("channel", ch.Name()),
					zap.String("slug", ann.Post.Slug),
					zap.Error(err))
				results[i] = Result{Channel: ch.Name(), Error: err.Error()}
				return
			}
			results[i] = Result{Channel: ch.Name(), OK: true, Detail: detail}
		}(i, ch)
	}
	wg.Wait()
	return results
}
