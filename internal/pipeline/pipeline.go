// Package pipeline orchestrates post generation: draft, illustrate, publish,
// announce. One run per triggering event; a run either publishes a post or
// aborts, never leaves a partial one.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/avablackwood/presskit/internal/assets"
	"github.com/avablackwood/presskit/internal/blog"
	"github.com/avablackwood/presskit/internal/cms"
	"github.com/avablackwood/presskit/internal/events"
	"github.com/avablackwood/presskit/internal/imagegen"
	"github.com/avablackwood/presskit/internal/social"
	"github.com/avablackwood/presskit/internal/textgen"
)

// Titles sharing more than this fraction of words are treated as duplicates.
const titleSimilarityThreshold = 0.7

// Config carries the site-level parameters of a run.
type Config struct {
	BaseURL    string
	AuthorName string
	// AnnounceMethods restricts announce channels by name; empty means all.
	AnnounceMethods []string
}

// Pipeline wires the generation dependencies together.
type Pipeline struct {
	cfg       Config
	store     cms.Store
	text      textgen.Completer
	images    imagegen.Provider
	announcer *social.Announcer
	cards     assets.Uploader
	events    events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// New constructs a pipeline. All dependencies are required except cards and
// events, which default to no-ops.
func New(cfg Config, store cms.Store, text textgen.Completer, images imagegen.Provider,
	announcer *social.Announcer, cards assets.Uploader, ev events.Publisher, logger *zap.Logger) (*Pipeline, error) {
	if store == nil || text == nil || images == nil || announcer == nil {
		return nil, errors.New("pipeline: store, text, images and announcer are required")
	}
	if cfg.BaseURL == "" || cfg.AuthorName == "" {
		return nil, errors.New("pipeline: base url and author name are required")
	}
	if cards == nil {
		cards = assets.NoOpUploader{}
	}
	if ev == nil {
		ev = events.NoOpPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:       cfg,
		store:     store,
		text:      text,
		images:    images,
		announcer: announcer,
		cards:     cards,
		events:    ev,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Result reports what a run produced.
type Result struct {
	Post     blog.Post       `json:"post"`
	PostURL  string          `json:"post_url"`
	CardURL  string          `json:"card_url,omitempty"`
	Announce []social.Result `json:"announce,omitempty"`
}

// Run executes the full Draft, Illustrate, Publish, Announce sequence.
// Announce failures never fail the run; the post is already durable by then.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	titles, err := p.store.PostTitles(ctx)
	if err != nil {
		// Uniqueness checking is an enhancement, not a precondition.
		p.logger.Warn("fetching existing titles failed, proceeding without uniqueness check", zap.Error(err))
		titles = nil
	}

	draft, err := p.draft(ctx, titles)
	if err != nil {
		return Result{}, err
	}
	p.logger.Info("draft generated", zap.String("title", draft.Title))

	scene := deriveScene(draft)
	image, err := p.images.Generate(ctx, imagePrompt(scene))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrImageGeneration, err)
	}

	post, err := p.publish(ctx, draft, image)
	if err != nil {
		return Result{}, err
	}
	p.logger.Info("post published",
		zap.String("id", post.ID), zap.String("slug", post.Slug))

	result := Result{
		Post:    post,
		PostURL: fmt.Sprintf("%s/blog/%s", strings.TrimRight(p.cfg.BaseURL, "/"), post.Slug),
	}
	result.CardURL = p.uploadCard(ctx, post.Slug, image)

	caption := p.caption(ctx, draft)
	ann := social.NewAnnouncement(post, p.cfg.BaseURL, caption)
	result.Announce = p.announcer.Announce(ctx, ann, p.cfg.AnnounceMethods...)

	if err := p.events.PublishPostPublished(ctx, events.PostPublished{
		PostID:      post.ID,
		Slug:        post.Slug,
		Title:       post.Title,
		URL:         result.PostURL,
		PublishedAt: post.PublishedAt,
	}); err != nil {
		p.logger.Warn("publishing lifecycle event failed", zap.Error(err))
	}

	return result, nil
}

// draft generates and decodes the structured draft, with at most one
// regeneration when the title lands too close to an existing one.
func (p *Pipeline) draft(ctx context.Context, titles []string) (blog.Draft, error) {
	prompt := draftPrompt(p.cfg.AuthorName, titles)
	draft, err := p.complete(ctx, prompt)
	if err != nil {
		return blog.Draft{}, err
	}

	if !titleTooSimilar(draft.Title, titles) {
		return draft, nil
	}

	p.logger.Warn("generated title too similar to an existing post, regenerating once",
		zap.String("title", draft.Title))
	retry, err := p.complete(ctx, retryDraftPrompt(prompt, draft.Title))
	if err != nil {
		p.logger.Warn("title regeneration failed, keeping first draft", zap.Error(err))
		return draft, nil
	}
	if titleTooSimilar(retry.Title, titles) {
		p.logger.Warn("regenerated title still similar, proceeding with first draft",
			zap.String("title", retry.Title))
		return draft, nil
	}
	return retry, nil
}

func (p *Pipeline) complete(ctx context.Context, prompt string) (blog.Draft, error) {
	raw, err := p.text.Complete(ctx, prompt)
	if err != nil {
		return blog.Draft{}, fmt.Errorf("%w: %v", ErrDraftGeneration, err)
	}
	var draft blog.Draft
	if err := textgen.DecodeModelJSON(raw, &draft); err != nil {
		return blog.Draft{}, fmt.Errorf("%w: %v", ErrDraftMalformed, err)
	}
	if strings.TrimSpace(draft.Title) == "" || len(draft.Body) == 0 {
		return blog.Draft{}, fmt.Errorf("%w: missing title or body", ErrDraftMalformed)
	}
	return draft, nil
}

func titleTooSimilar(title string, existing []string) bool {
	normalized := blog.NormalizeTitle(title)
	for _, other := range existing {
		if blog.NormalizeTitle(other) == normalized {
			return true
		}
		if blog.TitleSimilarity(title, other) > titleSimilarityThreshold {
			return true
		}
	}
	return false
}

// publish resolves the author, converts the body, uploads the image, and
// creates the post document.
func (p *Pipeline) publish(ctx context.Context, draft blog.Draft, image []byte) (blog.Post, error) {
	authorID, err := p.store.ResolveAuthor(ctx, p.cfg.AuthorName)
	if errors.Is(err, cms.ErrNotFound) {
		return blog.Post{}, fmt.Errorf("%w: %q", ErrAuthorNotFound, p.cfg.AuthorName)
	}
	if err != nil {
		return blog.Post{}, fmt.Errorf("%w: resolve author: %v", ErrStoreWrite, err)
	}

	body, err := blog.BlocksFromDraft(draft.Body)
	if err != nil {
		return blog.Post{}, fmt.Errorf("%w: %v", ErrDraftMalformed, err)
	}

	slug, err := p.uniqueSlug(ctx, draft.Title)
	if err != nil {
		return blog.Post{}, err
	}

	asset, err := p.store.UploadImage(ctx, slug+".png", "image/png", image)
	if err != nil {
		return blog.Post{}, fmt.Errorf("%w: upload image: %v", ErrStoreWrite, err)
	}

	publishedAt := p.now().UTC()
	postID, err := p.store.CreatePost(ctx, cms.NewPost{
		Title:        draft.Title,
		Slug:         slug,
		AuthorID:     authorID,
		ImageAssetID: asset.ID,
		Body:         body,
		PublishedAt:  publishedAt,
	})
	if err != nil {
		return blog.Post{}, fmt.Errorf("%w: create post: %v", ErrStoreWrite, err)
	}

	return blog.Post{
		ID:          postID,
		Title:       draft.Title,
		Slug:        slug,
		Excerpt:     blog.Excerpt(blog.PlainText(draft.Body), 150),
		ImageURL:    asset.URL,
		AuthorName:  p.cfg.AuthorName,
		PublishedAt: publishedAt,
	}, nil
}

// uniqueSlug derives the slug and, when it is already taken, appends a short
// random disambiguator instead of overwriting the existing post.
func (p *Pipeline) uniqueSlug(ctx context.Context, title string) (string, error) {
	slug := blog.Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("%w: title produces empty slug", ErrDraftMalformed)
	}
	exists, err := p.store.SlugExists(ctx, slug)
	if err != nil {
		return "", fmt.Errorf("%w: check slug: %v", ErrStoreWrite, err)
	}
	if !exists {
		return slug, nil
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	disambiguated := slug + "-" + suffix
	p.logger.Warn("slug already taken, appending disambiguator",
		zap.String("slug", slug), zap.String("disambiguated", disambiguated))
	return disambiguated, nil
}

// uploadCard renders and stores the 1200x630 preview card. Best effort; a
// missing card only degrades link previews.
func (p *Pipeline) uploadCard(ctx context.Context, slug string, image []byte) string {
	card, err := assets.RenderCard(image)
	if err != nil {
		p.logger.Warn("rendering social card failed", zap.Error(err))
		return ""
	}
	url, err := p.cards.Upload(ctx, slug+"-card.png", "image/png", card)
	if err != nil {
		p.logger.Warn("uploading social card failed", zap.Error(err))
		return ""
	}
	return url
}

type captionResponse struct {
	SocialPostText string `json:"social_post_text"`
}

// caption asks the text provider for a short platform-budgeted update. A
// failure here falls back to a locally composed update downstream.
func (p *Pipeline) caption(ctx context.Context, draft blog.Draft) string {
	raw, err := p.text.Complete(ctx, captionPrompt(p.cfg.AuthorName, draft.Title, blog.PlainText(draft.Body)))
	if err != nil {
		p.logger.Warn("caption generation failed, using composed update", zap.Error(err))
		return ""
	}
	var decoded captionResponse
	if err := textgen.DecodeModelJSON(raw, &decoded); err != nil {
		p.logger.Warn("caption response malformed, using composed update", zap.Error(err))
		return ""
	}
	return decoded.SocialPostText
}

// AnnouncePost re-announces an already published post, as triggered by a
// publish webhook or a manual request. methods restricts the channels; empty
// uses the configured default.
func (p *Pipeline) AnnouncePost(ctx context.Context, slug string, methods ...string) (Result, error) {
	post, err := p.store.FetchPost(ctx, slug)
	if err != nil {
		return Result{}, fmt.Errorf("fetch post %q: %w", slug, err)
	}
	if len(methods) == 0 {
		methods = p.cfg.AnnounceMethods
	}
	ann := social.NewAnnouncement(post, p.cfg.BaseURL, "")
	return Result{
		Post:     post,
		PostURL:  ann.PostURL,
		CardURL:  ann.SocialCardURL,
		Announce: p.announcer.Announce(ctx, ann, methods...),
	}, nil
}
