package preview

import (
	"context"
	"time"

	"github.com/avablackwood/presskit/internal/blog"
	"github.com/avablackwood/presskit/internal/cms"
)

// PostSource resolves a slug to its post metadata. cms.ErrNotFound marks an
// unknown slug.
type PostSource interface {
	Lookup(ctx context.Context, slug string) (blog.Post, error)
}

// StoreSource reads posts from the content store.
type StoreSource struct {
	store cms.Store
}

var _ PostSource = (*StoreSource)(nil)

// NewStoreSource wraps a content store as a PostSource.
func NewStoreSource(store cms.Store) *StoreSource {
	return &StoreSource{store: store}
}

// Lookup implements PostSource.
func (s *StoreSource) Lookup(ctx context.Context, slug string) (blog.Post, error) {
	return s.store.FetchPost(ctx, slug)
}

// StaticSource serves a fixed in-memory set of posts. Used as a data source
// when no content store is configured.
type StaticSource struct {
	posts map[string]blog.Post
}

var _ PostSource = (*StaticSource)(nil)

// NewStaticSource builds a source from a slug-keyed post map.
func NewStaticSource(posts map[string]blog.Post) *StaticSource {
	copied := make(map[string]blog.Post, len(posts))
	for slug, post := range posts {
		copied[slug] = post
	}
	return &StaticSource{posts: copied}
}

// Lookup implements PostSource.
func (s *StaticSource) Lookup(_ context.Context, slug string) (blog.Post, error) {
	post, ok := s.posts[slug]
	if !ok {
		return blog.Post{}, cms.ErrNotFound
	}
	return post, nil
}

// StaticPosts is the built-in post set served when no content store is
// configured.
func StaticPosts() map[string]blog.Post {
	const author = "Ava Blackwood"
	return map[string]blog.Post{
		"ai-generated-content-future": {
			Title:       "The Future of AI-Generated Content",
			Slug:        "ai-generated-content-future",
			Excerpt:     "As artificial intelligence continues to evolve, the landscape of content creation is undergoing a dramatic transformation...",
			ImageURL:    "/images/ai-content-future.jpg",
			AuthorName:  author,
			PublishedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		"automation-social-media-workflow": {
			Title:       "Automating Your Social Media Workflow",
			Slug:        "automation-social-media-workflow",
			Excerpt:     "Managing social media presence while creating quality content can be overwhelming. Here's how to streamline it all...",
			ImageURL:    "/images/automation-workflow.jpg",
			AuthorName:  author,
			PublishedAt: time.Date(2024, 1, 22, 0, 0, 0, 0, time.UTC),
		},
		"building-personal-brand-online": {
			Title:       "Building Your Personal Brand Online",
			Slug:        "building-personal-brand-online",
			Excerpt:     "Your personal brand is your most valuable asset in today's digital world. Here's how to build it effectively...",
			ImageURL:    "/images/personal-brand.jpg",
			AuthorName:  author,
			PublishedAt: time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC),
		},
		"seo-optimization-2024": {
			Title:       "SEO Optimization Strategies for 2024",
			Slug:        "seo-optimization-2024",
			Excerpt:     "Search engine algorithms are constantly evolving. Here are the strategies that will keep you visible...",
			ImageURL:    "/images/seo-2024.jpg",
			AuthorName:  author,
			PublishedAt: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
		},
		"content-marketing-roi": {
			Title:       "Measuring Content Marketing ROI",
			Slug:        "content-marketing-roi",
			Excerpt:     "Content marketing success isn't just about views and likes. Here's how to measure what really matters...",
			ImageURL:    "/images/content-roi.jpg",
			AuthorName:  author,
			PublishedAt: time.Date(2024, 2, 12, 0, 0, 0, 0, time.UTC),
		},
	}
}
