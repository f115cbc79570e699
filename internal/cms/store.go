// Package cms defines the interface to the headless content store and its
// HTTP implementation. By using an interface, handlers and the generation
// pipeline stay decoupled from the vendor API and can be tested with doubles.
package cms

import (
	"context"
	"errors"
	"time"

	"github.com/avablackwood/presskit/internal/blog"
)

// ErrNotFound reports a missing document (unknown slug, unknown author).
var ErrNotFound = errors.New("cms: document not found")

// Asset describes an uploaded binary addressable by a public URL.
type Asset struct {
	ID  string
	URL string
}

// NewPost carries everything needed to create a post document. The create is
// a single call; there is no partially-published state.
type NewPost struct {
	Title        string
	Slug         string
	AuthorID     string
	ImageAssetID string
	Body         []blog.Block
	PublishedAt  time.Time
}

// Store is the content store surface the rest of the service depends on.
type Store interface {
	// FetchPost resolves a slug to its published post, or ErrNotFound.
	FetchPost(ctx context.Context, slug string) (blog.Post, error)

	// PostTitles lists the titles of all published posts.
	PostTitles(ctx context.Context) ([]string, error)

	// SlugExists reports whether a post with the slug is already stored.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// ResolveAuthor returns the document ID for an author by exact name,
	// or ErrNotFound. Author resolution by name is a deliberate
	// single-author simplification; it is not multi-tenant safe.
	ResolveAuthor(ctx context.Context, name string) (string, error)

	// CreatePost persists the document and returns its store-assigned ID.
	CreatePost(ctx context.Context, post NewPost) (string, error)

	// UploadImage stores image bytes as an addressable asset.
	UploadImage(ctx context.Context, filename, contentType string, data []byte) (Asset, error)
}

// NoOpStore is an empty content store for running the service without a
// configured backend.
type NoOpStore struct{}

var _ Store = NoOpStore{}

func (NoOpStore) FetchPost(context.Context, string) (blog.Post, error) {
	return blog.Post{}, ErrNotFound
}

func (NoOpStore) PostTitles(context.Context) ([]string, error) { return nil, nil }

func (NoOpStore) SlugExists(context.Context, string) (bool, error) { return false, nil }

func (NoOpStore) ResolveAuthor(context.Context, string) (string, error) {
	return "", ErrNotFound
}

func (NoOpStore) CreatePost(context.Context, NewPost) (string, error) { return "noop", nil }

func (NoOpStore) UploadImage(context.Context, string, string, []byte) (Asset, error) {
	return Asset{ID: "noop", URL: "noop://asset"}, nil
}
