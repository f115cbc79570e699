package cms

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/avablackwood/presskit/internal/blog"
)

// MockStore is a mock implementation of the Store interface for testing.
type MockStore struct {
	mock.Mock
}

var _ Store = (*MockStore)(nil)

// FetchPost is the mock implementation of the FetchPost method.
func (m *MockStore) FetchPost(ctx context.Context, slug string) (blog.Post, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(blog.Post), args.Error(1)
}

// PostTitles is the mock implementation of the PostTitles method.
func (m *MockStore) PostTitles(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	titles, _ := args.Get(0).([]string)
	return titles, args.Error(1)
}

// SlugExists is the mock implementation of the SlugExists method.
func (m *MockStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

// ResolveAuthor is the mock implementation of the ResolveAuthor method.
func (m *MockStore) ResolveAuthor(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

// CreatePost is the mock implementation of the CreatePost method.
func (m *MockStore) CreatePost(ctx context.Context, post NewPost) (string, error) {
	args := m.Called(ctx, post)
	return args.String(0), args.Error(1)
}

// UploadImage is the mock implementation of the UploadImage method.
func (m *MockStore) UploadImage(ctx context.Context, filename, contentType string, data []byte) (Asset, error) {
	args := m.Called(ctx, filename, contentType, data)
	return args.Get(0).(Asset), args.Error(1)
}
