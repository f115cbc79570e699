package mail

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockMailer is a mock implementation of the Mailer interface for testing.
type MockMailer struct {
	mock.Mock
}

var _ Mailer = (*MockMailer)(nil)

// Send is the mock implementation of the Send method.
func (m *MockMailer) Send(ctx context.Context, msg Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}
