// Package intake handles newsletter signups and contact-form submissions:
// validation, sanitization, persistence, and best-effort notification email.
package intake

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/avablackwood/presskit/internal/mail"
	"github.com/avablackwood/presskit/internal/store"
)

// Status is the user-visible outcome of a submission. These four states are
// the only ones a form ever sees.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusInvalid   Status = "invalid"
	StatusDuplicate Status = "duplicate"
	StatusError     Status = "error"
)

// Result pairs a status with a message safe to show the submitter.
type Result struct {
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Store is the persistence surface intake needs.
type Store interface {
	InsertSubscriber(ctx context.Context, sub store.Subscriber) (string, error)
	InsertContact(ctx context.Context, msg store.ContactMessage) (string, error)
}

// Config carries the addresses used for notification email.
type Config struct {
	SiteName       string
	NewsletterFrom string
	ContactFrom    string
	OwnerAddress   string
}

// Service processes form submissions.
type Service struct {
	cfg    Config
	store  Store
	mailer mail.Mailer
	logger *zap.Logger
}

// NewService constructs the intake service.
func NewService(cfg Config, st Store, mailer mail.Mailer, logger *zap.Logger) (*Service, error) {
	if st == nil {
		return nil, errors.New("intake: store is required")
	}
	if mailer == nil {
		mailer = mail.NoOpMailer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, store: st, mailer: mailer, logger: logger}, nil
}

// SignupRequest is a newsletter form submission.
type SignupRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ContactRequest is a contact form submission.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	scriptBlock = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	scriptTag   = regexp.MustCompile(`(?i)</?script\b[^>]*>`)
)

// Sanitize strips script tags from free-text input before it is stored or
// embedded in outbound email.
func Sanitize(s string) string {
	s = scriptBlock.ReplaceAllString(s, "")
	s = scriptTag.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Subscribe validates and persists a signup, then sends the welcome and
// owner-notification emails concurrently. Email failures are logged but never
// downgrade the result; the signup is already durable.
func (s *Service) Subscribe(ctx context.Context, req SignupRequest) Result {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if !validEmail(email) {
		return Result{Status: StatusInvalid, Message: "A valid email address is required."}
	}
	name := Sanitize(req.Name)

	id, err := s.store.InsertSubscriber(ctx, store.Subscriber{Email: email, Name: name})
	if errors.Is(err, store.ErrDuplicateEmail) {
		return Result{Status: StatusDuplicate, Message: "You're already subscribed."}
	}
	if err != nil {
		s.logger.Error("persisting subscriber failed", zap.Error(err))
		return Result{Status: StatusError, Message: "Something went wrong. Please try again later."}
	}
	s.logger.Info("subscriber added", zap.String("id", id))

	messages := []mail.Message{
		mail.WelcomeMessage(s.cfg.NewsletterFrom, email, name, s.cfg.SiteName),
	}
	if s.cfg.OwnerAddress != "" {
		messages = append(messages,
			mail.SignupNotice(s.cfg.NewsletterFrom, s.cfg.OwnerAddress, name, email))
	}
	s.sendAll(ctx, messages)

	return Result{Status: StatusSuccess, Message: "Thanks for subscribing!"}
}

// Contact validates and persists a contact message, then forwards it to the
// site owner. Forwarding failure does not downgrade the result.
func (s *Service) Contact(ctx context.Context, req ContactRequest) Result {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	name := Sanitize(req.Name)
	message := Sanitize(req.Message)
	subject := Sanitize(req.Subject)

	if !validEmail(email) || name == "" || subject == "" || message == "" {
		return Result{Status: StatusInvalid, Message: "Name, a valid email, a subject, and a message are required."}
	}

	id, err := s.store.InsertContact(ctx, store.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: subject,
		Message: message,
	})
	if err != nil {
		s.logger.Error("persisting contact message failed", zap.Error(err))
		return Result{Status: StatusError, Message: "Something went wrong. Please try again later."}
	}
	s.logger.Info("contact message stored", zap.String("id", id))

	if s.cfg.OwnerAddress != "" {
		s.sendAll(ctx, []mail.Message{
			mail.ContactForward(s.cfg.ContactFrom, s.cfg.OwnerAddress, name, email, subject, message),
		})
	}

	return Result{Status: StatusSuccess, Message: "Your message has been sent."}
}

// sendAll dispatches messages concurrently and waits for all of them. Each
// failure is logged independently.
func (s *Service) sendAll(ctx context.Context, messages []mail.Message) {
	var wg sync.WaitGroup
	for _, msg := range messages {
		wg.Add(1)
		go func(msg mail.Message) {
			defer wg.Done()
			if _, err := s.mailer.Send(ctx, msg); err != nil {
				s.logger.Warn("notification email failed",
					zap.String("subject", msg.Subject), zap.Error(err))
			}
		}(msg)
	}
	wg.Wait()
}
