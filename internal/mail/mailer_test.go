package mail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestMailer(t *testing.T, handler http.HandlerFunc) *ResendMailer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	m, err := NewResendMailer(Config{APIKey: "re_test", BaseURL: srv.URL})
	require.NoError(t, err)
	return m
}

func TestSendPostsMessage(t *testing.T) {
	t.Parallel()

	m := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var msg Message
		require.NoError(t, json.Unmarshal(body, &msg))
		require.Equal(t, []string{"reader@example.com"}, msg.To)
		require.Equal(t, "Hello", msg.Subject)

		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	})

	id, err := m.Send(context.Background(), Message{
		From:    "news@example.com",
		To:      []string{"reader@example.com"},
		Subject: "Hello",
		HTML:    "<p>Hi</p>",
	})
	require.NoError(t, err)
	require.Equal(t, "email-1", id)
}

func TestSendSurfacesHTTPError(t *testing.T) {
	t.Parallel()

	m := newTestMailer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"invalid from"}`, http.StatusUnprocessableEntity)
	})

	_, err := m.Send(context.Background(), Message{
		From: "bad", To: []string{"reader@example.com"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "http 422")
}

func TestSendRequiresRecipients(t *testing.T) {
	t.Parallel()

	m, err := NewResendMailer(Config{APIKey: "re_test"})
	require.NoError(t, err)

	_, err = m.Send(context.Background(), Message{From: "news@example.com"})
	require.Error(t, err)
}

func TestWelcomeMessageEscapesName(t *testing.T) {
	t.Parallel()

	msg := WelcomeMessage("news@example.com", "reader@example.com", "<b>Eve</b>", "Ava Blackwood")
	require.NotContains(t, msg.HTML, "<b>Eve</b>")
	require.Contains(t, msg.HTML, "&lt;b&gt;Eve&lt;/b&gt;")
}

func TestContactForwardSetsReplyTo(t *testing.T) {
	t.Parallel()

	msg := ContactForward("contact@example.com", "owner@example.com",
		"Reader", "reader@example.com", "Signed copies", "Do you ship them?")
	require.Equal(t, "reader@example.com", msg.ReplyTo)
	require.Equal(t, []string{"owner@example.com"}, msg.To)
	require.Contains(t, msg.Subject, "Signed copies")
}

func TestFirstNameOr(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Ada", firstNameOr("Ada Lovelace", "there"))
	require.Equal(t, "there", firstNameOr("  ", "there"))
	require.Equal(t, "Solo", firstNameOr("Solo", "there"))
}
