package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*IntakeStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	s, err := NewIntakeStoreWithPool(mock, "subscribers", "contacts")
	require.NoError(t, err)
	return s, mock
}

func TestInsertSubscriberReturnsID(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectQuery("INSERT INTO subscribers").
		WithArgs("reader@example.com", "Reader").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("sub-1"))

	id, err := s.InsertSubscriber(context.Background(), Subscriber{
		Email: "reader@example.com",
		Name:  "Reader",
	})
	require.NoError(t, err)
	require.Equal(t, "sub-1", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertSubscriberMapsUniqueViolation(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectQuery("INSERT INTO subscribers").
		WithArgs("reader@example.com", "Reader").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "subscribers_email_key"})

	_, err := s.InsertSubscriber(context.Background(), Subscriber{
		Email: "reader@example.com",
		Name:  "Reader",
	})
	require.ErrorIs(t, err, ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertContactReturnsID(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectQuery("INSERT INTO contacts").
		WithArgs("Reader", "reader@example.com", "Signed copies", "Do you ship signed copies?").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("msg-1"))

	id, err := s.InsertContact(context.Background(), ContactMessage{
		Name:    "Reader",
		Email:   "reader@example.com",
		Subject: "Signed copies",
		Message: "Do you ship signed copies?",
	})
	require.NoError(t, err)
	require.Equal(t, "msg-1", id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewIntakeStoreWithPoolRejectsBadTableName(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	_, err = NewIntakeStoreWithPool(mock, "subscribers; DROP TABLE", "contacts")
	require.Error(t, err)
}
