// Package store provides Postgres-backed persistence for newsletter
// subscribers and contact messages.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateEmail reports a unique-constraint violation on the subscriber
// email column. Callers must treat it as a recoverable, user-visible outcome
// rather than a generic failure.
var ErrDuplicateEmail = errors.New("store: email already subscribed")

const uniqueViolationCode = "23505"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Subscriber is a newsletter signup row.
type Subscriber struct {
	Email string
	Name  string
}

// ContactMessage is a contact-form submission row.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Config controls the Postgres connection pool used for intake rows.
type Config struct {
	DSN             string
	SubscriberTable string
	ContactTable    string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// IntakeStore writes subscriber and contact rows into Postgres.
type IntakeStore struct {
	pool            dbPool
	subscriberTable string
	contactTable    string
}

// NewIntakeStore creates a Postgres-backed IntakeStore using the provided config.
func NewIntakeStore(ctx context.Context, cfg Config) (*IntakeStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewIntakeStoreWithPool(pool, cfg.SubscriberTable, cfg.ContactTable)
}

// NewIntakeStoreWithPool constructs a store from an existing pool (primarily
// for testing).
func NewIntakeStoreWithPool(pool dbPool, subscriberTable, contactTable string) (*IntakeStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if subscriberTable == "" {
		subscriberTable = "subscribers"
	}
	if contactTable == "" {
		contactTable = "contacts"
	}
	for _, table := range []string{subscriberTable, contactTable} {
		if !validTableName.MatchString(table) {
			return nil, fmt.Errorf("invalid table name %q", table)
		}
	}
	return &IntakeStore{
		pool:            pool,
		subscriberTable: subscriberTable,
		contactTable:    contactTable,
	}, nil
}

// Close releases the underlying pool resources.
func (s *IntakeStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// InsertSubscriber inserts a subscriber row and returns its ID. A unique
// violation on the email column is mapped to ErrDuplicateEmail; two
// concurrent signups with the same email race on that constraint and the
// database arbitrates.
func (s *IntakeStore) InsertSubscriber(ctx context.Context, sub Subscriber) (string, error) {
	if s == nil || s.pool == nil {
		return "", fmt.Errorf("intake store is not configured")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (email, name, subscribed_at)
VALUES ($1, $2, NOW())
RETURNING id`, s.subscriberTable)

	var id string
	err := s.pool.QueryRow(ctx, query, sub.Email, sub.Name).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return "", ErrDuplicateEmail
		}
		return "", fmt.Errorf("insert subscriber: %w", err)
	}
	return id, nil
}

// InsertContact inserts a contact-message row and returns its ID.
func (s *IntakeStore) InsertContact(ctx context.Context, msg ContactMessage) (string, error) {
	if s == nil || s.pool == nil {
		return "", fmt.Errorf("intake store is not configured")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (name, email, subject, message, received_at)
VALUES ($1, $2, $3, $4, NOW())
RETURNING id`, s.contactTable)

	var id string
	err := s.pool.QueryRow(ctx, query, msg.Name, msg.Email, msg.Subject, msg.Message).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert contact: %w", err)
	}
	return id, nil
}
