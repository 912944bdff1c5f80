package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

// SQLite is the file-backed Repository.
type SQLite struct {
	db *sql.DB
}

var _ Repository = (*SQLite)(nil)

func NewSQLite(dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runSQLiteMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLite) CreateRecord(ctx context.Context, r core.Record) (core.Record, error) {
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}
	r.ID = uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, owner_id, amount_cents, category, kind, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.OwnerID, r.Amount.Cents, string(r.Category), string(r.Kind),
		r.OccurredAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return core.Record{}, fmt.Errorf("insert transaction: %w", err)
	}
	return r, nil
}

func (s *SQLite) RecordByID(ctx context.Context, id string) (core.Record, error) {
	var (
		r          core.Record
		category   string
		kind       string
		occurredAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, amount_cents, category, kind, occurred_at
		 FROM transactions WHERE id = ?`, id).
		Scan(&r.ID, &r.OwnerID, &r.Amount.Cents, &category, &kind, &occurredAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, ErrRecordNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("select transaction: %w", err)
	}
	r.Category = core.Category(category)
	r.Kind = core.Kind(kind)
	if r.OccurredAt, err = time.Parse(time.RFC3339Nano, occurredAt); err != nil {
		return core.Record{}, fmt.Errorf("parse occurred_at %q: %w", occurredAt, err)
	}
	return r, nil
}

func (s *SQLite) ListByOwner(ctx context.Context, ownerID string) ([]core.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, amount_cents, category, kind, occurred_at
		 FROM transactions
		 WHERE owner_id = ?
		 ORDER BY occurred_at DESC, id`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var (
			r          core.Record
			category   string
			kind       string
			occurredAt string
		)
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.Amount.Cents, &category, &kind, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		r.Category = core.Category(category)
		r.Kind = core.Kind(kind)
		if r.OccurredAt, err = time.Parse(time.RFC3339Nano, occurredAt); err != nil {
			return nil, fmt.Errorf("parse occurred_at %q: %w", occurredAt, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (s *SQLite) UserByEmail(ctx context.Context, email string) (ports.User, error) {
	var user ports.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.User{}, ports.ErrUserNotFound
	}
	if err != nil {
		return ports.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

func (s *SQLite) CreateUser(ctx context.Context, email, passwordHash string) (ports.User, error) {
	user := ports.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ports.User{}, ports.ErrUserExists
		}
		return ports.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}
