package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fintrack/internal/core"
	"fintrack/internal/ports"
)

// Postgres is the pgx-backed Repository.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Repository = (*Postgres)(nil)

func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if err := runPostgresMigrations(databaseURL); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) CreateRecord(ctx context.Context, r core.Record) (core.Record, error) {
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}
	r.ID = uuid.NewString()

	_, err := p.pool.Exec(ctx,
		`INSERT INTO transactions (id, owner_id, amount_cents, category, kind, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.OwnerID, r.Amount.Cents, string(r.Category), string(r.Kind),
		r.OccurredAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return core.Record{}, fmt.Errorf("insert transaction: %w", err)
	}
	return r, nil
}

func (p *Postgres) RecordByID(ctx context.Context, id string) (core.Record, error) {
	var (
		r          core.Record
		category   string
		kind       string
		occurredAt string
	)
	err := p.pool.QueryRow(ctx,
		`SELECT id, owner_id, amount_cents, category, kind, occurred_at
		 FROM transactions WHERE id = $1`, id).
		Scan(&r.ID, &r.OwnerID, &r.Amount.Cents, &category, &kind, &occurredAt)
	if errors.Is(err, pgx.ErrNoRows) {
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

func (p *Postgres) ListByOwner(ctx context.Context, ownerID string) ([]core.Record, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, owner_id, amount_cents, category, kind, occurred_at
		 FROM transactions
		 WHERE owner_id = $1
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

func (p *Postgres) UserByEmail(ctx context.Context, email string) (ports.User, error) {
	var user ports.User
	err := p.pool.QueryRow(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = $1`, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return ports.User{}, ports.ErrUserNotFound
	}
	if err != nil {
		return ports.User{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

func (p *Postgres) CreateUser(ctx context.Context, email, passwordHash string) (ports.User, error) {
	user := ports.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		user.ID, user.Email, user.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ports.User{}, ports.ErrUserExists
		}
		return ports.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}
