package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/contactfast/relay/internal/analytics"
	"github.com/contactfast/relay/internal/domain"
	"github.com/contactfast/relay/internal/verification"
)

// OriginRepo implements verification.Repository and analytics.Repository
// against PostgreSQL.
type OriginRepo struct{ db *sql.DB }

// NewOriginRepo creates a Postgres-backed origin repository.
func NewOriginRepo(db *sql.DB) *OriginRepo { return &OriginRepo{db: db} }

const originColumns = `identity_key, recipient_email, website_name, website_url,
	verified, activation_token, created_at, last_submission_at, submission_count`

func scanOrigin(row interface{ Scan(...interface{}) error }) (*domain.Origin, error) {
	var o domain.Origin
	err := row.Scan(
		&o.IdentityKey, &o.RecipientEmail, &o.WebsiteName, &o.WebsiteURL,
		&o.Verified, &o.ActivationToken, &o.CreatedAt, &o.LastSubmissionAt, &o.SubmissionCount,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OriginRepo) GetByKey(ctx context.Context, key string) (*domain.Origin, error) {
	o, err := scanOrigin(r.db.QueryRowContext(ctx,
		`SELECT `+originColumns+` FROM origins WHERE identity_key = $1`, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, verification.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get origin by key: %w", err)
	}
	return o, nil
}

func (r *OriginRepo) GetByToken(ctx context.Context, token string) (*domain.Origin, error) {
	o, err := scanOrigin(r.db.QueryRowContext(ctx,
		`SELECT `+originColumns+` FROM origins WHERE activation_token = $1`, token))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, verification.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get origin by token: %w", err)
	}
	return o, nil
}

// CreateIfAbsent inserts the record unless the identity key is taken. The
// unique constraint arbitrates concurrent first contacts: ON CONFLICT DO
// NOTHING means the loser inserts zero rows and re-reads the winner's
// record.
func (r *OriginRepo) CreateIfAbsent(ctx context.Context, o *domain.Origin) (*domain.Origin, bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO origins (identity_key, recipient_email, website_name, website_url,
			verified, activation_token, created_at, submission_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0)
		ON CONFLICT (identity_key) DO NOTHING
	`, o.IdentityKey, o.RecipientEmail, o.WebsiteName, o.WebsiteURL,
		o.Verified, o.ActivationToken, o.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("create origin: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("create origin: %w", err)
	}

	rec, err := r.GetByKey(ctx, o.IdentityKey)
	if err != nil {
		return nil, false, err
	}
	return rec, n == 1, nil
}

func (r *OriginRepo) Update(ctx context.Context, o *domain.Origin) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE origins
		SET recipient_email = $2, website_name = $3, website_url = $4,
			verified = $5, activation_token = $6
		WHERE identity_key = $1
	`, o.IdentityKey, o.RecipientEmail, o.WebsiteName, o.WebsiteURL,
		o.Verified, o.ActivationToken)
	if err != nil {
		return fmt.Errorf("update origin: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return verification.ErrNotFound
	}
	return nil
}

// RecordSubmission moves the counters atomically in SQL; last_submission_at
// never goes backwards even if callers race.
func (r *OriginRepo) RecordSubmission(ctx context.Context, key string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE origins
		SET submission_count = submission_count + 1,
			last_submission_at = GREATEST(COALESCE(last_submission_at, $2), $2)
		WHERE identity_key = $1
	`, key, at)
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return verification.ErrNotFound
	}
	return nil
}

func (r *OriginRepo) TotalOrigins(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM origins`).Scan(&n)
	return n, err
}

func (r *OriginRepo) TotalSubmissions(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(submission_count), 0) FROM origins`).Scan(&n)
	return n, err
}

func (r *OriginRepo) VerifiedCount(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM origins WHERE verified = true`).Scan(&n)
	return n, err
}

func (r *OriginRepo) ActiveSince(ctx context.Context, t time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM origins WHERE last_submission_at >= $1`, t).Scan(&n)
	return n, err
}

func (r *OriginRepo) List(ctx context.Context, f analytics.ListFilter) ([]domain.Origin, error) {
	query := `SELECT ` + originColumns + ` FROM origins WHERE 1=1`
	args := []interface{}{}

	if f.VerifiedOnly {
		query += ` AND verified = true`
	}
	if !f.ActiveSince.IsZero() {
		args = append(args, f.ActiveSince)
		query += fmt.Sprintf(` AND last_submission_at >= $%d`, len(args))
	}

	query += ` ORDER BY submission_count DESC`

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))
	args = append(args, f.Offset)
	query += fmt.Sprintf(` OFFSET $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list origins: %w", err)
	}
	defer rows.Close()

	var out []domain.Origin
	for rows.Next() {
		o, err := scanOrigin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan origin: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
