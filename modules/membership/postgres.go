package membership

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zafarimam8588/ayo-portal/pkg/pg"
)

// PostgresRepository is the pgx-backed Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const profileColumns = `
	user_id, phone, date_of_birth, gender,
	street, city, state, postal_code,
	reason_to_join, status, membership_id, rejection_reason,
	approved_by, approved_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, p Profile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO member_profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.UserID, p.Phone, p.DateOfBirth, p.Gender,
		p.Address.Street, p.Address.City, p.Address.State, p.Address.PostalCode,
		p.ReasonToJoin, string(p.Status), nullIfEmpty(p.MembershipID), p.RejectionReason,
		nullIfNilUUID(p.ApprovedBy), nullIfZeroTime(p.ApprovedAt), p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("membership: create profile: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID uuid.UUID) (Profile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+profileColumns+`
		FROM member_profiles WHERE user_id = $1`, userID)
	p, err := scanProfile(row)
	if err != nil {
		if pg.IsNotFound(err) {
			return Profile{}, ErrProfileNotFound
		}
		return Profile{}, fmt.Errorf("membership: get profile: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM member_profiles`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY updated_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, filter.Limit, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("membership: list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("membership: scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("membership: list profiles: %w", err)
	}
	return profiles, nil
}

func (r *PostgresRepository) UpdateFields(ctx context.Context, p Profile) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE member_profiles SET
			phone = $2, date_of_birth = $3, gender = $4,
			street = $5, city = $6, state = $7, postal_code = $8,
			reason_to_join = $9, updated_at = $10
		WHERE user_id = $1`,
		p.UserID, p.Phone, p.DateOfBirth, p.Gender,
		p.Address.Street, p.Address.City, p.Address.State, p.Address.PostalCode,
		p.ReasonToJoin, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("membership: update profile fields: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, p Profile) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE member_profiles SET
			status = $2, membership_id = $3, rejection_reason = $4,
			approved_by = $5, approved_at = $6, updated_at = $7
		WHERE user_id = $1`,
		p.UserID, string(p.Status), nullIfEmpty(p.MembershipID), p.RejectionReason,
		nullIfNilUUID(p.ApprovedBy), nullIfZeroTime(p.ApprovedAt), p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("membership: update profile status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// NextMembershipSeq reserves the next number in the per-year membership id
// sequence. The upsert keeps allocation atomic under concurrent approvals.
func (r *PostgresRepository) NextMembershipSeq(ctx context.Context, year int) (int, error) {
	var seq int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO membership_sequences (year, last_seq)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_seq = membership_sequences.last_seq + 1
		RETURNING last_seq`, year).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("membership: next membership seq: %w", err)
	}
	return seq, nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var (
		p            Profile
		status       string
		membershipID *string
		approvedBy   *uuid.UUID
		approvedAt   *time.Time
	)
	err := row.Scan(
		&p.UserID, &p.Phone, &p.DateOfBirth, &p.Gender,
		&p.Address.Street, &p.Address.City, &p.Address.State, &p.Address.PostalCode,
		&p.ReasonToJoin, &status, &membershipID, &p.RejectionReason,
		&approvedBy, &approvedAt, &p.UpdatedAt,
	)
	if err != nil {
		return Profile{}, err
	}
	p.Status = Status(status)
	if membershipID != nil {
		p.MembershipID = *membershipID
	}
	if approvedBy != nil {
		p.ApprovedBy = *approvedBy
	}
	if approvedAt != nil {
		p.ApprovedAt = *approvedAt
	}
	return p, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullIfNilUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func nullIfZeroTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
