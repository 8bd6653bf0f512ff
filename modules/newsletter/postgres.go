package newsletter

import (
	"context"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, sub Subscriber) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO subscribers (id, email, subscribed_at)
		VALUES ($1, $2, $3)`,
		sub.ID, sub.Email, sub.SubscribedAt,
	)
	if err != nil {
		if pg.IsDuplicateKey(err) {
			return ErrAlreadySubscribed
		}
		return fmt.Errorf("newsletter: create subscriber: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subscribers WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("newsletter: delete subscriber: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotSubscribed
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Subscriber, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, subscribed_at FROM subscribers ORDER BY subscribed_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("newsletter: list subscribers: %w", err)
	}
	defer rows.Close()

	var subs []Subscriber
	for rows.Next() {
		var sub Subscriber
		if err := rows.Scan(&sub.ID, &sub.Email, &sub.SubscribedAt); err != nil {
			return nil, fmt.Errorf("newsletter: scan subscriber: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("newsletter: list subscribers: %w", err)
	}
	return subs, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscribers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("newsletter: count subscribers: %w", err)
	}
	return count, nil
}
