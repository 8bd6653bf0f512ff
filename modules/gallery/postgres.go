package gallery

import (
	"context"
	"fmt"

	"github.com/google/uuid"
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

func (r *PostgresRepository) Create(ctx context.Context, p Picture) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO gallery_pictures (id, title, caption, path, mime_type, size, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Title, p.Caption, p.Path, p.MIMEType, p.Size, p.UploadedBy, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("gallery: create picture: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (Picture, error) {
	var p Picture
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, caption, path, mime_type, size, uploaded_by, created_at
		FROM gallery_pictures WHERE id = $1`, id).Scan(
		&p.ID, &p.Title, &p.Caption, &p.Path, &p.MIMEType, &p.Size, &p.UploadedBy, &p.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return Picture{}, ErrPictureNotFound
		}
		return Picture{}, fmt.Errorf("gallery: get picture: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Picture, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, caption, path, mime_type, size, uploaded_by, created_at
		FROM gallery_pictures ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("gallery: list pictures: %w", err)
	}
	defer rows.Close()

	var pics []Picture
	for rows.Next() {
		var p Picture
		if err := rows.Scan(&p.ID, &p.Title, &p.Caption, &p.Path, &p.MIMEType, &p.Size, &p.UploadedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("gallery: scan picture: %w", err)
		}
		pics = append(pics, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("gallery: list pictures: %w", err)
	}
	return pics, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM gallery_pictures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("gallery: delete picture: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPictureNotFound
	}
	return nil
}
