package contact

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

func (r *PostgresRepository) Create(ctx context.Context, m Message) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO contact_messages (id, name, email, phone, subject, body, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Body, string(m.Status), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("contact: create message: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (Message, error) {
	var (
		m      Message
		status string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, subject, body, status, created_at
		FROM contact_messages WHERE id = $1`, id).Scan(
		&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Body, &status, &m.CreatedAt,
	)
	if err != nil {
		if pg.IsNotFound(err) {
			return Message{}, ErrMessageNotFound
		}
		return Message{}, fmt.Errorf("contact: get message: %w", err)
	}
	m.Status = MessageStatus(status)

	rows, err := r.pool.Query(ctx, `
		SELECT id, message_id, admin_id, body, created_at
		FROM contact_replies WHERE message_id = $1 ORDER BY created_at ASC`, id)
	if err != nil {
		return Message{}, fmt.Errorf("contact: get replies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var reply Reply
		if err := rows.Scan(&reply.ID, &reply.MessageID, &reply.AdminID, &reply.Body, &reply.CreatedAt); err != nil {
			return Message{}, fmt.Errorf("contact: scan reply: %w", err)
		}
		m.Replies = append(m.Replies, reply)
	}
	if err := rows.Err(); err != nil {
		return Message{}, fmt.Errorf("contact: get replies: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Message, error) {
	query := `SELECT id, name, email, phone, subject, body, status, created_at FROM contact_messages`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d OFFSET %d`, filter.Limit, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("contact: list messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var (
			m      Message
			status string
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Body, &status, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("contact: scan message: %w", err)
		}
		m.Status = MessageStatus(status)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("contact: list messages: %w", err)
	}
	return messages, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id uuid.UUID, status MessageStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE contact_messages SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("contact: set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *PostgresRepository) AppendReply(ctx context.Context, reply Reply) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO contact_replies (id, message_id, admin_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		reply.ID, reply.MessageID, reply.AdminID, reply.Body, reply.CreatedAt,
	)
	if err != nil {
		if pg.IsForeignKeyViolation(err) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("contact: append reply: %w", err)
	}
	return nil
}
