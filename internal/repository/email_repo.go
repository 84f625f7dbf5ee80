package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"inboxagent/internal/model"
)

type EmailRepository struct {
	db *pgxpool.Pool
}

func NewEmailRepository(db *pgxpool.Pool) *EmailRepository {
	return &EmailRepository{db: db}
}

const emailColumns = `id, sender, subject, body, "timestamp", category, action_items, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmail(row rowScanner) (*model.Email, error) {
	var e model.Email
	err := row.Scan(
		&e.ID,
		&e.Sender,
		&e.Subject,
		&e.Body,
		&e.Timestamp,
		&e.Category,
		&e.ActionItems,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a fully processed email and returns its id.
func (r *EmailRepository) Create(ctx context.Context, in model.IncomingEmail, category, actionItems string) (int64, error) {
	query := `
        INSERT INTO emails (sender, subject, body, "timestamp", category, action_items)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(ctx, query, in.Sender, in.Subject, in.Body, in.Timestamp, category, actionItems).Scan(&id)
	if err != nil {
		return 0, wrapErr("create email", err)
	}
	return id, nil
}

// FindByID returns ErrNotFound when no email has that id.
func (r *EmailRepository) FindByID(ctx context.Context, id int64) (*model.Email, error) {
	query := `SELECT ` + emailColumns + ` FROM emails WHERE id = $1`
	e, err := scanEmail(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, wrapErr("find email", err)
	}
	return e, nil
}

// List returns emails ordered by timestamp descending. limit <= 0 means all.
func (r *EmailRepository) List(ctx context.Context, limit int) ([]model.Email, error) {
	query := `SELECT ` + emailColumns + ` FROM emails ORDER BY "timestamp" DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list emails", err)
	}
	defer rows.Close()

	emails := []model.Email{}
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, wrapErr("scan email", err)
		}
		emails = append(emails, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list emails", err)
	}
	return emails, nil
}

// UpdateCategory replaces only the category.
func (r *EmailRepository) UpdateCategory(ctx context.Context, id int64, category string) error {
	return r.updateField(ctx, "update category", `UPDATE emails SET category = $1 WHERE id = $2`, category, id)
}

// UpdateActionItems replaces only the raw action items text.
func (r *EmailRepository) UpdateActionItems(ctx context.Context, id int64, actionItems string) error {
	return r.updateField(ctx, "update action items", `UPDATE emails SET action_items = $1 WHERE id = $2`, actionItems, id)
}

func (r *EmailRepository) updateField(ctx context.Context, op, query, value string, id int64) error {
	tag, err := r.db.Exec(ctx, query, value, id)
	if err != nil {
		return wrapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every email and returns how many were deleted.
func (r *EmailRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM emails`)
	if err != nil {
		return 0, wrapErr("delete emails", err)
	}
	return tag.RowsAffected(), nil
}
