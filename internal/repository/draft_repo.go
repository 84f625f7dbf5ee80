package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"inboxagent/internal/model"
)

type DraftRepository struct {
	db *pgxpool.Pool
}

func NewDraftRepository(db *pgxpool.Pool) *DraftRepository {
	return &DraftRepository{db: db}
}

const draftColumns = `id, email_id, subject, body, metadata, created_at`

func scanDraft(row rowScanner) (*model.Draft, error) {
	var d model.Draft
	if err := row.Scan(&d.ID, &d.EmailID, &d.Subject, &d.Body, &d.Metadata, &d.CreatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create stores a draft; emailID and metadata may be nil.
func (r *DraftRepository) Create(ctx context.Context, emailID *int64, subject, body string, metadata *string) (int64, error) {
	query := `
        INSERT INTO drafts (email_id, subject, body, metadata)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	var id int64
	if err := r.db.QueryRow(ctx, query, emailID, subject, body, metadata).Scan(&id); err != nil {
		return 0, wrapErr("create draft", err)
	}
	return id, nil
}

func (r *DraftRepository) FindByID(ctx context.Context, id int64) (*model.Draft, error) {
	d, err := scanDraft(r.db.QueryRow(ctx, `SELECT `+draftColumns+` FROM drafts WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr("find draft", err)
	}
	return d, nil
}

// List returns drafts newest first.
func (r *DraftRepository) List(ctx context.Context) ([]model.Draft, error) {
	rows, err := r.db.Query(ctx, `SELECT `+draftColumns+` FROM drafts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, wrapErr("list drafts", err)
	}
	defer rows.Close()

	drafts := []model.Draft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, wrapErr("scan draft", err)
		}
		drafts = append(drafts, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list drafts", err)
	}
	return drafts, nil
}

// Delete is idempotent: deleting a missing id is not an error.
func (r *DraftRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM drafts WHERE id = $1`, id); err != nil {
		return wrapErr("delete draft", err)
	}
	return nil
}
