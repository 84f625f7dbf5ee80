package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"inboxagent/internal/model"
)

// PromptRepository 存储可编辑的提示词模板，每次调用都重新读取
type PromptRepository struct {
	db *pgxpool.Pool
}

func NewPromptRepository(db *pgxpool.Pool) *PromptRepository {
	return &PromptRepository{db: db}
}

// Upsert creates the prompt or replaces content, description and updated_at.
func (r *PromptRepository) Upsert(ctx context.Context, name, content, description string) (*model.Prompt, error) {
	query := `
        INSERT INTO prompts (name, content, description, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (name) DO UPDATE
        SET content = EXCLUDED.content,
            description = EXCLUDED.description,
            updated_at = NOW()
        RETURNING id, name, content, description, updated_at
    `
	var p model.Prompt
	err := r.db.QueryRow(ctx, query, name, content, description).
		Scan(&p.ID, &p.Name, &p.Content, &p.Description, &p.UpdatedAt)
	if err != nil {
		return nil, wrapErr("upsert prompt", err)
	}
	return &p, nil
}

// InsertIfAbsent seeds a prompt without touching an existing one.
// Reports whether a row was inserted.
func (r *PromptRepository) InsertIfAbsent(ctx context.Context, name, content, description string) (bool, error) {
	query := `
        INSERT INTO prompts (name, content, description)
        VALUES ($1, $2, $3)
        ON CONFLICT (name) DO NOTHING
    `
	tag, err := r.db.Exec(ctx, query, name, content, description)
	if err != nil {
		return false, wrapErr("seed prompt", err)
	}
	return tag.RowsAffected() == 1, nil
}

// FindByName returns ErrNotFound when no prompt has that name.
func (r *PromptRepository) FindByName(ctx context.Context, name string) (*model.Prompt, error) {
	query := `SELECT id, name, content, description, updated_at FROM prompts WHERE name = $1`
	var p model.Prompt
	err := r.db.QueryRow(ctx, query, name).
		Scan(&p.ID, &p.Name, &p.Content, &p.Description, &p.UpdatedAt)
	if err != nil {
		return nil, wrapErr("find prompt", err)
	}
	return &p, nil
}

func (r *PromptRepository) List(ctx context.Context) ([]model.Prompt, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, content, description, updated_at FROM prompts ORDER BY name`)
	if err != nil {
		return nil, wrapErr("list prompts", err)
	}
	defer rows.Close()

	prompts := []model.Prompt{}
	for rows.Next() {
		var p model.Prompt
		if err := rows.Scan(&p.ID, &p.Name, &p.Content, &p.Description, &p.UpdatedAt); err != nil {
			return nil, wrapErr("scan prompt", err)
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list prompts", err)
	}
	return prompts, nil
}
