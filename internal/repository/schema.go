package repository

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the tables when they do not exist. Safe to run on every start.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	// 无参数 Exec 走 simple protocol，可以一次执行多条语句
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
