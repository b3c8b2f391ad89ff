package database

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"

	"credgate/migrations"
)

// Migrate applies all pending embedded migrations.
func (p *Pool) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, p.db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
