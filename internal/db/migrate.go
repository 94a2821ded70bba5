package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/participadf/ouvidoria/internal/db/migrations"
)

// Migrate aplica as migrações embutidas. direction aceita "up", "down" ou "status".
func Migrate(ctx context.Context, dsn, direction string) error {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer conn.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	switch direction {
	case "", "up":
		return goose.UpContext(ctx, conn, ".")
	case "down":
		return goose.DownContext(ctx, conn, ".")
	case "status":
		return goose.StatusContext(ctx, conn, ".")
	default:
		return fmt.Errorf("direção de migração desconhecida: %s", direction)
	}
}
