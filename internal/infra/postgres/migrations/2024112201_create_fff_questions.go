package migrations

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"millionaire-service/internal/domain"
)

//go:embed 0001_create_fff_questions.sql
var createFFFQuestionsSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			if _, err := db.ExecContext(ctx, createFFFQuestionsSQL); err != nil {
				return err
			}
			// seed the built-in catalog
			for i, q := range domain.DefaultFFFCatalog {
				raw, err := json.Marshal(q)
				if err != nil {
					return fmt.Errorf("marshal catalog question %d: %w", i, err)
				}
				if _, err := db.ExecContext(ctx,
					`INSERT INTO fff_questions (position, data) VALUES (?, ?::jsonb) ON CONFLICT (position) DO NOTHING`,
					i, string(raw)); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS fff_questions`)
			return err
		},
	)
}
