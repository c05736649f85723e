package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the ordered set applied by `migrate` and on server start.
var Migrations = migrate.NewMigrations()
