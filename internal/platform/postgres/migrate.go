package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

const migrationTable = "schema_migrations"

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies the embedded schema migrations at most once per file.
func Migrate(ctx context.Context, db *sql.DB) error {
	return ApplyMigrations(ctx, db, migrationFS, "migrations")
}

// ApplyMigrations executes the .sql files under root in lexical order,
// recording each applied file in schema_migrations.
func ApplyMigrations(ctx context.Context, db *sql.DB, migrations fs.FS, root string) error {
	if db == nil {
		return fmt.Errorf("sql db is required")
	}

	entries, err := fs.ReadDir(migrations, root)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+migrationTable+` (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, name := range files {
		content, err := fs.ReadFile(migrations, root+"/"+name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		err = RunInTx(ctx, db, func(txCtx context.Context) error {
			conn := Conn(txCtx, db)
			res, err := conn.ExecContext(txCtx,
				`INSERT INTO `+migrationTable+` (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
			if err != nil {
				return fmt.Errorf("record migration %s: %w", name, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return nil
			}
			up := ExtractUpMigration(string(content))
			if strings.TrimSpace(up) == "" {
				return nil
			}
			if _, err := conn.ExecContext(txCtx, up); err != nil {
				return fmt.Errorf("exec migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// ExtractUpMigration returns the SQL in the -- +migrate Up section.
func ExtractUpMigration(content string) string {
	upIdx := strings.Index(content, "-- +migrate Up")
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, "-- +migrate Down")
	if downIdx == -1 {
		return content[upIdx+len("-- +migrate Up"):]
	}
	return content[upIdx+len("-- +migrate Up") : downIdx]
}
