package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migration is one embedded SQL file. Files apply in name order, so names
// carry a zero-padded numeric prefix.
type migration struct {
	Name string
	SQL  string
}

// RunMigrations applies every embedded migration not yet recorded in _migrations.
func RunMigrations(db *DB) error {
	pending, err := pendingMigrations(db.DB)
	if err != nil {
		return err
	}

	for _, m := range pending {
		log.Printf("Applying migration: %s", m.Name)
		if err := db.Transaction(func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.SQL); err != nil {
				return fmt.Errorf("executing SQL: %w", err)
			}
			if _, err := tx.Exec("INSERT INTO _migrations (name) VALUES (?)", m.Name); err != nil {
				return fmt.Errorf("recording migration: %w", err)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("applying migration %s: %w", m.Name, err)
		}
	}

	if len(pending) > 0 {
		log.Printf("Applied %d migrations to %s", len(pending), db.Path())
	}
	return nil
}

// PendingMigrations returns the names of migrations RunMigrations would apply.
func PendingMigrations(db *DB) ([]string, error) {
	pending, err := pendingMigrations(db.DB)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(pending))
	for i, m := range pending {
		names[i] = m.Name
	}
	return names, nil
}

func pendingMigrations(db *sql.DB) ([]migration, error) {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS _migrations (
			name TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return nil, fmt.Errorf("creating migrations table: %w", classify(err))
	}

	applied, err := appliedMigrations(db)
	if err != nil {
		return nil, fmt.Errorf("listing applied migrations: %w", classify(err))
	}

	all, err := embeddedMigrations()
	if err != nil {
		return nil, fmt.Errorf("reading migration files: %w", err)
	}

	var pending []migration
	for _, m := range all {
		if !applied[m.Name] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

func appliedMigrations(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query("SELECT name FROM _migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

func embeddedMigrations() ([]migration, error) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	migrations := make([]migration, 0, len(files))
	for _, f := range files {
		content, err := migrationsFS.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		migrations = append(migrations, migration{Name: path.Base(f), SQL: string(content)})
	}
	return migrations, nil
}
