package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// DefaultDirs are checked after MIGRATIONS_DIR and MIGRATIONS_PATH.
var DefaultDirs = []string{"./db/migrations", "/app/db/migrations"}

// ResolveDir returns the first candidate that exists as a directory.
// Blank candidates are skipped.
func ResolveDir(candidates ...string) (string, error) {
	if len(candidates) == 0 {
		candidates = append([]string{
			os.Getenv("MIGRATIONS_DIR"),
			os.Getenv("MIGRATIONS_PATH"),
		}, DefaultDirs...)
	}

	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, nil
	}

	return "", fmt.Errorf("migration directory not found (checked %s)", strings.Join(candidates, ", "))
}

func New(dbURL, dir string) (*migrate.Migrate, error) {
	m, err := migrate.New("file://"+filepath.ToSlash(dir), dbURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// Up applies every pending migration. Nothing to apply is not an error.
func Up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close releases source and database handles, joining both errors.
func Close(m *migrate.Migrate) error {
	srcErr, dbErr := m.Close()
	return errors.Join(srcErr, dbErr)
}
