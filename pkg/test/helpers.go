package test

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"todoapi/internal/adapter/storage/sqlite"
)

// findProjectRoot walks up from this file until it finds go.mod.
func findProjectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)

		if parent == dir {
			break
		}

		dir = parent
	}

	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	log.Fatal("could not find project root directory")
	return ""
}

// InitTestDB opens an in-memory sqlite database with the schema applied.
// Each call returns a fresh, isolated database.
func InitTestDB() *sqlite.DB {
	rawDB, err := sql.Open("sqlite3", ":memory:")

	if err != nil {
		log.Fatal(err)
	}

	migrationsPath := filepath.Join(findProjectRoot(), "db", "migrations", "sqlite")

	if err := sqlite.RunMigrations(rawDB, migrationsPath); err != nil {
		log.Fatal(err)
	}

	return sqlite.Wrap(rawDB)
}
