package sqlite

import (
	"context"
	"database/sql"
	"os"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	_ "github.com/mattn/go-sqlite3"
)

// DB couples a sqlite handle with a question-placeholder statement builder.
type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
}

func NewDB(dbPath, migrationsPath string) (*DB, error) {
	migrationDB, err := sql.Open("sqlite3", dbPath)

	if err != nil {
		return nil, err
	}

	if migrationsPath != "" {
		if err := RunMigrations(migrationDB, migrationsPath); err != nil {
			migrationDB.Close()
			return nil, err
		}
	}

	migrationDB.Close()

	sqlDB, err := otelsql.Open("sqlite3", dbPath,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("todoapi"),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)

	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	logged := sqldblogger.OpenDriver(dbPath, sqlDB.Driver(), zerologadapter.New(logger))

	return Wrap(logged), nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Wrap builds a DB around an already-open handle. Tests use this with an
// in-memory database.
func Wrap(sqlDB *sql.DB) *DB {
	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &DB{
		DB:           sqlDB,
		QueryBuilder: &queryBuilder,
	}
}

func RunMigrations(db *sql.DB, migrationsPath string) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})

	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "sqlite3", driver)

	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}
