package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

// DB couples a pgx pool with a dollar-placeholder statement builder.
type DB struct {
	*pgxpool.Pool
	QueryBuilder *squirrel.StatementBuilderType
}

func NewDB(ctx context.Context, url, migrationsPath string) (*DB, error) {
	if url == "" {
		return nil, errors.New("database url is not set")
	}

	pool, err := pgxpool.New(ctx, url)

	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if migrationsPath != "" {
		if err := runMigrations(url, migrationsPath); err != nil {
			pool.Close()
			return nil, err
		}
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	log.Info().Msg("connected to postgres")

	return &DB{
		Pool:         pool,
		QueryBuilder: &psql,
	}, nil
}

func runMigrations(url, migrationsPath string) error {
	sqlDB, err := sql.Open("pgx", url)

	if err != nil {
		return err
	}

	defer sqlDB.Close()

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})

	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)

	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}
