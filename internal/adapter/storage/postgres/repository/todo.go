package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"todoapi/internal/adapter/storage/postgres"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	"todoapi/pkg/tracing"
)

const todoColumns = "id, title, description, completed, created_at, updated_at"

// TodoRepository implements the storage facade over postgres. The UUID
// parse happens before any query so malformed ids collapse into NotFound
// without a round trip.
type TodoRepository struct {
	db *postgres.DB
}

func NewTodoRepository(db *postgres.DB) port.TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Find(ctx context.Context, opts domain.ListOptions) ([]domain.Todo, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "db.todo.Find", []attribute.KeyValue{
		attribute.String("db.table", "todos"),
		attribute.String("db.operation", "SELECT"),
		attribute.String("todo.filter", opts.Filter.String()),
	})
	defer span.End()

	query := r.db.QueryBuilder.Select(todoColumns).
		From("todos").
		OrderBy("created_at DESC", "id DESC")

	query = applyFilter(query, opts.Filter)

	if opts.Skip > 0 {
		query = query.Offset(uint64(opts.Skip))
	}

	if opts.Limit > 0 {
		query = query.Limit(uint64(opts.Limit))
	}

	stmt, args, err := query.ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, stmt, args...)

	if err != nil {
		tracing.AddSpanError(span, err)
		log.Error().Err(err).Msg("finding todos failed")

		return nil, storageErr(err)
	}

	defer rows.Close()

	data := []domain.Todo{}

	for rows.Next() {
		var todo domain.Todo

		if err := rows.Scan(&todo.ID, &todo.Title, &todo.Description, &todo.Completed, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
			return nil, storageErr(err)
		}

		data = append(data, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr(err)
	}

	span.SetAttributes(attribute.Int("db.rows_returned", len(data)))

	return data, nil
}

func (r *TodoRepository) FindByID(ctx context.Context, id string) (domain.Todo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Todo{}, domain.ErrNotFound
	}

	stmt, args, err := r.db.QueryBuilder.Select(todoColumns).
		From("todos").
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	var todo domain.Todo

	err = r.db.QueryRow(ctx, stmt, args...).
		Scan(&todo.ID, &todo.Title, &todo.Description, &todo.Completed, &todo.CreatedAt, &todo.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Todo{}, domain.ErrNotFound
		}

		return domain.Todo{}, storageErr(err)
	}

	return todo, nil
}

func (r *TodoRepository) Insert(ctx context.Context, title, description string) (domain.Todo, error) {
	now := time.Now().UTC()

	stmt, args, err := r.db.QueryBuilder.Insert("todos").
		Columns("id", "title", "description", "completed", "created_at", "updated_at").
		Values(uuid.NewString(), title, description, false, now, now).
		Suffix("RETURNING " + todoColumns).
		ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	var todo domain.Todo

	err = r.db.QueryRow(ctx, stmt, args...).
		Scan(&todo.ID, &todo.Title, &todo.Description, &todo.Completed, &todo.CreatedAt, &todo.UpdatedAt)

	if err != nil {
		log.Error().Err(err).Str("title", title).Msg("inserting todo failed")
		return domain.Todo{}, storageErr(err)
	}

	return todo, nil
}

func (r *TodoRepository) UpdateByID(ctx context.Context, id string, patch domain.Patch) (domain.Todo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Todo{}, domain.ErrNotFound
	}

	query := r.db.QueryBuilder.Update("todos").
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + todoColumns)

	if patch.Title != nil {
		query = query.Set("title", *patch.Title)
	}

	if patch.Description != nil {
		query = query.Set("description", *patch.Description)
	}

	if patch.Completed != nil {
		query = query.Set("completed", *patch.Completed)
	}

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.Todo{}, err
	}

	var todo domain.Todo

	err = r.db.QueryRow(ctx, stmt, args...).
		Scan(&todo.ID, &todo.Title, &todo.Description, &todo.Completed, &todo.CreatedAt, &todo.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Todo{}, domain.ErrNotFound
		}

		return domain.Todo{}, storageErr(err)
	}

	return todo, nil
}

func (r *TodoRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	stmt, args, err := r.db.QueryBuilder.Delete("todos").
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, stmt, args...)

	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("deleting todo failed")
		return false, storageErr(err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *TodoRepository) Count(ctx context.Context, filter domain.StatusFilter) (int64, error) {
	query := r.db.QueryBuilder.Select("COUNT(*)").From("todos")
	query = applyFilter(query, filter)

	stmt, args, err := query.ToSql()

	if err != nil {
		return 0, err
	}

	var count int64

	if err := r.db.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, storageErr(err)
	}

	return count, nil
}

func applyFilter(query sq.SelectBuilder, f domain.StatusFilter) sq.SelectBuilder {
	switch f {
	case domain.FilterCompleted:
		return query.Where(sq.Eq{"completed": true})
	case domain.FilterPending:
		return query.Where(sq.Eq{"completed": false})
	default:
		return query
	}
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
}
