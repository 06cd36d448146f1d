package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	"todoapi/pkg/tracing"
)

// TodoService owns validation, normalization and state transitions. It is
// the only component the transport layer talks to.
type TodoService struct {
	repo port.TodoRepository
}

func NewTodoService(repo port.TodoRepository) *TodoService {
	return &TodoService{repo: repo}
}

// List returns all todos matching status ("completed", "pending", anything
// else means all), newest first.
func (s *TodoService) List(ctx context.Context, status string) ([]domain.Todo, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "service.todo.List", []attribute.KeyValue{
		attribute.String("todo.status", status),
	})
	defer span.End()

	todos, err := s.repo.Find(ctx, domain.ListOptions{Filter: domain.ParseStatusFilter(status)})

	if err != nil {
		tracing.AddSpanError(span, err)
		log.Error().Err(err).Str("status", status).Msg("listing todos failed")

		return nil, err
	}

	span.SetAttributes(attribute.Int("todo.count", len(todos)))

	return todos, nil
}

// ListPaginated returns one page of todos plus pagination totals. The caller
// (transport layer) is trusted to have validated page >= 1 and
// 1 <= limit <= 100. The find and count run against the same filter but are
// independent queries, so totals can lag under concurrent writes.
func (s *TodoService) ListPaginated(ctx context.Context, page, limit int64, status string) (domain.Page, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "service.todo.ListPaginated", []attribute.KeyValue{
		attribute.Int64("todo.page", page),
		attribute.Int64("todo.limit", limit),
		attribute.String("todo.status", status),
	})
	defer span.End()

	filter := domain.ParseStatusFilter(status)

	opts := domain.ListOptions{
		Filter: filter,
		Skip:   (page - 1) * limit,
		Limit:  limit,
	}

	var (
		items []domain.Todo
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		items, err = s.repo.Find(gctx, opts)
		return err
	})

	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, filter)
		return err
	})

	if err := g.Wait(); err != nil {
		tracing.AddSpanError(span, err)
		log.Error().Err(err).Int64("page", page).Int64("limit", limit).Msg("paginated listing failed")

		return domain.Page{}, err
	}

	result := domain.Page{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: domain.TotalPages(total, limit),
	}

	span.SetAttributes(
		attribute.Int("todo.count", len(items)),
		attribute.Int64("todo.total", total),
	)

	return result, nil
}

// GetByID returns a single todo. A malformed id and a missing record both
// yield domain.ErrNotFound.
func (s *TodoService) GetByID(ctx context.Context, id string) (domain.Todo, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates and trims the input, then persists a new pending todo.
func (s *TodoService) Create(ctx context.Context, title, description string) (domain.Todo, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if err := validateTitle(title); err != nil {
		return domain.Todo{}, err
	}

	if err := validateDescription(description); err != nil {
		return domain.Todo{}, err
	}

	todo, err := s.repo.Insert(ctx, title, description)

	if err != nil {
		log.Error().Err(err).Str("title", title).Msg("creating todo failed")
		return domain.Todo{}, err
	}

	log.Debug().Str("id", todo.ID).Msg("todo created")

	return todo, nil
}

// Update applies a partial update. Only fields present in the patch change;
// present title/description values are trimmed first, and a title that trims
// to empty is rejected before storage is touched.
func (s *TodoService) Update(ctx context.Context, id string, patch domain.Patch) (domain.Todo, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)

		if err := validateTitle(title); err != nil {
			return domain.Todo{}, err
		}

		patch.Title = &title
	}

	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)

		if err := validateDescription(description); err != nil {
			return domain.Todo{}, err
		}

		patch.Description = &description
	}

	return s.repo.UpdateByID(ctx, id, patch)
}

// Toggle flips the completed flag. This is a read-then-write sequence, not
// an atomic store-level flip: two overlapping toggles on the same id can
// observe the same prior state and collapse into a single visible flip.
// Accepted trade-off, kept deliberately.
func (s *TodoService) Toggle(ctx context.Context, id string) (domain.Todo, error) {
	todo, err := s.repo.FindByID(ctx, id)

	if err != nil {
		return domain.Todo{}, err
	}

	completed := !todo.Completed

	return s.repo.UpdateByID(ctx, id, domain.Patch{Completed: &completed})
}

// Delete removes a todo. Malformed ids and missing records both report
// false, never an error.
func (s *TodoService) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.DeleteByID(ctx, id)
}

// Stats runs the total and completed counts in parallel and derives pending.
// The two counts carry no cross-query consistency guarantee; under
// concurrent writes the numbers may disagree for a moment.
func (s *TodoService) Stats(ctx context.Context) (domain.Stats, error) {
	ctx, span := tracing.CreateChildSpan(ctx, "service.todo.Stats", nil)
	defer span.End()

	var total, completed int64

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, domain.FilterAll)
		return err
	})

	g.Go(func() error {
		var err error
		completed, err = s.repo.Count(gctx, domain.FilterCompleted)
		return err
	})

	if err := g.Wait(); err != nil {
		tracing.AddSpanError(span, err)
		log.Error().Err(err).Msg("counting todos failed")

		return domain.Stats{}, err
	}

	return domain.Stats{
		Total:     total,
		Completed: completed,
		Pending:   total - completed,
	}, nil
}

func validateTitle(title string) error {
	if title == "" {
		return domain.NewValidationError("title", "title is required")
	}

	// Limits count characters, not bytes, matching the transport validator.
	if utf8.RuneCountInString(title) > domain.TitleMaxLen {
		return domain.NewValidationError("title", fmt.Sprintf("title must be at most %d characters", domain.TitleMaxLen))
	}

	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > domain.DescriptionMaxLen {
		return domain.NewValidationError("description", fmt.Sprintf("description must be at most %d characters", domain.DescriptionMaxLen))
	}

	return nil
}
