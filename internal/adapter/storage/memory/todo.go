package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
)

type record struct {
	todo domain.Todo
	seq  int64
}

// TodoRepository is an in-memory storage facade used by tests and local
// development. Records are keyed by UUID strings; anything that does not
// parse as a UUID counts as a malformed id, mirroring the real backends.
type TodoRepository struct {
	mu      sync.RWMutex
	records map[string]record
	nextSeq int64
}

func NewTodoRepository() *TodoRepository {
	return &TodoRepository{records: make(map[string]record)}
}

var _ port.TodoRepository = (*TodoRepository)(nil)

func (r *TodoRepository) Ping(_ context.Context) error {
	return nil
}

func (r *TodoRepository) Find(_ context.Context, opts domain.ListOptions) ([]domain.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]record, 0, len(r.records))

	for _, rec := range r.records {
		if matches(rec.todo, opts.Filter) {
			matched = append(matched, rec)
		}
	}

	// Newest first; insertion order breaks creation-time ties.
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]

		if !a.todo.CreatedAt.Equal(b.todo.CreatedAt) {
			return a.todo.CreatedAt.After(b.todo.CreatedAt)
		}

		return a.seq > b.seq
	})

	start := opts.Skip

	if start > int64(len(matched)) {
		start = int64(len(matched))
	}

	end := int64(len(matched))

	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	data := make([]domain.Todo, 0, end-start)

	for _, rec := range matched[start:end] {
		data = append(data, rec.todo)
	}

	return data, nil
}

func (r *TodoRepository) FindByID(_ context.Context, id string) (domain.Todo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Todo{}, domain.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]

	if !ok {
		return domain.Todo{}, domain.ErrNotFound
	}

	return rec.todo, nil
}

func (r *TodoRepository) Insert(_ context.Context, title, description string) (domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()

	todo := domain.Todo{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.nextSeq++
	r.records[todo.ID] = record{todo: todo, seq: r.nextSeq}

	return todo, nil
}

func (r *TodoRepository) UpdateByID(_ context.Context, id string, patch domain.Patch) (domain.Todo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Todo{}, domain.ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]

	if !ok {
		return domain.Todo{}, domain.ErrNotFound
	}

	if patch.Title != nil {
		rec.todo.Title = *patch.Title
	}

	if patch.Description != nil {
		rec.todo.Description = *patch.Description
	}

	if patch.Completed != nil {
		rec.todo.Completed = *patch.Completed
	}

	rec.todo.UpdatedAt = time.Now().UTC()
	r.records[id] = rec

	return rec.todo, nil
}

func (r *TodoRepository) DeleteByID(_ context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return false, nil
	}

	delete(r.records, id)

	return true, nil
}

func (r *TodoRepository) Count(_ context.Context, filter domain.StatusFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64

	for _, rec := range r.records {
		if matches(rec.todo, filter) {
			count++
		}
	}

	return count, nil
}

func matches(t domain.Todo, f domain.StatusFilter) bool {
	switch f {
	case domain.FilterCompleted:
		return t.Completed
	case domain.FilterPending:
		return !t.Completed
	default:
		return true
	}
}
