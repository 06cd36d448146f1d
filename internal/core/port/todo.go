package port

import (
	"context"

	"todoapi/internal/core/domain"
)

// TodoRepository is the storage facade. Implementations translate these
// calls into store operations without embedding business rules. Find always
// returns newest-first; FindByID and UpdateByID report a malformed id the
// same way as a missing record (domain.ErrNotFound).
type TodoRepository interface {
	Find(ctx context.Context, opts domain.ListOptions) ([]domain.Todo, error)
	FindByID(ctx context.Context, id string) (domain.Todo, error)
	Insert(ctx context.Context, title, description string) (domain.Todo, error)
	UpdateByID(ctx context.Context, id string, patch domain.Patch) (domain.Todo, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context, filter domain.StatusFilter) (int64, error)
}

// TodoService is the contract consumed by the transport layer.
type TodoService interface {
	List(ctx context.Context, status string) ([]domain.Todo, error)
	ListPaginated(ctx context.Context, page, limit int64, status string) (domain.Page, error)
	GetByID(ctx context.Context, id string) (domain.Todo, error)
	Create(ctx context.Context, title, description string) (domain.Todo, error)
	Update(ctx context.Context, id string, patch domain.Patch) (domain.Todo, error)
	Toggle(ctx context.Context, id string) (domain.Todo, error)
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (domain.Stats, error)
}
