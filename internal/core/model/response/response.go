package response

import (
	"time"

	"todoapi/internal/core/domain"
)

type TodoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewTodoResponse(t domain.Todo) TodoResponse {
	return TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func NewTodoResponses(todos []domain.Todo) []TodoResponse {
	data := make([]TodoResponse, 0, len(todos))

	for _, t := range todos {
		data = append(data, NewTodoResponse(t))
	}

	return data
}

type ListResponse struct {
	Size int            `json:"size"`
	Data []TodoResponse `json:"data"`
}

type Pagination struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

type PaginatedResponse struct {
	Size       int            `json:"size"`
	Data       []TodoResponse `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

func NewPaginatedResponse(page domain.Page) PaginatedResponse {
	data := NewTodoResponses(page.Items)

	return PaginatedResponse{
		Size: len(data),
		Data: data,
		Pagination: Pagination{
			Page:       page.Page,
			Limit:      page.Limit,
			Total:      page.Total,
			TotalPages: page.TotalPages,
			HasNext:    page.HasNext(),
			HasPrev:    page.HasPrev(),
		},
	}
}

type StatsResponse struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Pending   int64 `json:"pending"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Errors  []ValidationError `json:"errors"`
	Details any               `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error ResponseError `json:"error"`
}
