package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"todoapi/internal/adapter/http/helper"
	"todoapi/internal/adapter/http/validation"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/model/response"
	"todoapi/internal/core/port"
	"todoapi/pkg/telemetry"
)

const (
	defaultPage  = int64(1)
	defaultLimit = int64(10)
	maxLimit     = int64(100)
)

type TodoHandler struct {
	svc     port.TodoService
	metrics *telemetry.AppMetrics
}

func NewTodoHandler(svc port.TodoService, metrics *telemetry.AppMetrics) *TodoHandler {
	return &TodoHandler{svc: svc, metrics: metrics}
}

// ListTodos serves GET /todos. Without page/limit parameters it returns the
// whole filtered collection; with either present it switches to the
// paginated envelope. Pagination bounds are enforced here so the service
// can trust them.
func (h *TodoHandler) ListTodos(c *gin.Context) {
	ctx := c.Request.Context()
	status := c.Query("status")

	if c.Query("page") == "" && c.Query("limit") == "" {
		todos, err := h.svc.List(ctx, status)

		if err != nil {
			helper.SendDomainError(c, err)
			return
		}

		data := response.NewTodoResponses(todos)

		helper.SendSuccess(c, http.StatusOK, response.ListResponse{
			Size: len(data),
			Data: data,
		})
		return
	}

	page, err := queryInt(c, "page", defaultPage)

	if err != nil || page < 1 {
		helper.SendBadRequestError(c, "page", "page must be a positive integer")
		return
	}

	limit, err := queryInt(c, "limit", defaultLimit)

	if err != nil || limit < 1 || limit > maxLimit {
		helper.SendBadRequestError(c, "limit", "limit must be between 1 and 100")
		return
	}

	result, err := h.svc.ListPaginated(ctx, page, limit, status)

	if err != nil {
		helper.SendDomainError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, response.NewPaginatedResponse(result))
}

func (h *TodoHandler) GetTodo(c *gin.Context) {
	todo, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))

	if err != nil {
		helper.SendDomainError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, response.NewTodoResponse(todo))
}

func (h *TodoHandler) CreateTodo(c *gin.Context) {
	var params request.CreateTodoRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		helper.SendBadRequestError(c, "request", "invalid request body")
		return
	}

	if err := validation.Validator.Struct(params); err != nil {
		helper.SendValidationError(c, validation.FormatValidationErrors(err))
		return
	}

	todo, err := h.svc.Create(c.Request.Context(), params.Title, params.Description)

	if err != nil {
		helper.SendDomainError(c, err)
		return
	}

	h.recordOperation("create")
	log.Debug().Str("id", todo.ID).Msg("todo created")

	helper.SendSuccess(c, http.StatusCreated, response.NewTodoResponse(todo))
}

func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	var params request.UpdateTodoRequest

	if err := c.ShouldBindJSON(&params); err != nil {
		helper.SendBadRequestError(c, "request", "invalid request body")
		return
	}

	if err := validation.Validator.Struct(params); err != nil {
		helper.SendValidationError(c, validation.FormatValidationErrors(err))
		return
	}

	patch := domain.Patch{
		Title:       params.Title,
		Description: params.Description,
		Completed:   params.Completed,
	}

	todo, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)

	if err != nil {
		helper.SendDomainError(c, err)
		return
	}

	h.recordOperation("update")

	helper.SendSuccess(c, http.StatusOK, response.NewTodoResponse(todo))
}

func (h *TodoHandler) ToggleTodo(c *gin.Context) {
	todo, err := h.svc.Toggle(c.Request.Context(), c.Param("id"))

	if err != nil {
		helper.SendDomainError(c, err)
		return
	}

	h.recordOperation("toggle")

	helper.SendSuccess(c, http.StatusOK, response.NewTodoResponse(todo))
}

func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	deleted, err := h.svc.Delete(c.Request.Context(), c.Param("id"))

	if err != nil {
		helper.SendDomainError(c, err)
		return
	}

	if !deleted {
		helper.SendNotFoundError(c, "todo not found")
		return
	}

	h.recordOperation("delete")

	helper.SendSuccess(c, http.StatusOK, nil, "todo deleted successfully")
}

func (h *TodoHandler) GetStats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())

	if err != nil {
		helper.SendDomainError(c, err)
		return
	}

	helper.SendSuccess(c, http.StatusOK, response.StatsResponse{
		Total:     stats.Total,
		Completed: stats.Completed,
		Pending:   stats.Pending,
	})
}

func (h *TodoHandler) recordOperation(operation string) {
	if h.metrics != nil {
		h.metrics.RecordTodoOperation(operation)
	}
}

func queryInt(c *gin.Context, name string, fallback int64) (int64, error) {
	raw := c.Query(name)

	if raw == "" {
		return fallback, nil
	}

	return strconv.ParseInt(raw, 10, 64)
}
