package request

// CreateTodoRequest is the POST /todos payload. Trimming happens in the
// service; the transport only checks shape and bounds.
type CreateTodoRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

// UpdateTodoRequest is the PUT /todos/:id payload. Pointer fields make an
// absent field distinguishable from a zero value, which is what gives the
// endpoint its partial-update semantics.
type UpdateTodoRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Completed   *bool   `json:"completed,omitempty"`
}
