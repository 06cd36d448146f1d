package helper

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/response"
)

func SendSuccess(c *gin.Context, statusCode int, data any, message ...string) {
	resp := response.SuccessResponse{Data: data}

	if len(message) > 0 && message[0] != "" {
		resp.Message = message[0]
	}

	c.JSON(statusCode, resp)
}

func SendError(c *gin.Context, statusCode int, code string, errs []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errs,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.JSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, errs []response.ValidationError) {
	SendError(c, http.StatusBadRequest, "VALIDATION_ERROR", errs)
}

func SendBadRequestError(c *gin.Context, field, message string) {
	SendError(c, http.StatusBadRequest, "BAD_REQUEST", []response.ValidationError{
		{Field: field, Message: message},
	})
}

func SendNotFoundError(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, "NOT_FOUND", []response.ValidationError{
		{Field: "resource", Message: message},
	})
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", []response.ValidationError{
		{Field: "server", Message: message},
	}, details...)
}

// SendDomainError shapes a domain failure into the response envelope:
// validation failures are client errors, NotFound is a missing resource,
// everything else (including storage unavailability) is a server error.
func SendDomainError(c *gin.Context, err error) {
	if ve := domain.AsValidationError(err); ve != nil {
		errs := make([]response.ValidationError, 0, len(ve.Fields))

		for _, f := range ve.Fields {
			errs = append(errs, response.ValidationError{Field: f.Field, Message: f.Message})
		}

		SendValidationError(c, errs)
		return
	}

	if errors.Is(err, domain.ErrNotFound) {
		SendNotFoundError(c, "todo not found")
		return
	}

	SendInternalError(c, "something went wrong")
}
