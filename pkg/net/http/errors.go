package http

import (
	"errors"

	commonsHttp "github.com/LerianStudio/lib-commons/commons/net/http"
	"github.com/gofiber/fiber/v2"
	"github.com/keybox-dev/keybox-go/constant"
	"github.com/keybox-dev/keybox-go/model"
	"github.com/keybox-dev/keybox-go/pkg"
)

// WithError writes err as a structured JSON response with the status its type implies.
func WithError(c *fiber.Ctx, err error) error {
	switch e := err.(type) {
	case pkg.EntityNotFoundError:
		return commonsHttp.NotFound(c, e.Code, e.Title, e.Message)
	case pkg.EntityConflictError:
		return commonsHttp.Conflict(c, e.Code, e.Title, e.Message)
	case pkg.ValidationError:
		return commonsHttp.BadRequest(c, pkg.ValidationKnownFieldsError{
			Code:    e.Code,
			Title:   e.Title,
			Message: e.Message,
			Fields:  nil,
		})
	case pkg.ForbiddenError:
		return commonsHttp.Forbidden(c, e.Code, e.Title, e.Message)
	case pkg.ValidationKnownFieldsError:
		return commonsHttp.BadRequest(c, e)
	case pkg.InternalServerError:
		return commonsHttp.InternalServerError(c, e.Code, e.Title, e.Message)
	default:
		var iErr pkg.InternalServerError
		_ = errors.As(pkg.ValidateInternalError(err, ""), &iErr)

		return commonsHttp.InternalServerError(c, iErr.Code, iErr.Title, iErr.Message)
	}
}

// ValidationFailure writes the error shape of the validation endpoint. Callers of
// that endpoint always receive a body they can decode as a ValidationResult.
func ValidationFailure(c *fiber.Ctx, status int, message string, err error) error {
	body := model.ValidationResult{
		Valid:   false,
		Status:  constant.ResponseStatusError,
		Message: message,
	}

	if err != nil {
		body.Error = err.Error()
	}

	return c.Status(status).JSON(body)
}
