package pkg

import (
	"fmt"
	"strings"

	"github.com/keybox-dev/keybox-go/constant"
)

// EntityNotFoundError records an error indicating an entity was not found in any case that caused it.
type EntityNotFoundError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

// Error implements the error interface.
func (e EntityNotFoundError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		if strings.TrimSpace(e.EntityType) != "" {
			return fmt.Sprintf("Entity %s not found", e.EntityType)
		}

		if e.Err != nil {
			return e.Err.Error()
		}

		return "entity not found"
	}

	return e.Message
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e EntityNotFoundError) Unwrap() error {
	return e.Err
}

// ValidationError records an error indicating the request input is unacceptable.
type ValidationError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string
	Message    string
	Code       string
	Err        error `json:"err,omitempty"`
}

func (e ValidationError) Error() string {
	if strings.TrimSpace(e.Code) != "" {
		return fmt.Sprintf("%s - %s", e.Code, e.Message)
	}

	return e.Message
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// EntityConflictError records a redundant transition, such as revoking a revoked license.
type EntityConflictError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

func (e EntityConflictError) Error() string {
	if e.Err != nil && strings.TrimSpace(e.Message) == "" {
		return e.Err.Error()
	}

	return e.Message
}

func (e EntityConflictError) Unwrap() error {
	return e.Err
}

// ForbiddenError indicates an operation the license's terminal state does not allow.
type ForbiddenError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"err,omitempty"`
}

func (e ForbiddenError) Error() string {
	return e.Message
}

func (e ForbiddenError) Unwrap() error {
	return e.Err
}

// InternalServerError indicates an unexpected failure, usually of the store.
type InternalServerError struct {
	EntityType string `json:"entityType,omitempty"`
	Title      string `json:"title,omitempty"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Err        error  `json:"err,omitempty"`
}

func (e InternalServerError) Error() string {
	return e.Message
}

func (e InternalServerError) Unwrap() error {
	return e.Err
}

// ValidationKnownFieldsError records an error that occurred during a validation of known fields.
type ValidationKnownFieldsError struct {
	EntityType string           `json:"entityType,omitempty"`
	Title      string           `json:"title,omitempty"`
	Code       string           `json:"code,omitempty"`
	Message    string           `json:"message,omitempty"`
	Fields     FieldValidations `json:"fields,omitempty"`
}

// Error returns the error message for a ValidationKnownFieldsError.
func (r ValidationKnownFieldsError) Error() string {
	return r.Message
}

// FieldValidations is a map of known fields and their validation errors.
type FieldValidations map[string]string

// ValidateInternalError wraps err in an InternalServerError with a generic message.
func ValidateInternalError(err error, entityType string) error {
	return InternalServerError{
		EntityType: entityType,
		Code:       constant.ErrInternalServer.Error(),
		Title:      "Internal Server Error",
		Message:    "The server encountered an unexpected error. Please try again later or contact support.",
		Err:        err,
	}
}

// ValidateBusinessError maps a business sentinel from constant to its typed error,
// with code, title and message. Unknown errors are returned unchanged.
func ValidateBusinessError(err error, entityType string, args ...any) error {
	errorMap := map[error]error{
		constant.ErrMissingProductName: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrMissingProductName.Error(),
			Title:      "Missing product name",
			Message:    "Product name is required",
		},
		constant.ErrMissingCustomer: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrMissingCustomer.Error(),
			Title:      "Missing customer",
			Message:    "Customer is required",
		},
		constant.ErrInvalidDuration: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrInvalidDuration.Error(),
			Title:      "Invalid duration",
			Message:    fmt.Sprintf("Duration must be %d to %d months", constant.MinDurationMonths, constant.MaxDurationMonths),
		},
		constant.ErrMissingLicenseKey: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrMissingLicenseKey.Error(),
			Title:      "Missing license key",
			Message:    "License key is required",
		},
		constant.ErrInvalidRequestBody: ValidationError{
			EntityType: entityType,
			Code:       constant.ErrInvalidRequestBody.Error(),
			Title:      "Invalid request body",
			Message:    "The request body could not be parsed as JSON",
		},
		constant.ErrLicenseNotFound: EntityNotFoundError{
			EntityType: entityType,
			Code:       constant.ErrLicenseNotFound.Error(),
			Title:      "License not found",
			Message:    fmt.Sprintf("No license exists for key '%v'", firstArg(args)),
		},
		constant.ErrLicenseRevoked: ForbiddenError{
			EntityType: entityType,
			Code:       constant.ErrLicenseRevoked.Error(),
			Title:      "License revoked",
			Message:    "License has been revoked",
		},
		constant.ErrLicenseExpired: ForbiddenError{
			EntityType: entityType,
			Code:       constant.ErrLicenseExpired.Error(),
			Title:      "License expired",
			Message:    "License has expired",
		},
		constant.ErrLicenseAlreadyRevoked: EntityConflictError{
			EntityType: entityType,
			Code:       constant.ErrLicenseAlreadyRevoked.Error(),
			Title:      "License already revoked",
			Message:    "License already revoked",
		},
		constant.ErrKeyGeneration: InternalServerError{
			EntityType: entityType,
			Code:       constant.ErrKeyGeneration.Error(),
			Title:      "Key generation failed",
			Message:    "Could not generate a unique license key. Please try again.",
		},
		constant.ErrUnknownStatus: ForbiddenError{
			EntityType: entityType,
			Code:       constant.ErrUnknownStatus.Error(),
			Title:      "Unknown license status",
			Message:    "License is in an unknown state and cannot be changed",
		},
		constant.ErrLicenseInactive: ForbiddenError{
			EntityType: entityType,
			Code:       constant.ErrLicenseInactive.Error(),
			Title:      "License inactive",
			Message:    "This application does not hold a valid license",
		},
	}

	if mappedError, found := errorMap[err]; found {
		return mappedError
	}

	return err
}

func firstArg(args []any) any {
	if len(args) == 0 {
		return ""
	}

	return args[0]
}
