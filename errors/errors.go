package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type ErrorCode string

const (
	CodeUnauthorized            ErrorCode = "AUTH_001"
	CodeTokenInvalid            ErrorCode = "AUTH_002"
	CodeInsufficientPermissions ErrorCode = "AUTH_003"
	CodeNotOwner                ErrorCode = "AUTH_004"

	CodeInvalidRequest       ErrorCode = "VALIDATION_001"
	CodeMissingRequiredField ErrorCode = "VALIDATION_002"
	CodeInvalidFieldFormat   ErrorCode = "VALIDATION_003"
	CodeInvalidQuantity      ErrorCode = "VALIDATION_004"
	CodeEmptyIngredients     ErrorCode = "VALIDATION_005"
	CodeInvalidGoal          ErrorCode = "VALIDATION_006"
	CodeInvalidSource        ErrorCode = "VALIDATION_007"
	CodeSchemaMismatch       ErrorCode = "VALIDATION_008"

	CodeEventNotFound   ErrorCode = "NOT_FOUND_001"
	CodeListingNotFound ErrorCode = "NOT_FOUND_002"
	CodeRecipeNotFound  ErrorCode = "NOT_FOUND_003"

	CodeAlreadyClaimed   ErrorCode = "CONFLICT_001"
	CodeCannotSelfAction ErrorCode = "CONFLICT_002"
	CodeInvalidStatus    ErrorCode = "CONFLICT_003"

	CodeDatabaseError ErrorCode = "DATABASE_001"

	CodeStorageError   ErrorCode = "EXTERNAL_001"
	CodeAIServiceError ErrorCode = "EXTERNAL_002"

	CodeInternalError ErrorCode = "INTERNAL_001"
)

type ErrorType int

const (
	ErrorTypeUnauthorized ErrorType = iota
	ErrorTypeForbidden
	ErrorTypeBadRequest
	ErrorTypeNotFound
	ErrorTypeConflict
	ErrorTypeUnprocessable
	ErrorTypeInternal
	ErrorTypeServiceUnavailable
)

type AppError struct {
	Type    ErrorType `json:"-"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func TokenInvalid() *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Code:    CodeTokenInvalid,
		Message: "Invalid authentication token.",
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Code:    CodeInsufficientPermissions,
		Message: message,
	}
}

func NotOwner(resourceType string) *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Code:    CodeNotOwner,
		Message: fmt.Sprintf("Only the owner can modify this %s.", resourceType),
	}
}

func InvalidRequest(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeInvalidRequest,
		Message: message,
	}
}

func InvalidRequestWithDetails(message, details string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeInvalidRequest,
		Message: message,
		Details: details,
	}
}

func MissingRequiredField(fieldName string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required.", fieldName),
	}
}

func InvalidFieldFormat(fieldName, expectedFormat string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeInvalidFieldFormat,
		Message: fmt.Sprintf("Invalid format for %s.", fieldName),
		Details: fmt.Sprintf("Expected format: %s", expectedFormat),
	}
}

func InvalidQuantity(ingredient string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeInvalidQuantity,
		Message: fmt.Sprintf("Quantity for '%s' must be a positive number within range.", ingredient),
	}
}

func EmptyIngredients() *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeEmptyIngredients,
		Message: "At least one ingredient is required.",
	}
}

func InvalidGoal() *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeInvalidGoal,
		Message: "Weekly goal must be greater than zero.",
	}
}

func InvalidSource(source string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeInvalidSource,
		Message: fmt.Sprintf("Unknown impact source '%s'.", source),
		Details: "Expected one of: recipe, fridge_share, manual",
	}
}

func SchemaMismatch(field, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeBadRequest,
		Code:    CodeSchemaMismatch,
		Message: fmt.Sprintf("Unexpected shape for %s.", field),
		Details: reason,
	}
}

func EventNotFound() *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    CodeEventNotFound,
		Message: "Impact event not found.",
	}
}

func ListingNotFound() *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    CodeListingNotFound,
		Message: "Listing not found.",
	}
}

func RecipeNotFound() *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    CodeRecipeNotFound,
		Message: "No recipe found in the response.",
	}
}

func AlreadyClaimed() *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Code:    CodeAlreadyClaimed,
		Message: "This listing is no longer available.",
	}
}

func CannotSelfAction(action string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Code:    CodeCannotSelfAction,
		Message: fmt.Sprintf("You cannot %s.", action),
	}
}

func InvalidStatusTransition(from, to string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Code:    CodeInvalidStatus,
		Message: fmt.Sprintf("Cannot change status from %s to %s.", from, to),
	}
}

func DatabaseError(operation string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    CodeDatabaseError,
		Message: "A database error occurred. Please try again.",
		Details: operation,
		Err:     err,
	}
}

func StorageError(operation string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    CodeStorageError,
		Message: "Failed to process file storage. Please try again.",
		Details: operation,
		Err:     err,
	}
}

func AIServiceError(err error) *AppError {
	return &AppError{
		Type:    ErrorTypeServiceUnavailable,
		Code:    CodeAIServiceError,
		Message: "AI service is temporarily unavailable. Please try again later.",
		Err:     err,
	}
}

func InternalError(err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    CodeInternalError,
		Message: "An unexpected error occurred. Please try again.",
		Err:     err,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func GetHTTPStatus(errType ErrorType) int {
	switch errType {
	case ErrorTypeUnauthorized:
		return 401
	case ErrorTypeForbidden:
		return 403
	case ErrorTypeBadRequest:
		return 400
	case ErrorTypeNotFound:
		return 404
	case ErrorTypeConflict:
		return 409
	case ErrorTypeUnprocessable:
		return 422
	case ErrorTypeServiceUnavailable:
		return 503
	default:
		return 500
	}
}

// IsNotFoundError reports whether err wraps pgx.ErrNoRows.
func IsNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

