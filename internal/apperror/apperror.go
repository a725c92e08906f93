package apperror

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Error kinds. Every domain error wraps exactly one of these so handlers can
// map it to a status code without knowing the feature package.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrUnavailable       = errors.New("service unavailable")
	ErrInternal          = errors.New("internal error")
)

// Error carries a user facing message, its kind and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error        { return New(ErrValidation, message) }
func NotFound(message string) *Error          { return New(ErrNotFound, message) }
func InsufficientFunds(message string) *Error { return New(ErrInsufficientFunds, message) }
func Conflict(message string) *Error          { return New(ErrConflict, message) }
func Forbidden(message string) *Error         { return New(ErrForbidden, message) }
func Unavailable(message string) *Error       { return New(ErrUnavailable, message) }

// Internal wraps a persistence or downstream failure. Already classified
// errors pass through untouched.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return &Error{Kind: ErrInternal, Message: "internal server error", Err: err}
}

// StatusCode maps an error to its HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrInsufficientFunds):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Respond writes the {success:false, message} envelope for err.
func Respond(c *fiber.Ctx, err error) error {
	code := StatusCode(err)
	message := err.Error()
	var appErr *Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if code == fiber.StatusInternalServerError {
		slog.Error("request failed", slog.String("path", c.Path()), slog.Any("err", err))
		message = "internal server error"
	}
	return c.Status(code).JSON(fiber.Map{"success": false, "message": message})
}

// FiberErrorHandler handles errors that escape route handlers, including
// fiber's own routing errors.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"success": false, "message": fe.Message})
	}
	return Respond(c, err)
}
