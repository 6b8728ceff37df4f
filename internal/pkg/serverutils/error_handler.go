package serverutils

import (
	"errors"

	"advisor-chat-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders errors returned by handlers as the JSON envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return WriteError(ctx, err)
	}
}

// WriteError maps an error to a status code and writes the envelope.
func WriteError(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var validationErrs validator.ValidationErrors
	var fiberErr *fiber.Error

	if appErr, ok := apperror.As(err); ok {
		code = appErr.Code
		message = appErr.Message
	} else if errors.As(err, &validationErrs) {
		code = fiber.StatusBadRequest
		message = validationMessage(validationErrs)
	} else if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}

	return ctx.Status(code).JSON(ErrorResponse(code, message))
}
