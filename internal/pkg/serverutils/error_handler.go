package serverutils

import (
	"errors"

	"kb-assistant-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns errors returned by handlers into the common
// error envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code, message := StatusOf(err)
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

// StatusOf maps an error to its HTTP status and public message.
func StatusOf(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, fe.Message
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode, appErr.Message
	}
	return apperror.HTTPStatusCode(err), err.Error()
}
