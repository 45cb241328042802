package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/facelens/internal/domain"
)

// ErrorHandler renders every error as
// {"status":"error","error":CODE,"message":...,"error_type":...}.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		// Check if it's a Fiber error
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			if fiberErr.Code == fiber.StatusRequestEntityTooLarge {
				return writeAppError(c, domain.ErrImageTooLarge)
			}
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"status":  "error",
				"error":   "HTTP_ERROR",
				"message": fiberErr.Message,
			})
		}

		// Check if it's our AppError
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			// Log internal errors
			if appErr.StatusCode >= 500 {
				logger.Error("internal error",
					slog.String("code", appErr.Code),
					slog.String("message", appErr.Message),
					slog.Any("error", appErr.Err),
					slog.String("path", c.Path()),
				)
			}

			return writeAppError(c, appErr)
		}

		// Unknown error - a pipeline failure nothing classified
		logger.Error("unhandled error",
			slog.Any("error", err),
			slog.String("path", c.Path()),
		)

		return writeAppError(c, domain.ErrProcessing.WithError(err))
	}
}

func writeAppError(c *fiber.Ctx, appErr *domain.AppError) error {
	body := fiber.Map{
		"status":  "error",
		"error":   appErr.Code,
		"message": appErr.PublicMessage(),
	}
	if appErr.ErrorType != "" {
		body["error_type"] = appErr.ErrorType
	}
	return c.Status(appErr.StatusCode).JSON(body)
}
