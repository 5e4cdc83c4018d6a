package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/session"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler writes every failure as a dto.ErrorResponse. Server errors
// are logged and reported, and their details never reach the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := apperr.StatusCode(err)
	message := apperr.Message(err)

	if code >= fiber.StatusInternalServerError {
		attrs := []any{
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"method", c.Method(),
			"path", c.Path(),
			"status", code,
			"error", err.Error(),
		}
		if scope := session.From(c); scope != nil && scope.User != nil {
			attrs = append(attrs, "user_id", scope.User.ID.String())
		}
		slog.ErrorContext(c.UserContext(), "unhandled server error", attrs...)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:      true,
		StatusCode: code,
		Message:    message,
		Details:    apperr.Details(err),
	})
}
