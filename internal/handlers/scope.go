package handlers

import (
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// ScopedHandler is a handler that works inside a request session.
type ScopedHandler func(c *fiber.Ctx, scope *session.Scope) error

// Scoped hands the request scope to h. The session middleware must run first.
func Scoped(h ScopedHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope := session.From(c)
		if scope == nil {
			return apperr.Internal("request scope missing", nil)
		}
		return h(c, scope)
	}
}

func currentUser(scope *session.Scope) error {
	if scope.User == nil {
		return apperr.PermissionDenied("Insufficient privileges")
	}
	return nil
}
