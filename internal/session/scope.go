package session

import (
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const scopeKey = "session.scope"

// Scope is the request context handed to handlers: the open session, the
// services bound to it and the authenticated user, if any.
type Scope struct {
	Session  Session
	Services *services.Set
	User     *models.User
}

// From returns the scope installed by Middleware, or nil.
func From(c *fiber.Ctx) *Scope {
	s, _ := c.Locals(scopeKey).(*Scope)
	return s
}

func attach(c *fiber.Ctx, s *Scope) {
	c.Locals(scopeKey, s)
}
