package middleware

import (
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Check inspects the request scope and returns an error to stop it.
type Check func(c *fiber.Ctx, scope *session.Scope) error

// Guard runs checks in order and stops at the first failure.
func Guard(checks ...Check) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scope := session.From(c)
		if scope == nil {
			return apperr.Internal("request scope missing", nil)
		}
		for _, check := range checks {
			if err := check(c, scope); err != nil {
				return err
			}
		}
		return c.Next()
	}
}

func RequireActiveUser(_ *fiber.Ctx, scope *session.Scope) error {
	if scope.User == nil || !scope.User.IsActive {
		return apperr.PermissionDenied("Insufficient privileges")
	}
	return nil
}

func RequireSuperuser(c *fiber.Ctx, scope *session.Scope) error {
	if err := RequireActiveUser(c, scope); err != nil {
		return err
	}
	if !scope.User.IsSuperuser {
		return apperr.PermissionDenied("Insufficient privileges")
	}
	return nil
}

// RequireEventOwnership admits superusers and the owner of the event named by
// the route parameter.
func RequireEventOwnership(param string) Check {
	return func(c *fiber.Ctx, scope *session.Scope) error {
		if err := RequireActiveUser(c, scope); err != nil {
			return err
		}
		if scope.User.IsSuperuser {
			return nil
		}
		id, err := uuid.Parse(c.Params(param))
		if err != nil {
			return apperr.Validation("Invalid input", map[string]string{param: "must be a UUID"})
		}
		owner, err := scope.Services.Events.IsOwner(c.UserContext(), id, scope.User.ID)
		if err != nil {
			return err
		}
		if !owner {
			return apperr.PermissionDenied("Insufficient permissions to access event.")
		}
		return nil
	}
}
