package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/session"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const tokenKey = "jwt"

// ExcludedPaths lists the routes that never look at the bearer token.
func ExcludedPaths(cfg *config.Config) []string {
	paths := []string{
		"/api/access/login",
		"/api/access/signup",
		"/health",
		"/metrics",
		"/schema",
	}
	if cfg.AuthExcludeKV {
		paths = append(paths, "/api/kv")
	}
	return paths
}

// Authenticate resolves the bearer token into the scope's user. A missing,
// malformed or expired token, or an inactive account, leaves the request
// anonymous; the guards decide what anonymous callers may do.
func Authenticate(tokens *auth.Tokens, excluded []string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		Filter: func(c *fiber.Ctx) bool {
			return isExcluded(c.Path(), excluded)
		},
		ContextKey: tokenKey,
		Claims:     &jwt.RegisteredClaims{},
		KeyFunc:    tokens.Keyfunc(),
		SuccessHandler: func(c *fiber.Ctx) error {
			if err := resolveUser(c); err != nil {
				return err
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			return c.Next()
		},
	})
}

func resolveUser(c *fiber.Ctx) error {
	scope := session.From(c)
	if scope == nil {
		return nil
	}
	token, ok := c.Locals(tokenKey).(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil
	}
	user, err := scope.Services.Users.GetByEmail(c.UserContext(), claims.Subject)
	if err != nil {
		return err
	}
	if user != nil && user.IsActive {
		scope.User = user
	}
	return nil
}

func isExcluded(path string, excluded []string) bool {
	path = strings.TrimSuffix(path, "/")
	for _, p := range excluded {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
