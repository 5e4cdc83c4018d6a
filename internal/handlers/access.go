package handlers

import (
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// AccessHandler covers login, signup and the caller's own profile.
type AccessHandler struct {
	tokens *auth.Tokens
}

func NewAccessHandler(tokens *auth.Tokens) *AccessHandler {
	return &AccessHandler{tokens: tokens}
}

// Login exchanges form-encoded or JSON credentials for a bearer token.
func (h *AccessHandler) Login(c *fiber.Ctx, scope *session.Scope) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := scope.Services.Users.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	token, err := h.tokens.Issue(user.Email)
	if err != nil {
		return err
	}

	return c.JSON(dto.TokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
	})
}

func (h *AccessHandler) Signup(c *fiber.Ctx, scope *session.Scope) error {
	var req dto.SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := scope.Services.Users.CreateUser(c.UserContext(), req.Fields())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(scope.Services.Users.ToDTO(user))
}

func (h *AccessHandler) Profile(c *fiber.Ctx, scope *session.Scope) error {
	if err := currentUser(scope); err != nil {
		return err
	}
	return c.JSON(scope.Services.Users.ToDTO(scope.User))
}

func (h *AccessHandler) UpdatePassword(c *fiber.Ctx, scope *session.Scope) error {
	if err := currentUser(scope); err != nil {
		return err
	}

	var req dto.PasswordUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := scope.Services.Users.UpdatePassword(c.UserContext(), scope.User, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}

	return c.JSON(scope.Services.Users.ToDTO(user))
}
