package handlers

import (
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// AccountHandler is the superuser view of every account.
type AccountHandler struct{}

func NewAccountHandler() *AccountHandler {
	return &AccountHandler{}
}

func (h *AccountHandler) List(c *fiber.Ctx, scope *session.Scope) error {
	filters, err := collectionFilters(c, userOrder)
	if err != nil {
		return err
	}

	users, total, err := scope.Services.Users.ListAndCount(c.UserContext(), filters...)
	if err != nil {
		return err
	}

	return c.JSON(scope.Services.Users.ToPage(users, total, filters...))
}

func (h *AccountHandler) Get(c *fiber.Ctx, scope *session.Scope) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	user, err := scope.Services.Users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(scope.Services.Users.ToDTO(user))
}

func (h *AccountHandler) Create(c *fiber.Ctx, scope *session.Scope) error {
	var req dto.UserCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := scope.Services.Users.CreateUser(c.UserContext(), req.Fields())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(scope.Services.Users.ToDTO(user))
}

func (h *AccountHandler) Update(c *fiber.Ctx, scope *session.Scope) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.UserUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := scope.Services.Users.Update(c.UserContext(), id, req.Fields())
	if err != nil {
		return err
	}

	return c.JSON(scope.Services.Users.ToDTO(user))
}

func (h *AccountHandler) Delete(c *fiber.Ctx, scope *session.Scope) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if _, err := scope.Services.Users.Delete(c.UserContext(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
