package handlers

import (
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type EventHandler struct{}

func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// List returns every event, narrowed to one owner with ?userId=.
func (h *EventHandler) List(c *fiber.Ctx, scope *session.Scope) error {
	filters, err := collectionFilters(c, eventOrder)
	if err != nil {
		return err
	}
	if raw := c.Query("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return apperr.Validation("Invalid query parameters", map[string]string{"userId": "must be a UUID"})
		}
		filters = append(filters, repository.Equal{Column: "user_id", Value: userID})
	}

	events, total, err := scope.Services.Events.ListAndCount(c.UserContext(), filters...)
	if err != nil {
		return err
	}

	return c.JSON(scope.Services.Events.ToPage(events, total, filters...))
}

func (h *EventHandler) Get(c *fiber.Ctx, scope *session.Scope) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	ev, err := scope.Services.Events.Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(scope.Services.Events.ToDTO(ev))
}

// Create stores an event owned by the caller.
func (h *EventHandler) Create(c *fiber.Ctx, scope *session.Scope) error {
	if err := currentUser(scope); err != nil {
		return err
	}

	var req dto.EventCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ev, err := scope.Services.Events.Create(c.UserContext(), services.Fields{
		"message": req.Message,
		"user_id": scope.User.ID,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(scope.Services.Events.ToDTO(ev))
}

func (h *EventHandler) Update(c *fiber.Ctx, scope *session.Scope) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.EventUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ev, err := scope.Services.Events.Update(c.UserContext(), id, services.Fields{"message": req.Message})
	if err != nil {
		return err
	}

	return c.JSON(scope.Services.Events.ToDTO(ev))
}

func (h *EventHandler) Delete(c *fiber.Ctx, scope *session.Scope) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if _, err := scope.Services.Events.Delete(c.UserContext(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
