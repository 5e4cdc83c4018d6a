package handlers

import (
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

// KVHandler addresses entries by key in the path.
type KVHandler struct{}

func NewKVHandler() *KVHandler {
	return &KVHandler{}
}

func (h *KVHandler) List(c *fiber.Ctx, scope *session.Scope) error {
	filters, err := collectionFilters(c, kvOrder)
	if err != nil {
		return err
	}

	entries, total, err := scope.Services.KV.ListAndCount(c.UserContext(), filters...)
	if err != nil {
		return err
	}

	return c.JSON(scope.Services.KV.ToPage(entries, total, filters...))
}

func (h *KVHandler) Get(c *fiber.Ctx, scope *session.Scope) error {
	kv, err := scope.Services.KV.GetByKey(c.UserContext(), c.Params("key"))
	if err != nil {
		return err
	}
	return c.JSON(scope.Services.KV.ToDTO(kv))
}

func (h *KVHandler) Create(c *fiber.Ctx, scope *session.Scope) error {
	var req dto.KVCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	kv, err := scope.Services.KV.Create(c.UserContext(), services.Fields{
		"key":   req.Key,
		"value": req.Value,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(scope.Services.KV.ToDTO(kv))
}

func (h *KVHandler) Update(c *fiber.Ctx, scope *session.Scope) error {
	var req dto.KVUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	kv, err := scope.Services.KV.UpdateByKey(c.UserContext(), c.Params("key"), services.Fields{"value": *req.Value})
	if err != nil {
		return err
	}

	return c.JSON(scope.Services.KV.ToDTO(kv))
}

func (h *KVHandler) Delete(c *fiber.Ctx, scope *session.Scope) error {
	if _, err := scope.Services.KV.DeleteByKey(c.UserContext(), c.Params("key")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
