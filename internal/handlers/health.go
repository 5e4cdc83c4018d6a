package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// Pinger checks database reachability.
type Pinger func(ctx context.Context) error

const defaultPingTimeout = 5 * time.Second

type HealthHandler struct {
	app     string
	version string
	ping    Pinger
	timeout time.Duration
}

// NewHealthHandler builds the health endpoint. A ping that outlives timeout
// reports the database offline.
func NewHealthHandler(app, version string, ping Pinger, timeout time.Duration) *HealthHandler {
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	return &HealthHandler{app: app, version: version, ping: ping, timeout: timeout}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "online"
	code := fiber.StatusOK
	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()
	if err := h.ping(ctx); err != nil {
		slog.Warn("health check failed", "database_status", "offline", "error", err)
		status = "offline"
		code = fiber.StatusInternalServerError
	}

	return c.Status(code).JSON(dto.HealthResponse{
		App:            h.app,
		Version:        h.version,
		DatabaseStatus: status,
	})
}
