package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/auth"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/crud-backend/internal/session"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Deps is everything the route table needs from the process.
type Deps struct {
	Config *config.Config
	Tokens *auth.Tokens
	Opener session.Opener
	Build  services.Builder
	Ping   handlers.Pinger
}

// NewApp builds the fiber app with the global middleware stack and every
// route mounted.
func NewApp(d Deps) *fiber.App {
	bodyLimit := d.Config.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 4 * 1024 * 1024
	}
	app := fiber.New(fiber.Config{
		AppName:      d.Config.AppName,
		BodyLimit:    bodyLimit,
		ErrorHandler: handlers.ErrorHandler,
	})

	if d.Config.SentryDSN != "" {
		app.Use(sentryfiber.New(sentryfiber.Options{
			Repanic:         true,
			WaitForDelivery: false,
		}))
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(d.Config))
	app.Use(middleware.SecurityHeaders())
	if d.Config.MetricsEnabled {
		app.Use(middleware.Metrics())
	}

	Setup(app, d)
	return app
}

func Setup(app *fiber.App, d Deps) {
	cfg := d.Config
	health := handlers.NewHealthHandler(cfg.AppName, cfg.Version, d.Ping, cfg.DBPoolTimeout)
	access := handlers.NewAccessHandler(d.Tokens)
	accounts := handlers.NewAccountHandler()
	events := handlers.NewEventHandler()
	kv := handlers.NewKVHandler()

	// No database session for these two.
	app.Get("/health", health.Check)
	if cfg.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	}

	api := app.Group("/api",
		session.Middleware(d.Opener, d.Build, cfg.RequestTimeout),
		middleware.Authenticate(d.Tokens, middleware.ExcludedPaths(cfg)),
	)

	// Login rate limit per IP
	loginLimit := cfg.LoginRateLimit
	if loginLimit <= 0 {
		loginLimit = 10
	}
	api.Post("/access/login", limiter.New(limiter.Config{
		Max:               loginLimit,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many login attempts")
		},
	}), handlers.Scoped(access.Login))
	api.Post("/access/signup", handlers.Scoped(access.Signup))

	active := middleware.Guard(middleware.RequireActiveUser)
	api.Get("/me", active, handlers.Scoped(access.Profile))
	api.Patch("/me/password", active, handlers.Scoped(access.UpdatePassword))

	users := api.Group("/users", middleware.Guard(middleware.RequireSuperuser))
	users.Get("/", handlers.Scoped(accounts.List))
	users.Post("/", handlers.Scoped(accounts.Create))
	users.Get("/:id", handlers.Scoped(accounts.Get))
	users.Patch("/:id", handlers.Scoped(accounts.Update))
	users.Delete("/:id", handlers.Scoped(accounts.Delete))

	owner := middleware.Guard(middleware.RequireEventOwnership("id"))
	ev := api.Group("/events", active)
	ev.Get("/", handlers.Scoped(events.List))
	ev.Post("/", handlers.Scoped(events.Create))
	ev.Get("/:id", owner, handlers.Scoped(events.Get))
	ev.Patch("/:id", owner, handlers.Scoped(events.Update))
	ev.Delete("/:id", owner, handlers.Scoped(events.Delete))

	// Open unless AUTH_EXCLUDE_KV is off.
	kvGroup := api.Group("/kv")
	if !cfg.AuthExcludeKV {
		kvGroup.Use(active)
	}
	kvGroup.Get("/", handlers.Scoped(kv.List))
	kvGroup.Post("/", handlers.Scoped(kv.Create))
	kvGroup.Get("/:key", handlers.Scoped(kv.Get))
	kvGroup.Patch("/:key", handlers.Scoped(kv.Update))
	kvGroup.Delete("/:key", handlers.Scoped(kv.Delete))
}
