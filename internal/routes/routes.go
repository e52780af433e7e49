package routes

import (
	"time"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/handlers"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(
	app *fiber.App,
	healthHandler *handlers.HealthHandler,
	profileHandler *handlers.ProfileHandler,
	platformHandler *handlers.PlatformHandler,
) {
	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Profiles
	api.Get("/profiles", profileHandler.List)
	api.Get("/profiles/username/:username", profileHandler.GetByUsername)
	api.Get("/profiles/:id", profileHandler.Get)
	api.Get("/profiles/:id/events", profileHandler.ListEvents)
	api.Get("/profiles/:id/followers", profileHandler.ListFollowers)
	api.Get("/profiles/:id/following", profileHandler.ListFollowing)
	api.Get("/profiles/:id/blocks", profileHandler.ListBlocks)

	// Platforms
	api.Get("/platforms", platformHandler.List)
	api.Get("/platforms/:id", platformHandler.Get)
	api.Get("/platforms/:id/moderators", platformHandler.ListModerators)
	api.Get("/platforms/:id/members", platformHandler.ListMembers)
	api.Get("/platforms/:id/events", platformHandler.ListEvents)
}
