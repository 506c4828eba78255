package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/handhelddb/backend/internal/authz"
	"github.com/handhelddb/backend/internal/config"
	"github.com/handhelddb/backend/internal/handlers"
	"github.com/handhelddb/backend/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	gate *authz.Gate,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	catalogHandler *handlers.CatalogHandler,
	reportHandler *handlers.ReportHandler,
	voteHandler *handlers.VoteHandler,
	proofHandler *handlers.ProofHandler,
) {
	// Signed proof URLs live outside /api: auth is the signature itself.
	app.Get("/proofs/*", proofHandler.Serve)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health
	api.Get("/health", healthHandler.Check)

	// Auth — public, with a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)
	api.Get("/auth/me", middleware.JWTProtected(cfg), authHandler.Me)

	// Catalog — public reads
	api.Get("/devices", catalogHandler.ListDevices)
	api.Get("/games", catalogHandler.ListGames)
	api.Get("/games/:slug", catalogHandler.GetGame)
	api.Post("/games", middleware.SameOrigin(cfg), middleware.JWTProtected(cfg), catalogHandler.CreateGame)

	// Reports
	api.Post("/reports", middleware.SameOrigin(cfg), middleware.JWTProtected(cfg), reportHandler.Submit)
	api.Get("/profile/reports", middleware.JWTProtected(cfg), reportHandler.MyReports)

	// Voting — same-origin guarded mutations
	api.Post("/reports/:id/vote", middleware.SameOrigin(cfg), middleware.JWTProtected(cfg), voteHandler.Cast)
	api.Delete("/reports/:id/vote", middleware.SameOrigin(cfg), middleware.JWTProtected(cfg), voteHandler.Retract)
	api.Get("/votes", middleware.JWTProtected(cfg), voteHandler.MyVotes)

	// Proof signing (identity optional: verified-report proofs are public)
	api.Get("/proofs/sign", middleware.JWTOptional(cfg), proofHandler.Sign)

	// Admin moderation (protected + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(gate, cfg))
	admin.Get("/reports", reportHandler.PendingQueue)
	admin.Post("/reports/:id/approve", middleware.SameOrigin(cfg), reportHandler.Approve)
	admin.Post("/reports/:id/reject", middleware.SameOrigin(cfg), reportHandler.Reject)
}
