package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Handlers struct {
	Greeting *GreetingHandler
	History  *HistoryHandler
	Mint     *MintHandler
}

// BuildInfo is reported by /health.
type BuildInfo struct {
	Version string
	Env     string
}

func SetupRouter(app *fiber.App, h Handlers, info BuildInfo) {
	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Festify API server is running")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"version": info.Version,
			"env":     info.Env,
		})
	})

	api := app.Group("/api")
	api.Post("/generate-greeting", h.Greeting.HandleGenerate)
	api.Post("/mint-dat", h.Mint.MintDAT)
	api.Get("/designs", h.Mint.Designs)

	nft := api.Group("/nft")
	nft.Post("/image", h.Mint.UploadImage)
	nft.Post("/metadata", h.Mint.PublishMetadata)

	greetings := api.Group("/greetings")
	greetings.Get("/", h.History.List)
	greetings.Post("/", h.History.Create)
	greetings.Get("/similar", h.History.Similar)
	greetings.Patch("/:id/status", h.History.UpdateStatus)
	greetings.Delete("/:id", h.History.Delete)
}
