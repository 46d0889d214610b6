package routes

import (
	"imdb-catalog/internal/handlers"

	"github.com/gofiber/fiber/v2"
)

// Setup registers the API. persistedHandler is nil when persisted queries
// are disabled; rateLimiter only guards query execution.
func Setup(app *fiber.App, queryHandler *handlers.QueryHandler, persistedHandler *handlers.PersistedQueryHandler, rateLimiter fiber.Handler) {
	// GraphQL clients expect the unversioned endpoint
	app.Post("/imdb", rateLimiter, queryHandler.ExecuteQuery)

	// API versioning
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Query routes
	v1.Get("/query", queryHandler.ExampleQuery)
	v1.Post("/query", rateLimiter, queryHandler.ExecuteQuery)
	v1.Get("/schema", queryHandler.GetSchema)

	// Persisted query management
	if persistedHandler != nil {
		queries := v1.Group("/queries")
		{
			queries.Put("/:id", persistedHandler.StoreQuery)
			queries.Get("/:id/presign", persistedHandler.GetPresignedURL)
		}
	}
}
