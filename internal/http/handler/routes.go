package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"mediaapi/internal/http/middleware"
	"mediaapi/internal/model"
	"mediaapi/internal/service"
)

// Dependencies are the collaborators the HTTP layer needs.
type Dependencies struct {
	Links   service.LinkService
	Catalog service.CatalogService
	Health  Pinger
	Log     *zap.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// HEAD routes are registered before GET so fiber does not route HEAD to the
// GET handler.
func RegisterRoutes(app *fiber.App, d Dependencies) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	app.Get("/", IndexPage())
	app.Get("/test", TestPage())

	app.Get("/health", HealthCheck(d.Health, log))
	app.Get("/healthz", LivenessProbe())

	issue := IssueLink(d.Links, log)
	for _, path := range []string{"/links", "/api/getPlayableLink"} {
		app.Options(path, middleware.NoContent)
		app.Head(path, middleware.NoContent)
		app.Get(path, issue)
	}

	app.Options("/catalog/:kind", middleware.NoContent)
	app.Get("/catalog/:kind", ListCatalog(d.Catalog, log))
	app.Post("/catalog/:kind", CreateCatalog(d.Catalog, log))

	api := app.Group("/api")
	for _, kind := range []model.Kind{model.KindReels, model.KindStories} {
		path := "/" + string(kind)
		api.Options(path, middleware.NoContent)
		api.Get(path, ListLegacy(kind, d.Catalog, log))
		api.Post(path, CreateLegacy(kind, d.Catalog, log))
	}
}
