package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"mediaapi/internal/model"
	"mediaapi/internal/service"
)

// envelope names the JSON keys a catalog response is wrapped in.
type envelope struct {
	list string
	item string
}

var (
	catalogEnvelope = envelope{list: "items", item: "item"}
	invalidBody     = &service.ValidationError{Message: "Invalid JSON body"}
)

// legacyEnvelope keeps the key names older clients read ("reels", "reel").
func legacyEnvelope(kind model.Kind) envelope {
	return envelope{list: string(kind), item: kind.Singular()}
}

// ListCatalog godoc
// @Summary      List catalog records
// @Description  Newest first, at most 100 records. category filters by exact tag.
// @Tags         catalog
// @Produce      json
// @Param        kind      path   string  true   "reels or stories"
// @Param        category  query  string  false  "Tag filter"
// @Success      200  {object}  map[string][]model.Reel
// @Failure      404  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /catalog/{kind} [get]
func ListCatalog(svc service.CatalogService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, ok := model.ParseKind(c.Params("kind"))
		if !ok {
			return fiber.ErrNotFound
		}
		return listKind(c, svc, log, kind, catalogEnvelope)
	}
}

// CreateCatalog godoc
// @Summary      Create a catalog record
// @Description  Reels require title, thumbnail and video. Stories require a title only.
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        kind  path  string                     true  "reels or stories"
// @Param        body  body  model.CreateStoryRequest  true  "Record fields"
// @Success      201  {object}  map[string]model.Story
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /catalog/{kind} [post]
func CreateCatalog(svc service.CatalogService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, ok := model.ParseKind(c.Params("kind"))
		if !ok {
			return fiber.ErrNotFound
		}
		return createKind(c, svc, log, kind, catalogEnvelope)
	}
}

// ListLegacy serves the fixed-kind listing routes under /api.
func ListLegacy(kind model.Kind, svc service.CatalogService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return listKind(c, svc, log, kind, legacyEnvelope(kind))
	}
}

// CreateLegacy serves the fixed-kind create routes under /api.
func CreateLegacy(kind model.Kind, svc service.CatalogService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return createKind(c, svc, log, kind, legacyEnvelope(kind))
	}
}

func listKind(c *fiber.Ctx, svc service.CatalogService, log *zap.Logger, kind model.Kind, env envelope) error {
	ctx := c.UserContext()
	category := c.Query("category")

	var (
		items any
		err   error
	)
	switch kind {
	case model.KindStories:
		items, err = svc.ListStories(ctx, category)
	default:
		items, err = svc.ListReels(ctx, category)
	}
	if err != nil {
		return respondError(c, log, err)
	}
	return c.JSON(fiber.Map{env.list: items})
}

func createKind(c *fiber.Ctx, svc service.CatalogService, log *zap.Logger, kind model.Kind, env envelope) error {
	ctx := c.UserContext()
	body := c.Body()

	var (
		created any
		err     error
	)
	switch kind {
	case model.KindStories:
		var req model.CreateStoryRequest
		if jsonErr := json.Unmarshal(body, &req); jsonErr != nil {
			return respondError(c, log, invalidBody)
		}
		created, err = svc.CreateStory(ctx, req)
	default:
		var req model.CreateReelRequest
		if jsonErr := json.Unmarshal(body, &req); jsonErr != nil {
			return respondError(c, log, invalidBody)
		}
		created, err = svc.CreateReel(ctx, req)
	}
	if err != nil {
		return respondError(c, log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{env.item: created})
}
