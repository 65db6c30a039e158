package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"mediaapi/internal/model"
	"mediaapi/internal/service"
)

// IssueLink godoc
// @Summary      Issue a signed download link
// @Description  Resolves the key against the bucket (verbatim, then with the bucket prefix stripped or added) and returns a time-limited GET URL.
// @Tags         links
// @Produce      json
// @Param        key  query     string  true   "Object key"
// @Param        ttl  query     number  false  "Lifetime in seconds (default 3600, clamped to 1..86400)"
// @Success      200  {object}  model.SignedLink
// @Failure      400  {object}  errorPayload
// @Failure      404  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Router       /links [get]
func IssueLink(svc service.LinkService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		link, err := svc.Issue(c.UserContext(), model.LinkRequest{
			Key: c.Query("key"),
			TTL: c.Query("ttl"),
		})
		if err != nil {
			return respondError(c, log, err)
		}
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(link)
	}
}
