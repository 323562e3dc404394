package server

import (
	"strconv"

	"discusshub/internal/models"
	"discusshub/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// parseID reads the named route parameter as an unsigned integer. A malformed
// value is reported as a not-found resource, matching how an unknown ID reads.
func parseID(c *fiber.Ctx, name, resource string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, models.NewNotFoundError(resource, raw)
	}
	return uint(id), nil
}

// fail records the error on the active span and writes the response mapped
// from the error's taxonomy.
func fail(c *fiber.Ctx, err error) error {
	observability.RecordErrorInContext(c.UserContext(), err)
	return models.RespondWithError(c, models.HTTPStatus(err), err)
}
