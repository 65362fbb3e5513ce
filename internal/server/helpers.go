package server

import (
	"strconv"
	"strings"
	"time"

	"eventhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

// MessageResponse is a plain confirmation body.
type MessageResponse struct {
	Message string `json:"message"`
}

// eventDateLayouts are the accepted spellings of an event date, tried in order.
var eventDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseID extracts a route parameter as an unsigned integer.
// The error message names the resource (e.g. "Invalid user ID").
func parseID(c *fiber.Ctx, param, resource string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Params(param)), 10, 32)
	if err != nil {
		return 0, models.NewInvalidArgumentError("Invalid " + resource + " ID")
	}
	return uint(id), nil
}

// bindJSON parses the request body into dst.
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return models.NewInvalidArgumentError("Invalid request body")
	}
	return nil
}

// parseEventDate returns nil for an empty string.
func parseEventDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, models.NewValidationError("Validation failed", "Invalid event date")
}
