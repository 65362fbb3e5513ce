package middleware

import (
	"context"
	"log/slog"

	"eventhub/internal/models"
	"eventhub/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// FailPolicy defines the behavior when the event counter cannot be read.
type FailPolicy int

const (
	// FailClosed answers 500 when the limit cannot be evaluated.
	FailClosed FailPolicy = iota
	// FailOpen lets the request proceed when the limit cannot be evaluated.
	FailOpen
)

// EventLimitChecker decides whether a user may create another event now.
// It returns nil to allow, a rate-limited AppError to deny, or any other error on failure.
type EventLimitChecker interface {
	Check(ctx context.Context, userID uint) error
}

// EventLimit returns a Fiber middleware that rejects event creation once the
// creator named in the body has reached the daily quota.
func EventLimit(limiter EventLimitChecker) fiber.Handler {
	return EventLimitWithPolicy(limiter, FailClosed)
}

// EventLimitWithPolicy is EventLimit with an explicit failure policy.
func EventLimitWithPolicy(limiter EventLimitChecker, policy FailPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			CreatedBy uint `json:"createdBy"`
		}
		// Malformed or creator-less bodies are reported by the handler's own validation.
		if err := c.BodyParser(&req); err != nil || req.CreatedBy == 0 {
			return c.Next()
		}

		err := limiter.Check(c.UserContext(), req.CreatedBy)
		if err == nil {
			return c.Next()
		}

		if models.IsKind(err, models.KindRateLimited) {
			observability.EventLimitDenials.Inc()
			Logger.WarnContext(c.UserContext(), "event limit reached",
				slog.Uint64("user_id", uint64(req.CreatedBy)))
			return models.RespondWithError(c, err)
		}

		Logger.ErrorContext(c.UserContext(), "event limit check failed",
			slog.Uint64("user_id", uint64(req.CreatedBy)),
			slog.String("error", err.Error()))
		if policy == FailOpen {
			return c.Next()
		}
		return models.RespondWithError(c, err)
	}
}
