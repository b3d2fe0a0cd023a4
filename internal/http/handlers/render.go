package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"zonagamer/internal/domain"
	applog "zonagamer/internal/log"
	"zonagamer/internal/services"
)

const friendlyError = "Something went wrong. Please try again."

// fail maps a service error to a JSON answer. Only validation messages
// reach the client verbatim.
func fail(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		applog.Info(c, action+".invalid", map[string]any{"reason": err.Error()})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, domain.ErrBadCreds):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	case errors.Is(err, domain.ErrEmptyCart):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "cart empty"})
	case errors.Is(err, domain.ErrRemoteUnavailable):
		applog.Error(c, action+".upstream", err, nil)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "store service unavailable, retry soon"})
	}
	applog.Error(c, action+".fail", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": friendlyError})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// live answers with the current value of a reconciled read. With ?fresh=1
// it first waits up to wait for the remote attempt.
func live[T any](c *fiber.Ctx, l *services.Live[T], wait time.Duration) error {
	var (
		v   T
		src services.Source
	)
	if c.Query("fresh") == "1" && wait > 0 {
		ctx, cancel := context.WithTimeout(c.UserContext(), wait)
		v, src = l.Wait(ctx)
		cancel()
	} else {
		v, src = l.Get()
	}
	return source(c, src).JSON(v)
}

func source(c *fiber.Ctx, src services.Source) *fiber.Ctx {
	if src != services.SourceNone {
		c.Set("X-Data-Source", string(src))
	}
	return c
}
