package remote

import (
	"context"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"zonagamer/internal/domain"
	"zonagamer/internal/normalize"
)

// UserAction is an admin toggle exposed by the users API.
type UserAction string

const (
	Promote    UserAction = "promote"
	Revoke     UserAction = "revoke"
	Activate   UserAction = "activate"
	Deactivate UserAction = "deactivate"
)

func (a UserAction) Valid() bool {
	switch a {
	case Promote, Revoke, Activate, Deactivate:
		return true
	}
	return false
}

func (c *Client) Users(ctx context.Context) ([]domain.User, error) {
	var raw any
	if err := c.do(ctx, fiber.MethodGet, "/users", nil, nil, &raw); err != nil {
		return nil, err
	}
	return normalize.Users(raw), nil
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var rec normalize.Record
	if err := c.do(ctx, fiber.MethodGet, "/users/me", nil, nil, &rec); err != nil {
		return domain.User{}, err
	}
	return normalize.User(rec), nil
}

func (c *Client) SetUserFlag(ctx context.Context, id string, action UserAction) error {
	return c.do(ctx, fiber.MethodPut, "/users/"+url.PathEscape(id)+"/"+string(action), nil, nil, nil)
}
