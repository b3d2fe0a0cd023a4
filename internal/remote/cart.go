package remote

import (
	"context"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"zonagamer/internal/domain"
	"zonagamer/internal/normalize"
)

// Cart returns the server cart lines of the authenticated user. Totals are
// left to the caller.
func (c *Client) Cart(ctx context.Context) ([]domain.CartItem, error) {
	return c.cartCall(ctx, fiber.MethodGet, "/cart", nil, nil)
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) ([]domain.CartItem, error) {
	body := map[string]any{"productId": productID, "quantity": quantity}
	return c.cartCall(ctx, fiber.MethodPost, "/cart/add", nil, body)
}

func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) ([]domain.CartItem, error) {
	q := url.Values{"quantity": {strconv.Itoa(quantity)}}
	return c.cartCall(ctx, fiber.MethodPut, "/cart/items/"+url.PathEscape(productID), q, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, productID string) ([]domain.CartItem, error) {
	return c.cartCall(ctx, fiber.MethodDelete, "/cart/items/"+url.PathEscape(productID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, fiber.MethodDelete, "/cart", nil, nil, nil)
}

func (c *Client) cartCall(ctx context.Context, method, path string, q url.Values, body any) ([]domain.CartItem, error) {
	var raw any
	if err := c.do(ctx, method, path, q, body, &raw); err != nil {
		return nil, err
	}
	return normalize.CartItems(raw), nil
}
