// Package remote is the JSON client for the storefront REST API.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"zonagamer/internal/domain"
)

// LocalToken marks a session authenticated against the local user store.
// It is never sent upstream.
const LocalToken = "local-token"

const DefaultTimeout = 10 * time.Second

var jwtShape = regexp.MustCompile(`^[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+\.[A-Za-z0-9-_]+$`)

// IsServerToken reports whether tok looks like a JWT issued by the API.
func IsServerToken(tok string) bool {
	return tok != "" && tok != LocalToken && jwtShape.MatchString(tok)
}

// APIError is a non-2xx answer. It matches domain.ErrRemoteUnavailable.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote api: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return domain.ErrRemoteUnavailable }

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL string
	timeout time.Duration
	token   string
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

// WithToken returns a copy that authenticates as tok. Tokens that are not
// JWT-shaped are dropped.
func (c *Client) WithToken(tok string) *Client {
	cp := *c
	cp.token = ""
	if IsServerToken(tok) {
		cp.token = tok
	}
	return &cp
}

func (c *Client) BaseURL() string { return c.baseURL }

// do sends one request. A 204 leaves out untouched.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(domain.ErrRemoteUnavailable, err.Error())
	}
	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}

	uri := c.baseURL + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+c.token)
	}
	if body != nil {
		a.JSON(body)
	}
	a.Timeout(timeout)
	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return errors.Wrapf(domain.ErrRemoteUnavailable, "%s %s: %v", method, path, err)
	}

	status, resp, errs := a.Bytes()
	if len(errs) > 0 {
		return errors.Wrapf(domain.ErrRemoteUnavailable, "%s %s: %v", method, path, errs[0])
	}
	if status < 200 || status > 299 {
		return &APIError{Status: status, Message: errorMessage(resp)}
	}
	if status == fiber.StatusNoContent || out == nil || len(resp) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return errors.Wrapf(domain.ErrRemoteUnavailable, "%s %s: decode: %v", method, path, err)
	}
	return nil
}

func errorMessage(body []byte) string {
	var m struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &m) == nil && m.Message != "" {
		return m.Message
	}
	return "request failed"
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, fiber.MethodGet, "/health", nil, nil, nil)
}
