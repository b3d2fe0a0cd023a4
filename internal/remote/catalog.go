package remote

import (
	"context"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"zonagamer/internal/domain"
	"zonagamer/internal/normalize"
)

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var raw any
	if err := c.do(ctx, fiber.MethodGet, "/products", nil, nil, &raw); err != nil {
		return nil, err
	}
	return normalize.Products(raw), nil
}

// FetchProducts lets the client seed a local product collection.
func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) { return c.Products(ctx) }

func (c *Client) Product(ctx context.Context, id string) (domain.Product, error) {
	var rec normalize.Record
	if err := c.do(ctx, fiber.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &rec); err != nil {
		return domain.Product{}, err
	}
	if rec == nil {
		return domain.Product{}, &APIError{Status: fiber.StatusNotFound, Message: "empty product"}
	}
	return normalize.Product(rec), nil
}

func (c *Client) SearchProducts(ctx context.Context, term string) ([]domain.Product, error) {
	var raw any
	q := url.Values{"q": {term}}
	if err := c.do(ctx, fiber.MethodGet, "/products/search", q, nil, &raw); err != nil {
		return nil, err
	}
	return normalize.Products(raw), nil
}

var categoryKey = normalize.Keys("categoriaId", "id", "categoryId", "_id")

// Categories composes the tree from the root listing and one children call
// per node. A node seen twice on the same branch, or deeper than
// normalize.MaxCategoryDepth, is not expanded. A failed children call
// leaves that node as a leaf.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var roots any
	if err := c.do(ctx, fiber.MethodGet, "/categorias/root", nil, nil, &roots); err != nil {
		return nil, err
	}
	nodes := c.expand(ctx, normalize.List(roots), 1, map[string]bool{})
	return normalize.CategoryTree(nodes), nil
}

// FetchCategories lets the client seed a local category store.
func (c *Client) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	return c.Categories(ctx)
}

func (c *Client) expand(ctx context.Context, nodes []normalize.Record, depth int, path map[string]bool) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		node := normalize.Record{}
		for k, v := range n {
			node[k] = v
		}
		id, ok := normalize.OptionalString(n, categoryKey...)
		if !ok || path[id] || depth >= normalize.MaxCategoryDepth || ctx.Err() != nil {
			out = append(out, node)
			continue
		}
		var children any
		if err := c.do(ctx, fiber.MethodGet, "/categorias/"+url.PathEscape(id)+"/hija", nil, nil, &children); err == nil {
			path[id] = true
			delete(node, "subcategories")
			delete(node, "subcategorias")
			node["children"] = c.expand(ctx, normalize.List(children), depth+1, path)
			delete(path, id)
		}
		out = append(out, node)
	}
	return out
}
