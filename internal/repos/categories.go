package repos

import (
	"context"

	"zonagamer/internal/domain"
	"zonagamer/internal/normalize"
)

const CategoriesKey = "categories_local"

// CategorySource supplies the initial category tree.
type CategorySource interface {
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryStore is the read-only local category tree.
type CategoryStore struct {
	c *collection[domain.Category]
}

func NewCategoryStore(kv KeyValueStore, source CategorySource, opts ...Option) *CategoryStore {
	o := buildOptions(opts)
	return &CategoryStore{c: &collection[domain.Category]{
		kv:      kv,
		key:     CategoriesKey,
		decode:  decodeCategory,
		seed:    source.FetchCategories,
		latency: o.latency,
	}}
}

func decodeCategory(r normalize.Record) domain.Category {
	tree := normalize.CategoryTree([]normalize.Record{r})
	if len(tree) == 0 {
		return domain.Category{Children: []domain.Category{}}
	}
	return tree[0]
}

func (s *CategoryStore) State() InitState { return s.c.State() }

func (s *CategoryStore) GetAll(ctx context.Context) ([]domain.Category, error) { return s.c.load(ctx) }
