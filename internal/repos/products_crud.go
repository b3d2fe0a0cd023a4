package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"zonagamer/internal/domain"
	"zonagamer/internal/normalize"
)

const (
	ProductsKey         = "products_local"
	PlaceholderImageURL = "https://via.placeholder.com/300"
)

// ProductsCRUD is the admin-editable product collection.
type ProductsCRUD struct {
	c      *collection[domain.Product]
	source ProductSource
	now    func() time.Time
}

func NewProductsCRUD(kv KeyValueStore, source ProductSource, opts ...Option) *ProductsCRUD {
	o := buildOptions(opts)
	return &ProductsCRUD{
		c: &collection[domain.Product]{
			kv:      kv,
			key:     ProductsKey,
			decode:  normalize.Product,
			seed:    source.FetchProducts,
			latency: o.latency,
		},
		source: source,
		now:    o.now,
	}
}

func (r *ProductsCRUD) State() InitState { return r.c.State() }

func (r *ProductsCRUD) Initialize(ctx context.Context) error { return r.c.initialize(ctx) }

func (r *ProductsCRUD) GetAll(ctx context.Context) ([]domain.Product, error) { return r.c.load(ctx) }

func (r *ProductsCRUD) GetByID(ctx context.Context, id string) (domain.Product, error) {
	all, err := r.c.load(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, errors.Wrapf(domain.ErrNotFound, "product %s", id)
}

// Create stores a new product. Unset fields take the catalog defaults.
func (r *ProductsCRUD) Create(ctx context.Context, in domain.ProductPatch) (domain.Product, error) {
	all, err := r.c.load(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	p := domain.Product{
		ID:        uuid.NewString(),
		ImageURL:  PlaceholderImageURL,
		CreatedAt: r.now().UTC().Format(time.RFC3339),
	}
	applyProductPatch(&p, in)
	if p.ImageURL == "" {
		p.ImageURL = PlaceholderImageURL
	}
	if err := r.c.write(append(all, p)); err != nil {
		return domain.Product{}, errors.Wrap(err, "create product")
	}
	return p, nil
}

func (r *ProductsCRUD) Update(ctx context.Context, id string, patch domain.ProductPatch) (domain.Product, error) {
	all, err := r.c.load(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		applyProductPatch(&all[i], patch)
		all[i].UpdatedAt = r.now().UTC().Format(time.RFC3339)
		if err := r.c.write(all); err != nil {
			return domain.Product{}, errors.Wrap(err, "update product")
		}
		return all[i], nil
	}
	return domain.Product{}, errors.Wrapf(domain.ErrNotFound, "product %s", id)
}

func (r *ProductsCRUD) Delete(ctx context.Context, id string) error {
	all, err := r.c.load(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	for _, p := range all {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(all) {
		return errors.Wrapf(domain.ErrNotFound, "product %s", id)
	}
	return errors.Wrap(r.c.write(kept), "delete product")
}

func (r *ProductsCRUD) Stats(ctx context.Context) (domain.ProductStats, error) {
	all, err := r.c.load(ctx)
	if err != nil {
		return domain.ProductStats{}, err
	}
	var s domain.ProductStats
	s.Total = len(all)
	for _, p := range all {
		s.TotalStock += p.Stock
		// out-of-stock products count as low stock too
		if p.Stock == 0 {
			s.OutOfStock++
		}
		if p.Stock < domain.LowStockThreshold {
			s.LowStock++
		}
	}
	return s, nil
}

// Reset replaces the stored collection with a fresh copy from the source.
func (r *ProductsCRUD) Reset(ctx context.Context) ([]domain.Product, error) {
	items, err := r.source.FetchProducts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reset products")
	}
	if err := r.c.write(items); err != nil {
		return nil, errors.Wrap(err, "reset products")
	}
	r.c.state.Store(int32(Ready))
	return r.c.read(), nil
}

func applyProductPatch(p *domain.Product, in domain.ProductPatch) {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil && *in.Price >= 0 {
		p.Price = *in.Price
	}
	if in.ImageURL != nil && *in.ImageURL != "" {
		p.ImageURL = *in.ImageURL
	}
	if in.CategoryID != nil {
		if *in.CategoryID == "" {
			p.CategoryID = nil
		} else {
			id := *in.CategoryID
			p.CategoryID = &id
		}
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.Stock != nil && *in.Stock >= 0 {
		p.Stock = *in.Stock
	}
}
