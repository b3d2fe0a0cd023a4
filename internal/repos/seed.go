package repos

import (
	"context"

	"zonagamer/internal/domain"
)

// ProductSource supplies the initial product set of a ProductsCRUD.
type ProductSource interface {
	FetchProducts(ctx context.Context) ([]domain.Product, error)
}

// ProductSourceFunc adapts a plain function, typically a remote client
// method, to ProductSource.
type ProductSourceFunc func(ctx context.Context) ([]domain.Product, error)

func (f ProductSourceFunc) FetchProducts(ctx context.Context) ([]domain.Product, error) { return f(ctx) }

// BuiltinCatalog is the bundled demo dataset.
type BuiltinCatalog struct{}

func strp(s string) *string { return &s }

func (BuiltinCatalog) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []domain.Product{
		{ID: "1", Name: "PlayStation 5", Description: "Consola Sony de ultima generacion con lector de discos.", Price: 549.99, ImageURL: "/static/img/ps5.jpg", CategoryID: strp("c11"), IsFeatured: true, Stock: 12},
		{ID: "2", Name: "Xbox Series X", Description: "Consola Microsoft 4K con 1TB SSD.", Price: 499.99, ImageURL: "/static/img/xsx.jpg", CategoryID: strp("c12"), IsFeatured: true, Stock: 8},
		{ID: "3", Name: "Nintendo Switch OLED", Description: "Consola hibrida con pantalla OLED de 7 pulgadas.", Price: 349.99, ImageURL: "/static/img/switch.jpg", CategoryID: strp("c13"), Stock: 25},
		{ID: "4", Name: "The Legend of Zelda: Tears of the Kingdom", Description: "Aventura de mundo abierto para Switch.", Price: 69.99, ImageURL: "/static/img/totk.jpg", CategoryID: strp("c21"), IsFeatured: true, Stock: 40},
		{ID: "5", Name: "Elden Ring", Description: "RPG de accion de FromSoftware.", Price: 59.99, ImageURL: "/static/img/eldenring.jpg", CategoryID: strp("c21"), Stock: 3},
		{ID: "6", Name: "EA Sports FC 25", Description: "Simulador de futbol.", Price: 49.99, ImageURL: "/static/img/fc25.jpg", CategoryID: strp("c22"), Stock: 0},
		{ID: "7", Name: "Control DualSense", Description: "Mando inalambrico con respuesta haptica.", Price: 74.99, ImageURL: "/static/img/dualsense.jpg", CategoryID: strp("c31"), Stock: 30},
		{ID: "8", Name: "Auriculares HyperX Cloud II", Description: "Headset gamer con sonido envolvente 7.1.", Price: 99.99, ImageURL: "/static/img/hyperx.jpg", CategoryID: strp("c32"), Stock: 6},
	}, nil
}

func (BuiltinCatalog) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	leaf := func(id, name string) domain.Category {
		return domain.Category{ID: id, Name: name, Children: []domain.Category{}}
	}
	return []domain.Category{
		{ID: "c1", Name: "Consolas", Children: []domain.Category{leaf("c11", "PlayStation"), leaf("c12", "Xbox"), leaf("c13", "Nintendo")}},
		{ID: "c2", Name: "Videojuegos", Children: []domain.Category{leaf("c21", "Aventura"), leaf("c22", "Deportes")}},
		{ID: "c3", Name: "Accesorios", Children: []domain.Category{leaf("c31", "Controles"), leaf("c32", "Audio")}},
	}, nil
}

// CatalogSource seeds both products and categories.
type CatalogSource interface {
	ProductSource
	CategorySource
}

// RemoteFirst seeds from Remote and uses the bundled data when Remote fails
// or answers with nothing.
type RemoteFirst struct {
	Remote CatalogSource
}

func (s RemoteFirst) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	if ps, err := s.Remote.FetchProducts(ctx); err == nil && len(ps) > 0 {
		return ps, nil
	}
	return BuiltinCatalog{}.FetchProducts(ctx)
}

func (s RemoteFirst) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	if cs, err := s.Remote.FetchCategories(ctx); err == nil && len(cs) > 0 {
		return cs, nil
	}
	return BuiltinCatalog{}.FetchCategories(ctx)
}
