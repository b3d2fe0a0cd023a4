package services

import (
	"context"

	"zonagamer/internal/domain"
)

const (
	InStock    = "IN_STOCK"
	LowStock   = "LOW_STOCK"
	OutOfStock = "OUT_OF_STOCK"
)

type InventoryService struct {
	Catalog *CatalogService
}

func NewInventoryService(catalog *CatalogService) *InventoryService {
	return &InventoryService{Catalog: catalog}
}

// Availability converts stock to IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *InventoryService) Availability(ctx context.Context, productID string) (domain.Availability, error) {
	p, _, err := s.Catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.Availability{}, err
	}
	return Classify(p.Stock), nil
}

func Classify(qty int) domain.Availability {
	status := OutOfStock
	switch {
	case qty >= domain.LowStockThreshold:
		status = InStock
	case qty > 0:
		status = LowStock
	}
	return domain.Availability{Status: status, Qty: qty}
}
