package normalize

import (
	"github.com/google/uuid"

	"zonagamer/internal/domain"
)

var (
	productID          = Keys("id", "productId", "productoId", "_id")
	productName        = Keys("name", "nombreProducto", "nombre")
	productDescription = Keys("description", "descripcion")
	productPrice       = Keys("price", "precio")
	productImage       = Keys("imageUrl", "imagenUrl", "image", "imagen")
	productCategory    = []Field{Key("categoryId"), Key("categoriaId"), Path("category", "id"), Path("categoria", "categoriaId")}
	productFeatured    = Keys("isFeatured", "destacado", "featured")
	productStock       = Keys("stock", "existencias", "cantidadStock")
	productCreatedAt   = Keys("createdAt", "fechaCreacion")
	productUpdatedAt   = Keys("updatedAt", "fechaActualizacion")
)

// Product maps an English or Spanish shaped record to a canonical product.
func Product(r Record) domain.Product {
	p := domain.Product{
		ID:          idOrNew(r, productID),
		Name:        String(r, "", productName...),
		Description: String(r, "", productDescription...),
		Price:       nonNegative(Float(r, 0, productPrice...)),
		ImageURL:    String(r, "", productImage...),
		IsFeatured:  Bool(r, false, productFeatured...),
		Stock:       max(Int(r, 0, productStock...), 0),
		CreatedAt:   String(r, "", productCreatedAt...),
		UpdatedAt:   String(r, "", productUpdatedAt...),
	}
	if cat, ok := OptionalString(r, productCategory...); ok && cat != "" {
		p.CategoryID = &cat
	}
	return p
}

// Products normalizes every element of a collection payload.
func Products(raw any) []domain.Product {
	recs := List(raw)
	out := make([]domain.Product, 0, len(recs))
	for _, r := range recs {
		out = append(out, Product(r))
	}
	return out
}

func idOrNew(r Record, fields []Field) string {
	if id, ok := OptionalString(r, fields...); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
