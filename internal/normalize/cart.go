package normalize

import "zonagamer/internal/domain"

var (
	itemProductID   = []Field{Key("productId"), Key("productoId"), Path("product", "id"), Path("producto", "productoId"), Key("id")}
	itemQuantity    = Keys("quantity", "cantidad", "qty")
	itemName        = []Field{Key("name"), Key("nombreProducto"), Key("productName"), Path("product", "name"), Path("producto", "nombreProducto")}
	itemPrice       = []Field{Key("price"), Key("precio"), Key("precioUnitario"), Key("unitPrice"), Path("product", "price"), Path("producto", "precio")}
	itemImage       = []Field{Key("imageUrl"), Key("imagenUrl"), Path("product", "imageUrl"), Path("producto", "imagenUrl")}
	itemDescription = []Field{Key("description"), Key("descripcion"), Path("product", "description"), Path("producto", "descripcion")}
	itemSubtotal    = Keys("subtotal")
)

// CartItem maps a raw cart line. Enrichable fields stay empty or nil when
// the record does not carry them.
func CartItem(r Record) domain.CartItem {
	it := domain.CartItem{
		ProductID:   String(r, "", itemProductID...),
		Quantity:    Int(r, 0, itemQuantity...),
		Name:        String(r, "", itemName...),
		ImageURL:    String(r, "", itemImage...),
		Description: String(r, "", itemDescription...),
	}
	if p, ok := OptionalFloat(r, itemPrice...); ok {
		p = nonNegative(p)
		it.Price = &p
	}
	if s, ok := OptionalFloat(r, itemSubtotal...); ok {
		it.Subtotal = &s
	}
	return it
}

// CartItems reads the items of a raw cart payload ({"items": [...]} or a
// bare list).
func CartItems(raw any) []domain.CartItem {
	var recs []Record
	if r, ok := asRecord(raw); ok {
		if items, ok := FirstDefined(r, Keys("items", "detalles", "cartItems")...); ok {
			recs = List(items)
		}
	} else {
		recs = List(raw)
	}
	out := make([]domain.CartItem, 0, len(recs))
	for _, r := range recs {
		out = append(out, CartItem(r))
	}
	return out
}
