package domain

type Category struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Children []Category `json:"children"`
}

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	CategoryID  *string `json:"categoryId"`
	IsFeatured  bool    `json:"isFeatured"`
	Stock       int     `json:"stock"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// InCategory reports whether the product belongs to one of ids.
func (p Product) InCategory(ids ...string) bool {
	if p.CategoryID == nil {
		return false
	}
	for _, id := range ids {
		if *p.CategoryID == id {
			return true
		}
	}
	return false
}

// ProductPatch carries a shallow update; nil fields are left untouched.
type ProductPatch struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,max=500"`
	CategoryID  *string  `json:"categoryId" validate:"omitempty,max=64"`
	IsFeatured  *bool    `json:"isFeatured"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
}

type ProductStats struct {
	Total      int `json:"total"`
	TotalStock int `json:"totalStock"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`
}

// LowStockThreshold is shared by stats and availability.
const LowStockThreshold = 10

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}

// CartItem fields other than ProductID and Quantity may be absent and are
// back-filled from a product lookup.
type CartItem struct {
	ProductID   string   `json:"productId"`
	Quantity    int      `json:"quantity"`
	Name        string   `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Description string   `json:"description,omitempty"`
	Subtotal    *float64 `json:"subtotal,omitempty"`
}

// NeedsEnrichment reports whether any enrichable field is missing.
func (it CartItem) NeedsEnrichment() bool {
	return it.Name == "" || it.Price == nil || it.ImageURL == "" || it.Description == "" || it.Subtotal == nil
}

// ItemDetails are the optional display fields stored with a local cart line.
type ItemDetails struct {
	Name        string   `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Description string   `json:"description,omitempty"`
}

type Cart struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"totalItems"`
	TotalPrice float64    `json:"totalPrice"`
}

// NewCart builds a cart whose totals are derived from items.
func NewCart(items []CartItem) Cart {
	if items == nil {
		items = []CartItem{}
	}
	c := Cart{Items: items}
	for _, it := range items {
		c.TotalItems += it.Quantity
		price := 0.0
		if it.Price != nil {
			price = *it.Price
		}
		c.TotalPrice += price * float64(it.Quantity)
	}
	return c
}

type Order struct {
	ID            string     `json:"id"`
	SessionID     string     `json:"sessionId"`
	CustomerName  string     `json:"customerName"`
	CustomerEmail string     `json:"customerEmail"`
	Address       string     `json:"address"`
	Items         []CartItem `json:"items"`
	TotalItems    int        `json:"totalItems"`
	TotalPrice    float64    `json:"totalPrice"`
	PlacedAt      string     `json:"placedAt"`
}
