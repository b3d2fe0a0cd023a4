package repos

import (
	"encoding/json"

	"zonagamer/internal/domain"
	"zonagamer/internal/normalize"
)

// LocalCartKey holds the unauthenticated cart of a session.
const LocalCartKey = "local_cart"

// LocalCart keeps a single cart value in a KeyValueStore. Totals are never
// stored; every read derives them from the items.
type LocalCart struct {
	kv  KeyValueStore
	key string
}

func NewLocalCart(kv KeyValueStore) *LocalCart { return &LocalCart{kv: kv, key: LocalCartKey} }

type storedCart struct {
	Items []domain.CartItem `json:"items"`
}

// read treats a missing, unreadable or corrupted value as an empty cart.
func (r *LocalCart) read() []domain.CartItem {
	raw, ok, err := r.kv.Get(r.key)
	if err != nil || !ok || raw == "" {
		return []domain.CartItem{}
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return []domain.CartItem{}
	}
	return normalize.CartItems(v)
}

func (r *LocalCart) write(items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	b, err := json.Marshal(storedCart{Items: items})
	if err != nil {
		return err
	}
	return r.kv.Set(r.key, string(b))
}

func (r *LocalCart) Get() domain.Cart { return domain.NewCart(r.read()) }

func indexOf(items []domain.CartItem, productID string) int {
	for i, it := range items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem accumulates quantity on an existing line or appends a new one
// carrying details as given.
func (r *LocalCart) AddItem(productID string, quantity int, details domain.ItemDetails) (domain.Cart, error) {
	items := r.read()
	if i := indexOf(items, productID); i >= 0 {
		items[i].Quantity += quantity
		if items[i].Quantity <= 0 {
			items = append(items[:i], items[i+1:]...)
		}
	} else if quantity > 0 {
		items = append(items, domain.CartItem{
			ProductID:   productID,
			Quantity:    quantity,
			Name:        details.Name,
			Price:       details.Price,
			ImageURL:    details.ImageURL,
			Description: details.Description,
		})
	}
	if err := r.write(items); err != nil {
		return domain.Cart{}, err
	}
	return r.Get(), nil
}

// UpdateItem sets the quantity; zero or below removes the line.
func (r *LocalCart) UpdateItem(productID string, quantity int) (domain.Cart, error) {
	items := r.read()
	i := indexOf(items, productID)
	if i < 0 {
		return r.Get(), nil
	}
	if quantity <= 0 {
		items = append(items[:i], items[i+1:]...)
	} else {
		items[i].Quantity = quantity
	}
	if err := r.write(items); err != nil {
		return domain.Cart{}, err
	}
	return r.Get(), nil
}

// RemoveItem is a no-op when the line is absent.
func (r *LocalCart) RemoveItem(productID string) (domain.Cart, error) {
	items := r.read()
	i := indexOf(items, productID)
	if i < 0 {
		return r.Get(), nil
	}
	items = append(items[:i], items[i+1:]...)
	if err := r.write(items); err != nil {
		return domain.Cart{}, err
	}
	return r.Get(), nil
}

func (r *LocalCart) Clear() (domain.Cart, error) {
	if err := r.write(nil); err != nil {
		return domain.Cart{}, err
	}
	return r.Get(), nil
}

func (r *LocalCart) ItemCount() int { return r.Get().TotalItems }
