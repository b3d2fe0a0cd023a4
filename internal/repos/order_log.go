package repos

import (
	"encoding/json"

	"github.com/pkg/errors"

	"zonagamer/internal/domain"
)

const OrdersKey = "orders_local"

// OrderLog keeps the checkout receipts of one session, newest last.
type OrderLog struct {
	kv KeyValueStore
}

func NewOrderLog(kv KeyValueStore) *OrderLog { return &OrderLog{kv: kv} }

func (l *OrderLog) List() ([]domain.Order, error) {
	raw, ok, err := l.kv.Get(OrdersKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []domain.Order{}, nil
	}
	var out []domain.Order
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []domain.Order{}, errors.Wrap(domain.ErrStoreCorrupted, OrdersKey)
	}
	return out, nil
}

// Append records o. A corrupted log is replaced rather than extended.
func (l *OrderLog) Append(o domain.Order) error {
	orders, err := l.List()
	if err != nil && !errors.Is(err, domain.ErrStoreCorrupted) {
		return err
	}
	orders = append(orders, o)
	b, err := json.Marshal(orders)
	if err != nil {
		return err
	}
	return l.kv.Set(OrdersKey, string(b))
}
