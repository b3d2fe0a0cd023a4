package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"zonagamer/internal/domain"
	"zonagamer/internal/repos"
)

type CheckoutService struct {
	Carts    *CartService
	Auth     *AuthService
	Sessions Sessions
	Now      func() time.Time
}

func NewCheckoutService(carts *CartService, auth *AuthService, sessions Sessions) *CheckoutService {
	return &CheckoutService{Carts: carts, Auth: auth, Sessions: sessions, Now: time.Now}
}

func (s *CheckoutService) Place(ctx context.Context, sid, address string) (domain.Order, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Order{}, errors.Wrap(domain.ErrValidation, "missing address")
	}
	u, ok := s.Auth.CurrentUser(ctx, sid)
	if !ok {
		return domain.Order{}, errors.Wrap(domain.ErrValidation, "sign in to check out")
	}

	cart, _, err := s.Carts.Get(ctx, sid)
	if err != nil {
		return domain.Order{}, err
	}
	if len(cart.Items) == 0 {
		return domain.Order{}, domain.ErrEmptyCart
	}
	cart = s.reprice(ctx, cart)

	order := domain.Order{
		ID:            uuid.NewString(),
		SessionID:     sid,
		CustomerName:  u.Name,
		CustomerEmail: u.Email,
		Address:       address,
		Items:         cart.Items,
		TotalItems:    cart.TotalItems,
		TotalPrice:    cart.TotalPrice,
		PlacedAt:      s.Now().UTC().Format(time.RFC3339),
	}
	if err := repos.NewOrderLog(s.Sessions.Store(sid)).Append(order); err != nil {
		return domain.Order{}, errors.Wrap(err, "record order")
	}
	if _, err := s.Carts.Clear(ctx, sid); err != nil {
		return domain.Order{}, errors.Wrap(err, "clear cart")
	}
	return order, nil
}

// reprice replaces line prices with the catalog price. Prices stored with
// a local cart line came from the client and are only kept for products
// the catalog no longer knows.
func (s *CheckoutService) reprice(ctx context.Context, cart domain.Cart) domain.Cart {
	items := make([]domain.CartItem, len(cart.Items))
	for i, it := range cart.Items {
		if p, ok := s.Carts.lookup(ctx, it.ProductID); ok {
			price := p.Price
			sub := price * float64(it.Quantity)
			it.Price, it.Subtotal = &price, &sub
		}
		items[i] = it
	}
	return domain.NewCart(items)
}

func (s *CheckoutService) History(sid string) ([]domain.Order, error) {
	return repos.NewOrderLog(s.Sessions.Store(sid)).List()
}
