package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"zonagamer/internal/domain"
	"zonagamer/internal/remote"
	"zonagamer/internal/repos"
)

// enrichWorkers bounds concurrent product lookups per cart read.
const enrichWorkers = 4

// CartService reconciles the cart of a session. Sessions holding a server
// token use the remote cart; all others use the local one.
type CartService struct {
	Client   *remote.Client
	Sessions Sessions
	Products *repos.ProductsCRUD
	Log      *zap.Logger
}

func NewCartService(client *remote.Client, sessions Sessions, products *repos.ProductsCRUD, log *zap.Logger) *CartService {
	return &CartService{Client: client, Sessions: sessions, Products: products, Log: log}
}

func (s *CartService) local(sid string) *repos.LocalCart {
	return repos.NewLocalCart(s.Sessions.Store(sid))
}

// remoteFor returns an authenticated client, or nil in local mode.
func (s *CartService) remoteFor(sid string) *remote.Client {
	tok := s.Sessions.Token(sid)
	if !remote.IsServerToken(tok) {
		return nil
	}
	return s.Client.WithToken(tok)
}

// Get returns the reconciled cart. A failing remote read falls back to the
// local cart.
func (s *CartService) Get(ctx context.Context, sid string) (domain.Cart, Source, error) {
	if rc := s.remoteFor(sid); rc != nil {
		items, err := rc.Cart(ctx)
		if err == nil {
			return s.reconcile(ctx, items), SourceRemote, nil
		}
		s.Log.Warn("remote cart read failed, using local cart", zap.Error(err))
	}
	return s.reconcile(ctx, s.local(sid).Get().Items), SourceLocal, nil
}

func (s *CartService) Add(ctx context.Context, sid, productID string, qty int, details domain.ItemDetails) (domain.Cart, error) {
	if qty < 1 {
		qty = 1
	}
	if rc := s.remoteFor(sid); rc != nil {
		_, err := rc.AddToCart(ctx, productID, qty)
		return s.afterRemote(ctx, rc, err)
	}
	c, err := s.local(sid).AddItem(productID, qty, details)
	return s.afterLocal(ctx, c, err)
}

func (s *CartService) Increment(ctx context.Context, sid, productID string) (domain.Cart, error) {
	return s.step(ctx, sid, productID, 1)
}

func (s *CartService) Decrement(ctx context.Context, sid, productID string) (domain.Cart, error) {
	return s.step(ctx, sid, productID, -1)
}

func (s *CartService) step(ctx context.Context, sid, productID string, delta int) (domain.Cart, error) {
	if rc := s.remoteFor(sid); rc != nil {
		items, err := rc.Cart(ctx)
		if err != nil {
			return domain.Cart{}, err
		}
		qty := delta
		for _, it := range items {
			if it.ProductID == productID {
				qty = it.Quantity + delta
				break
			}
		}
		return s.setRemote(ctx, rc, productID, qty)
	}
	c, err := s.local(sid).AddItem(productID, delta, domain.ItemDetails{})
	return s.afterLocal(ctx, c, err)
}

// SetQuantity replaces the quantity of a line; zero or below removes it.
func (s *CartService) SetQuantity(ctx context.Context, sid, productID string, qty int) (domain.Cart, error) {
	if rc := s.remoteFor(sid); rc != nil {
		return s.setRemote(ctx, rc, productID, qty)
	}
	c, err := s.local(sid).UpdateItem(productID, qty)
	return s.afterLocal(ctx, c, err)
}

func (s *CartService) setRemote(ctx context.Context, rc *remote.Client, productID string, qty int) (domain.Cart, error) {
	if qty <= 0 {
		_, err := rc.RemoveCartItem(ctx, productID)
		return s.afterRemote(ctx, rc, err)
	}
	_, err := rc.UpdateCartItem(ctx, productID, qty)
	return s.afterRemote(ctx, rc, err)
}

func (s *CartService) Remove(ctx context.Context, sid, productID string) (domain.Cart, error) {
	if rc := s.remoteFor(sid); rc != nil {
		_, err := rc.RemoveCartItem(ctx, productID)
		return s.afterRemote(ctx, rc, err)
	}
	c, err := s.local(sid).RemoveItem(productID)
	return s.afterLocal(ctx, c, err)
}

func (s *CartService) Clear(ctx context.Context, sid string) (domain.Cart, error) {
	if rc := s.remoteFor(sid); rc != nil {
		return s.afterRemote(ctx, rc, rc.ClearCart(ctx))
	}
	c, err := s.local(sid).Clear()
	return s.afterLocal(ctx, c, err)
}

// ItemCount is the badge count of the session cart.
func (s *CartService) ItemCount(ctx context.Context, sid string) int {
	c, _, _ := s.Get(ctx, sid)
	return c.TotalItems
}

// MergeLocalIntoRemote moves the local cart of a freshly authenticated
// session into the remote cart. Lines the remote accepted leave the local
// cart; the first rejection stops the merge.
func (s *CartService) MergeLocalIntoRemote(ctx context.Context, sid string) (int, error) {
	rc := s.remoteFor(sid)
	if rc == nil {
		return 0, nil
	}
	lc := s.local(sid)
	merged := 0
	for _, it := range lc.Get().Items {
		if it.Quantity <= 0 {
			continue
		}
		if _, err := rc.AddToCart(ctx, it.ProductID, it.Quantity); err != nil {
			return merged, err
		}
		if _, err := lc.RemoveItem(it.ProductID); err != nil {
			return merged, err
		}
		merged++
	}
	return merged, nil
}

// afterRemote re-reads the remote cart once a mutation succeeded. Mutation
// responses are not guaranteed to carry the cart.
func (s *CartService) afterRemote(ctx context.Context, rc *remote.Client, err error) (domain.Cart, error) {
	if err != nil {
		return domain.Cart{}, err
	}
	items, err := rc.Cart(ctx)
	if err != nil {
		return domain.Cart{}, err
	}
	return s.reconcile(ctx, items), nil
}

func (s *CartService) afterLocal(ctx context.Context, c domain.Cart, err error) (domain.Cart, error) {
	if err != nil {
		return domain.Cart{}, err
	}
	return s.reconcile(ctx, c.Items), nil
}

// reconcile drops empty lines, fills missing display fields from a product
// lookup and derives totals from the result.
func (s *CartService) reconcile(ctx context.Context, items []domain.CartItem) domain.Cart {
	out := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.Quantity > 0 {
			out = append(out, it)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichWorkers)
	for i := range out {
		if !out[i].NeedsEnrichment() {
			continue
		}
		g.Go(func() error {
			if p, ok := s.lookup(gctx, out[i].ProductID); ok {
				fill(&out[i], p)
			}
			return nil
		})
	}
	_ = g.Wait()

	for i := range out {
		if out[i].Subtotal == nil {
			price := 0.0
			if out[i].Price != nil {
				price = *out[i].Price
			}
			sub := price * float64(out[i].Quantity)
			out[i].Subtotal = &sub
		}
	}
	return domain.NewCart(out)
}

func (s *CartService) lookup(ctx context.Context, productID string) (domain.Product, bool) {
	if p, err := s.Client.Product(ctx, productID); err == nil {
		return p, true
	}
	p, err := s.Products.GetByID(ctx, productID)
	if err != nil {
		s.Log.Debug("cart item lookup failed", zap.String("product_id", productID), zap.Error(err))
		return domain.Product{}, false
	}
	return p, true
}

func fill(it *domain.CartItem, p domain.Product) {
	if it.Name == "" {
		it.Name = p.Name
	}
	if it.Price == nil {
		price := p.Price
		it.Price = &price
	}
	if it.ImageURL == "" {
		it.ImageURL = p.ImageURL
	}
	if it.Description == "" {
		it.Description = p.Description
	}
}
