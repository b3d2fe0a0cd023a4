package services

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"zonagamer/internal/domain"
	"zonagamer/internal/remote"
	"zonagamer/internal/repos"
)

// MinSearchLen is the shortest accepted search term, in characters.
const MinSearchLen = 2

type ProductFilter struct {
	CategoryIDs  []string
	FeaturedOnly bool
}

func (f ProductFilter) apply(in []domain.Product) []domain.Product {
	if len(f.CategoryIDs) == 0 && !f.FeaturedOnly {
		return in
	}
	out := make([]domain.Product, 0, len(in))
	for _, p := range in {
		if f.FeaturedOnly && !p.IsFeatured {
			continue
		}
		if len(f.CategoryIDs) > 0 && !p.InCategory(f.CategoryIDs...) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// CatalogService serves products, categories and users from the local
// stores while a remote refresh runs in the background.
type CatalogService struct {
	Client     *remote.Client
	Products   *repos.ProductsCRUD
	Categories *repos.CategoryStore
	Users      *repos.UsersCRUD
	Log        *zap.Logger

	base   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex // guards closed and wg.Add
	closed bool
	wg     sync.WaitGroup
}

func NewCatalogService(client *remote.Client, products *repos.ProductsCRUD, cats *repos.CategoryStore, users *repos.UsersCRUD, log *zap.Logger) *CatalogService {
	base, cancel := context.WithCancel(context.Background())
	return &CatalogService{
		Client: client, Products: products, Categories: cats, Users: users, Log: log,
		base: base, cancel: cancel,
	}
}

// Close stops accepting background work and waits for in-flight refreshes.
func (s *CatalogService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

// track registers one background refresh. It reports false once Close ran.
func (s *CatalogService) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

// reconcile publishes the local value and lets a background remote fetch
// supersede it. Emptiness is judged on the raw remote value; view shapes
// both sides afterwards and may be nil.
func reconcile[T any](s *CatalogService, ctx context.Context, what string, initial T,
	fetchRemote func(context.Context) (T, error), readLocal func(context.Context) (T, error),
	empty func(T) bool, view func(T) T) *Live[T] {
	if view == nil {
		view = func(v T) T { return v }
	}
	l := newLive(initial)
	if fetchRemote == nil || !s.track() {
		l.settle()
	} else {
		go func() {
			defer s.wg.Done()
			defer l.settle()
			v, err := fetchRemote(s.base)
			if err != nil {
				s.Log.Warn("remote refresh failed", zap.String("what", what), zap.Error(err))
				return
			}
			if empty(v) {
				s.Log.Debug("remote returned nothing, keeping local", zap.String("what", what))
				return
			}
			l.setRemote(view(v))
		}()
	}
	v, err := readLocal(ctx)
	if err != nil {
		s.Log.Warn("local read failed", zap.String("what", what), zap.Error(err))
		return l
	}
	l.setLocal(view(v))
	return l
}

func emptySlice[E any](v []E) bool { return len(v) == 0 }

func (s *CatalogService) ListProducts(ctx context.Context, f ProductFilter) *Live[[]domain.Product] {
	return reconcile(s, ctx, "products", []domain.Product{},
		s.Client.Products, s.Products.GetAll, emptySlice[domain.Product], f.apply)
}

func (s *CatalogService) ListCategories(ctx context.Context) *Live[[]domain.Category] {
	return reconcile(s, ctx, "categories", []domain.Category{},
		s.Client.Categories, s.Categories.GetAll, emptySlice[domain.Category], nil)
}

// ListUsers only asks the remote API when token is a server token.
func (s *CatalogService) ListUsers(ctx context.Context, token string) *Live[[]domain.User] {
	var fetch func(context.Context) ([]domain.User, error)
	if remote.IsServerToken(token) {
		fetch = s.Client.WithToken(token).Users
	}
	return reconcile(s, ctx, "users", []domain.User{}, fetch, s.Users.GetAll, emptySlice[domain.User], nil)
}

// GetProduct tries the remote API, then the local collection.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, Source, error) {
	p, err := s.Client.Product(ctx, id)
	if err == nil {
		return p, SourceRemote, nil
	}
	s.Log.Debug("remote product lookup failed", zap.String("product_id", id), zap.Error(err))
	p, err = s.Products.GetByID(ctx, id)
	if err != nil {
		return domain.Product{}, SourceNone, err
	}
	return p, SourceLocal, nil
}

func (s *CatalogService) Search(ctx context.Context, term string) ([]domain.Product, Source, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < MinSearchLen {
		return nil, SourceNone, errors.Wrap(domain.ErrValidation, "search term must have at least 2 characters")
	}
	found, err := s.Client.SearchProducts(ctx, term)
	if err == nil {
		return found, SourceRemote, nil
	}
	s.Log.Warn("remote search failed", zap.Error(err))
	all, err := s.Products.GetAll(ctx)
	if err != nil {
		return nil, SourceNone, err
	}
	needle := strings.ToLower(term)
	out := make([]domain.Product, 0)
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(strings.ToLower(p.Description), needle) {
			out = append(out, p)
		}
	}
	return out, SourceLocal, nil
}

// SetUserFlag applies an admin toggle remotely for server sessions and to
// the local user store otherwise.
func (s *CatalogService) SetUserFlag(ctx context.Context, token, id string, action remote.UserAction) error {
	if !action.Valid() {
		return errors.Wrapf(domain.ErrValidation, "unknown user action %q", action)
	}
	if remote.IsServerToken(token) {
		return s.Client.WithToken(token).SetUserFlag(ctx, id, action)
	}
	var patch domain.UserPatch
	switch action {
	case remote.Promote:
		patch.Role = strPtr(domain.RoleAdmin)
	case remote.Revoke:
		patch.Role = strPtr(domain.RoleUser)
	case remote.Activate:
		patch.Status = strPtr(domain.StatusActive)
	case remote.Deactivate:
		patch.Status = strPtr(domain.StatusInactive)
	}
	_, err := s.Users.Update(ctx, id, patch)
	return err
}

func strPtr(s string) *string { return &s }
