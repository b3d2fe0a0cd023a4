package services

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"zonagamer/internal/domain"
	"zonagamer/internal/remote"
	"zonagamer/internal/repos"
)

// AuthService signs sessions in against the remote API and falls back to
// the local user store when the API cannot be reached.
type AuthService struct {
	Client   *remote.Client
	Users    *repos.UsersCRUD
	Sessions Sessions
	Carts    *CartService
	Log      *zap.Logger
}

func NewAuthService(client *remote.Client, users *repos.UsersCRUD, sessions Sessions, carts *CartService, log *zap.Logger) *AuthService {
	return &AuthService{Client: client, Users: users, Sessions: sessions, Carts: carts, Log: log}
}

// rejected reports an upstream answer that must not trigger the local
// fallback.
func rejected(err error) bool {
	switch remote.StatusOf(err) {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusConflict, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (domain.User, error) {
	sess, err := s.Client.Login(ctx, email, password)
	switch {
	case err == nil:
		if err := s.Sessions.Begin(sid, sess.Token, sess.User); err != nil {
			return domain.User{}, err
		}
		if n, err := s.Carts.MergeLocalIntoRemote(ctx, sid); err != nil {
			s.Log.Warn("cart merge incomplete", zap.Int("merged", n), zap.Error(err))
		}
		return sess.User, nil
	case rejected(err):
		return domain.User{}, domain.ErrBadCreds
	}

	s.Log.Info("remote login unavailable, checking local users", zap.Error(err))
	u, err := s.Users.Authenticate(ctx, email, password)
	if err != nil {
		return domain.User{}, err
	}
	if !u.Active {
		return domain.User{}, domain.ErrBadCreds
	}
	if err := s.Sessions.Begin(sid, remote.LocalToken, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *AuthService) Register(ctx context.Context, sid string, in domain.NewUser) (domain.User, error) {
	sess, err := s.Client.Register(ctx, in)
	switch {
	case err == nil:
		if err := s.Sessions.Begin(sid, sess.Token, sess.User); err != nil {
			return domain.User{}, err
		}
		if _, err := s.Carts.MergeLocalIntoRemote(ctx, sid); err != nil {
			s.Log.Warn("cart merge incomplete", zap.Error(err))
		}
		return sess.User, nil
	case rejected(err):
		var apiErr *remote.APIError
		errors.As(err, &apiErr)
		return domain.User{}, errors.Wrap(domain.ErrValidation, apiErr.Message)
	}

	s.Log.Info("remote registration unavailable, creating local user", zap.Error(err))
	in.Role, in.Status, in.Active = domain.RoleUser, domain.StatusActive, nil
	u, err := s.Users.Create(ctx, in)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.Sessions.Begin(sid, remote.LocalToken, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error { return s.Sessions.End(sid) }

// CurrentUser resolves the session user. ok is false for anonymous
// sessions.
func (s *AuthService) CurrentUser(ctx context.Context, sid string) (u domain.User, ok bool) {
	tok := s.Sessions.Token(sid)
	if tok == "" {
		return domain.User{}, false
	}
	if remote.IsServerToken(tok) {
		me, err := s.Client.WithToken(tok).Me(ctx)
		if err == nil {
			return me, true
		}
		s.Log.Debug("remote profile unavailable", zap.Error(err))
	}
	if cached, found := s.Sessions.CachedUser(sid); found {
		if tok == remote.LocalToken {
			if fresh, err := s.Users.GetByID(ctx, cached.ID); err == nil {
				return fresh, true
			}
		}
		return cached, true
	}
	if claims, err := remote.Claims(tok); err == nil {
		return claims.User(), true
	}
	return domain.User{}, false
}

func (s *AuthService) IsAdmin(ctx context.Context, sid string) bool {
	u, ok := s.CurrentUser(ctx, sid)
	return ok && u.IsAdmin()
}

// UpdateProfile changes the contact fields of the session user. Role and
// status are not editable here.
func (s *AuthService) UpdateProfile(ctx context.Context, sid string, patch domain.UserPatch) (domain.User, error) {
	u, ok := s.CurrentUser(ctx, sid)
	if !ok {
		return domain.User{}, errors.Wrap(domain.ErrValidation, "not signed in")
	}
	patch.Role, patch.Status = nil, nil

	updated, err := s.Users.Update(ctx, u.ID, patch)
	if errors.Is(err, domain.ErrNotFound) {
		updated = u
		if patch.Name != nil {
			updated.Name = *patch.Name
		}
		if patch.Email != nil {
			updated.Email = *patch.Email
		}
		if patch.Phone != nil {
			updated.Phone = *patch.Phone
		}
		if patch.Address != nil {
			updated.Address = *patch.Address
		}
	} else if err != nil {
		return domain.User{}, err
	}
	if err := s.Sessions.CacheUser(sid, updated); err != nil {
		return domain.User{}, err
	}
	return updated, nil
}
