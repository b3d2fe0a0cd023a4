package remote

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"zonagamer/internal/domain"
	"zonagamer/internal/normalize"
)

// Session is a successful login or registration.
type Session struct {
	Token string
	User  domain.User
}

var (
	sessionToken = normalize.Keys("token", "accessToken", "jwt")
	sessionUser  = normalize.Keys("user", "usuario")
	userIDKeys   = normalize.Keys("id", "usuarioId", "userId", "_id")
)

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body := map[string]string{"email": email, "password": password}
	return c.session(ctx, "/auth/login", body)
}

// Register signs a user up with the field names the API expects.
func (c *Client) Register(ctx context.Context, in domain.NewUser) (Session, error) {
	body := map[string]string{"email": in.Email, "password": in.Password, "nombre": in.Name}
	return c.session(ctx, "/auth/register", body)
}

func (c *Client) session(ctx context.Context, path string, body any) (Session, error) {
	var rec normalize.Record
	if err := c.do(ctx, fiber.MethodPost, path, nil, body, &rec); err != nil {
		return Session{}, err
	}
	tok, _ := normalize.OptionalString(rec, sessionToken...)
	if tok == "" {
		return Session{}, &APIError{Status: fiber.StatusBadGateway, Message: "no token in auth response"}
	}
	// the user is either nested or flattened next to the token
	userRec := rec
	if v, ok := normalize.FirstDefined(rec, sessionUser...); ok {
		if nested := normalize.List([]any{v}); len(nested) == 1 {
			userRec = nested[0]
		}
	}
	u := normalize.User(userRec)
	if claims, err := Claims(tok); err == nil {
		claims.fill(&u)
		if _, ok := normalize.FirstDefined(userRec, userIDKeys...); !ok && claims.Subject != "" {
			u.ID = claims.Subject
		}
	}
	return Session{Token: tok, User: u}, nil
}

// TokenClaims are the identity claims the API puts in its tokens.
type TokenClaims struct {
	Subject string
	Email   string
	Name    string
	Role    string
}

// Claims decodes a token payload without verifying its signature. The
// server verifies; the client only reads identity hints.
func Claims(tok string) (TokenClaims, error) {
	if !IsServerToken(tok) {
		return TokenClaims{}, errors.New("not a server token")
	}
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, mc); err != nil {
		return TokenClaims{}, errors.Wrap(err, "parse token")
	}
	rec := normalize.Record(mc)
	out := TokenClaims{
		Subject: normalize.String(rec, "", normalize.Keys("sub", "userId", "id")...),
		Email:   normalize.String(rec, "", normalize.Keys("email", "correo")...),
		Name:    normalize.String(rec, "", normalize.Keys("name", "nombre")...),
	}
	if role, ok := normalize.OptionalString(rec, normalize.Keys("role", "rol")...); ok {
		out.Role = normalize.RoleOf(role)
	}
	return out, nil
}

// User builds a session user from the claims alone. Missing fields take
// the usual user placeholders.
func (t TokenClaims) User() domain.User {
	rec := normalize.Record{"active": true}
	if t.Name != "" {
		rec["name"] = t.Name
	}
	if t.Email != "" {
		rec["email"] = t.Email
	}
	if t.Role != "" {
		rec["role"] = t.Role
	}
	u := normalize.User(rec)
	u.ID = t.Subject
	return u
}

func (t TokenClaims) fill(u *domain.User) {
	if u.Email == normalize.DefaultUserEmail && t.Email != "" {
		u.Email = t.Email
	}
	if u.Name == normalize.DefaultUserName && t.Name != "" {
		u.Name = t.Name
	}
	if t.Role == domain.RoleAdmin {
		u.Role = domain.RoleAdmin
	}
}
