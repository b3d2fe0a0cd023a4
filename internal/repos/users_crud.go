package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"zonagamer/internal/domain"
	"zonagamer/internal/normalize"
)

const UsersKey = "users_local"

// userRecord is the stored form; the hash never leaves this package.
type userRecord struct {
	domain.User
	PasswordHash string `json:"passwordHash,omitempty"`
}

func decodeUserRecord(r normalize.Record) userRecord {
	return userRecord{
		User:         normalize.User(r),
		PasswordHash: normalize.String(r, "", normalize.Key("passwordHash")),
	}
}

type seedUser struct {
	id, name, email, role, status string
}

var seedUsers = []seedUser{
	{"u1", "Juan Pérez", "juan@example.com", domain.RoleAdmin, domain.StatusActive},
	{"u2", "María García", "maria@example.com", domain.RoleUser, domain.StatusActive},
	{"u3", "Carlos López", "carlos@example.com", domain.RoleUser, domain.StatusInactive},
}

// SeedUserPassword is the password of every seeded account.
const SeedUserPassword = "123"

// UsersCRUD is the admin-editable user collection used when the remote API
// is unreachable.
type UsersCRUD struct {
	c    *collection[userRecord]
	cost int
}

func NewUsersCRUD(kv KeyValueStore, opts ...Option) *UsersCRUD {
	o := buildOptions(opts)
	cost := o.bcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	r := &UsersCRUD{cost: cost}
	r.c = &collection[userRecord]{
		kv:      kv,
		key:     UsersKey,
		decode:  decodeUserRecord,
		seed:    r.seed,
		latency: o.latency,
	}
	return r
}

func (r *UsersCRUD) seed(ctx context.Context) ([]userRecord, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedUserPassword), r.cost)
	if err != nil {
		return nil, err
	}
	out := make([]userRecord, 0, len(seedUsers))
	for _, s := range seedUsers {
		out = append(out, userRecord{
			User: domain.User{
				ID: s.id, Name: s.name, Email: s.email, Role: s.role,
				Status: s.status, Active: s.status == domain.StatusActive,
			},
			PasswordHash: string(hash),
		})
	}
	return out, ctx.Err()
}

func (r *UsersCRUD) State() InitState { return r.c.State() }

func (r *UsersCRUD) Initialize(ctx context.Context) error { return r.c.initialize(ctx) }

func (r *UsersCRUD) GetAll(ctx context.Context) ([]domain.User, error) {
	recs, err := r.c.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.User)
	}
	return out, nil
}

func (r *UsersCRUD) GetByID(ctx context.Context, id string) (domain.User, error) {
	recs, err := r.c.load(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, rec := range recs {
		if rec.ID == id {
			return rec.User, nil
		}
	}
	return domain.User{}, errors.Wrapf(domain.ErrNotFound, "user %s", id)
}

func (r *UsersCRUD) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	recs, err := r.c.load(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if i := indexByEmail(recs, email); i >= 0 {
		return recs[i].User, nil
	}
	return domain.User{}, errors.Wrapf(domain.ErrNotFound, "user %s", email)
}

func indexByEmail(recs []userRecord, email string) int {
	email = strings.TrimSpace(email)
	for i, rec := range recs {
		if strings.EqualFold(rec.Email, email) {
			return i
		}
	}
	return -1
}

// Create adds a user. Role defaults to user, status to active.
func (r *UsersCRUD) Create(ctx context.Context, in domain.NewUser) (domain.User, error) {
	recs, err := r.c.load(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if indexByEmail(recs, in.Email) >= 0 {
		return domain.User{}, errors.Wrap(domain.ErrValidation, "email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), r.cost)
	if err != nil {
		return domain.User{}, errors.Wrap(err, "hash password")
	}
	u := domain.User{
		ID:     uuid.NewString(),
		Name:   in.Name,
		Email:  strings.TrimSpace(in.Email),
		Role:   normalize.RoleOf(in.Role),
		Status: in.Status,
	}
	if u.Status == "" {
		u.Status = domain.StatusActive
		if in.Active != nil && !*in.Active {
			u.Status = domain.StatusInactive
		}
	}
	u.Active = u.Status == domain.StatusActive
	recs = append(recs, userRecord{User: u, PasswordHash: string(hash)})
	if err := r.c.write(recs); err != nil {
		return domain.User{}, errors.Wrap(err, "create user")
	}
	return u, nil
}

func (r *UsersCRUD) Update(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	recs, err := r.c.load(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for i := range recs {
		if recs[i].ID != id {
			continue
		}
		u := &recs[i].User
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.Email != nil {
			u.Email = strings.TrimSpace(*patch.Email)
		}
		if patch.Role != nil {
			u.Role = normalize.RoleOf(*patch.Role)
		}
		if patch.Status != nil {
			u.Status = *patch.Status
			u.Active = u.Status == domain.StatusActive
		}
		if patch.Phone != nil {
			u.Phone = *patch.Phone
		}
		if patch.Address != nil {
			u.Address = *patch.Address
		}
		if err := r.c.write(recs); err != nil {
			return domain.User{}, errors.Wrap(err, "update user")
		}
		return *u, nil
	}
	return domain.User{}, errors.Wrapf(domain.ErrNotFound, "user %s", id)
}

func (r *UsersCRUD) Delete(ctx context.Context, id string) error {
	recs, err := r.c.load(ctx)
	if err != nil {
		return err
	}
	kept := make([]userRecord, 0, len(recs))
	for _, rec := range recs {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(recs) {
		return errors.Wrapf(domain.ErrNotFound, "user %s", id)
	}
	return errors.Wrap(r.c.write(kept), "delete user")
}

func (r *UsersCRUD) Stats(ctx context.Context) (domain.UserStats, error) {
	users, err := r.GetAll(ctx)
	if err != nil {
		return domain.UserStats{}, err
	}
	s := domain.UserStats{Total: len(users)}
	for _, u := range users {
		if u.IsAdmin() {
			s.Admins++
		}
		if u.Active || u.Status == domain.StatusActive {
			s.Active++
		}
	}
	return s, nil
}

// Authenticate checks a password against the stored hash. Unknown emails
// and wrong passwords fail the same way.
func (r *UsersCRUD) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	recs, err := r.c.load(ctx)
	if err != nil {
		return domain.User{}, err
	}
	i := indexByEmail(recs, email)
	if i < 0 || recs[i].PasswordHash == "" {
		return domain.User{}, domain.ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(recs[i].PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.ErrBadCreds
	}
	return recs[i].User, nil
}
