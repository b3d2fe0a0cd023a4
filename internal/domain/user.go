package domain

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`   // admin | user
	Status  string `json:"status"` // active | inactive
	Active  bool   `json:"active"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserPatch carries a shallow update; nil fields are left untouched.
type UserPatch struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=80"`
	Email   *string `json:"email" validate:"omitempty,email,max=80"`
	Role    *string `json:"role" validate:"omitempty,oneof=admin user"`
	Status  *string `json:"status" validate:"omitempty,oneof=active inactive"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	Address *string `json:"address" validate:"omitempty,max=200"`
}

type UserStats struct {
	Total  int `json:"total"`
	Admins int `json:"admins"`
	Active int `json:"active"`
}

// NewUser is the registration and admin-create input.
type NewUser struct {
	Name     string `json:"name" validate:"required,min=1,max=80"`
	Email    string `json:"email" validate:"required,email,max=80"`
	Password string `json:"password" validate:"required,min=3,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
	Status   string `json:"status" validate:"omitempty,oneof=active inactive"`
	Active   *bool  `json:"active"`
}
