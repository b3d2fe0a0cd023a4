package normalize

import (
	"strings"

	"zonagamer/internal/domain"
)

// Placeholders used when a user record carries no name or email.
const (
	DefaultUserName  = "Usuario"
	DefaultUserEmail = "sin@email"
)

var (
	userID        = Keys("id", "userId", "usuarioId", "_id")
	userName      = Keys("name", "nombreCompleto")
	userFirstName = Keys("nombre", "firstName")
	userLastName  = Keys("apellido", "lastName", "lastname")
	userEmail     = Keys("email", "correo")
	userRole      = Keys("role", "rol")
	userAdminFlag = Keys("admin", "isAdmin")
	userActive    = Keys("active", "activo")
	userStatus    = Keys("status", "estado")
	userPhone     = Keys("phone", "telefono", "numeroDeTelefono")
	userAddress   = Keys("address", "direccion")
)

// User maps a remote or local user record to the canonical shape. Role and
// status always resolve to one of their two values.
func User(r Record) domain.User {
	u := domain.User{
		ID:      idOrNew(r, userID),
		Name:    userDisplayName(r),
		Email:   String(r, DefaultUserEmail, userEmail...),
		Role:    userRoleOf(r),
		Phone:   String(r, "", userPhone...),
		Address: String(r, "", userAddress...),
	}
	u.Status = domain.StatusInactive
	if userIsActive(r) {
		u.Status = domain.StatusActive
	}
	u.Active = u.Status == domain.StatusActive
	return u
}

// Users normalizes every element of a collection payload.
func Users(raw any) []domain.User {
	recs := List(raw)
	out := make([]domain.User, 0, len(recs))
	for _, r := range recs {
		out = append(out, User(r))
	}
	return out
}

func userDisplayName(r Record) string {
	if name, ok := OptionalString(r, userName...); ok && name != "" {
		return name
	}
	first, okFirst := OptionalString(r, userFirstName...)
	last, okLast := OptionalString(r, userLastName...)
	if okFirst && okLast {
		return first + " " + last
	}
	return DefaultUserName
}

func userRoleOf(r Record) string {
	if role, ok := OptionalString(r, userRole...); ok {
		return RoleOf(role)
	}
	if Bool(r, false, userAdminFlag...) {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

// RoleOf folds the role spellings seen upstream onto admin or user.
func RoleOf(role string) string {
	switch strings.ToUpper(strings.TrimSpace(role)) {
	case "ADMIN", "ROLE_ADMIN", "ADMINISTRADOR":
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

func userIsActive(r Record) bool {
	if v, ok := FirstDefined(r, userActive...); ok {
		if b, isBool := v.(bool); isBool && b {
			return true
		}
	}
	status, ok := OptionalString(r, userStatus...)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "activo":
		return true
	}
	return false
}
