package entity

import (
	"fmt"
	"strings"
	"time"
)

// Role es el rol cerrado de un usuario. Se fija en el registro y no cambia.
type Role uint8

// Roles válidos para User. RoleUnknown nunca se persiste.
const (
	RoleUnknown Role = iota
	RoleBuyer
	RoleSeller
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleBuyer:  "buyer",
	RoleSeller: "seller",
	RoleAdmin:  "admin",
}

// String devuelve el nombre persistido del rol ("buyer", "seller", "admin").
func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return "unknown"
}

// Valid indica si el rol pertenece a la enumeración.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole convierte el texto persistido o recibido en el token en un Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buyer":
		return RoleBuyer, nil
	case "seller":
		return RoleSeller, nil
	case "admin":
		return RoleAdmin, nil
	}
	return RoleUnknown, fmt.Errorf("rol desconocido: %q", s)
}

// MarshalText serializa el rol como texto en JSON.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText acepta solo roles de la enumeración.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User representa un usuario del marketplace (comprador, vendedor o administrador).
type User struct {
	ID                 int64
	Username           string
	Email              string
	PasswordHash       string // bcrypt hash, nunca plano en dominio después de persistir
	Role               Role
	Name               string
	DeliveryAddress    string // solo compradores; vacío = sin dirección
	Location           string
	Background         string
	ProfileImageURL    string
	BackgroundImageURL string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasDeliveryAddress indica si el usuario puede recibir envíos.
func (u *User) HasDeliveryAddress() bool {
	return strings.TrimSpace(u.DeliveryAddress) != ""
}
