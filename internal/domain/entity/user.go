package entity

import "time"

// Role rol de un usuario del panel.
type Role string

// Roles válidos para User.
const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Valid indica si el rol es conocido.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// CanViewAllSales el admin ve el libro completo; el personal solo sus ventas.
func (r Role) CanViewAllSales() bool { return r == RoleAdmin }

// CanManageCatalog solo el admin da de alta, edita o borra productos y usuarios.
func (r Role) CanManageCatalog() bool { return r == RoleAdmin }

// User usuario del personal creado por el admin. El admin predefinido vive en configuración.
type User struct {
	ID           string
	Username     string
	Name         string
	Role         Role
	PasswordHash string // bcrypt
	CreatedAt    time.Time
}

// Actor identidad de quien opera, estampada en cada venta.
type Actor struct {
	UserID string
	Name   string
	Role   Role
}
