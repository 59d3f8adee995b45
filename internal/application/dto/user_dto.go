package dto

import "time"

// CreateUserRequest alta de un usuario del personal (password en texto, se hashea en el use case).
type CreateUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// UpdateUserRequest edición parcial; password vacío conserva la actual.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// LoginRequest entrada de login. Identifier es el email del admin o el usuario del personal.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Remember   bool   `json:"remember"`
}

// LoginResponse token JWT de la sesión y el usuario autenticado.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Remember  bool         `json:"remember"`
	User      UserResponse `json:"user"`
}
