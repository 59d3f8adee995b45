package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/malexa-pos/internal/application/dto"
	"github.com/jhoicas/malexa-pos/internal/domain"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
	"github.com/jhoicas/malexa-pos/pkg/jwt"
)

// AdminUserID ID fijo del administrador predefinido.
const AdminUserID = "admin"

// Config configuración de tokens y del admin predefinido.
type Config struct {
	Secret             string
	Issuer             string
	ExpMinutes         int // sesiones de pestaña
	RememberExpMinutes int // sesiones "recordarme"
	AdminEmail         string
	AdminName          string
	AdminPassword      string
}

// CartDropper descarta el carrito de una sesión.
type CartDropper interface {
	Drop(sessionID string)
}

// AuthUseCase login, logout y resolución de sesiones.
type AuthUseCase struct {
	users     repository.UserRepository
	sessions  repository.SessionRepository
	carts     CartDropper
	cfg       Config
	adminHash []byte
	now       func() time.Time
}

// NewAuthUseCase construye el caso de uso. La contraseña del admin se hashea una sola vez acá.
func NewAuthUseCase(users repository.UserRepository, sessions repository.SessionRepository, carts CartDropper, cfg Config) (*AuthUseCase, error) {
	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("auth: contraseña del admin vacía")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hashear contraseña del admin: %w", err)
	}
	cfg.AdminPassword = ""
	if cfg.AdminName == "" {
		cfg.AdminName = "Administrador"
	}
	return &AuthUseCase{users: users, sessions: sessions, carts: carts, cfg: cfg, adminHash: hash, now: time.Now}, nil
}

// Login valida credenciales según el rol elegido, crea la sesión y firma el token.
// Admin: email configurado (sin distinguir mayúsculas). Staff: usuario del personal.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	var user entity.SessionUser
	switch entity.Role(strings.ToLower(strings.TrimSpace(in.Role))) {
	case entity.RoleAdmin:
		if !strings.EqualFold(identifier, uc.cfg.AdminEmail) {
			return nil, domain.ErrInvalidCredentials
		}
		if bcrypt.CompareHashAndPassword(uc.adminHash, []byte(in.Password)) != nil {
			return nil, domain.ErrInvalidCredentials
		}
		user = entity.SessionUser{ID: AdminUserID, Name: uc.cfg.AdminName, Email: uc.cfg.AdminEmail, Role: entity.RoleAdmin}
	case entity.RoleStaff:
		u, err := uc.users.FindByUsername(ctx, identifier)
		if err != nil {
			return nil, err
		}
		if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
			return nil, domain.ErrInvalidCredentials
		}
		user = entity.SessionUser{ID: u.ID, Name: u.Name, Username: u.Username, Role: entity.RoleStaff}
	default:
		return nil, domain.ErrInvalidCredentials
	}

	session := &entity.Session{
		ID:        uuid.New().String(),
		User:      user,
		Remember:  in.Remember,
		CreatedAt: uc.now(),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	exp := uc.cfg.ExpMinutes
	if in.Remember {
		exp = uc.cfg.RememberExpMinutes
	}
	token, err := jwt.Generate(uc.cfg.Secret, uc.cfg.Issuer, jwt.Identity{
		SessionID: session.ID,
		UserID:    user.ID,
		Name:      user.Name,
		Role:      string(user.Role),
	}, exp)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: session.CreatedAt.Add(time.Duration(exp) * time.Minute),
		Remember:  in.Remember,
		User:      toUserResponse(user),
	}, nil
}

// Logout borra la sesión de ambos almacenes y descarta su carrito.
func (uc *AuthUseCase) Logout(ctx context.Context, sessionID string) error {
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	if uc.carts != nil {
		uc.carts.Drop(sessionID)
	}
	return nil
}

// ResolveSession valida el token y devuelve la sesión vigente. Un token válido cuya sesión
// fue cerrada se rechaza.
func (uc *AuthUseCase) ResolveSession(ctx context.Context, token string) (*entity.Session, error) {
	id, err := jwt.Parse(uc.cfg.Secret, token)
	if err != nil {
		return nil, errors.Join(domain.ErrUnauthorized, err)
	}
	session, err := uc.sessions.Get(ctx, id.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.User.ID != id.UserID {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

func toUserResponse(u entity.SessionUser) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Role:     string(u.Role),
	}
}
