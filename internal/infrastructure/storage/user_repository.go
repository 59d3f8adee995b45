package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/malexa-pos/internal/domain"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios del personal bajo KeyUsers.
type UserRepo struct {
	kv repository.KeyValueStore
}

// NewUserRepository construye el repositorio de usuarios.
func NewUserRepository(kv repository.KeyValueStore) *UserRepo {
	return &UserRepo{kv: kv}
}

// List devuelve todos los usuarios. Los registros viejos con contraseña en texto plano se
// migran a bcrypt y se reescriben una única vez.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	users, _, err := r.load(ctx)
	return users, err
}

// FindByUsername búsqueda sin distinguir mayúsculas. nil si no existe.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	users, _, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, strings.TrimSpace(username)) {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID obtiene un usuario por ID. nil si no existe.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	users, _, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create agrega un usuario. Devuelve domain.ErrDuplicate si el username ya existe.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	users, rev, err := r.load(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, user.Username) {
			return domain.ErrDuplicate
		}
	}
	return r.save(ctx, append(users, user), rev)
}

// Update reemplaza el usuario con el mismo ID.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	users, rev, err := r.load(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, u := range users {
		if u.ID == user.ID {
			idx = i
			continue
		}
		if strings.EqualFold(u.Username, user.Username) {
			return domain.ErrDuplicate
		}
	}
	if idx < 0 {
		return domain.ErrNotFound
	}
	users[idx] = user
	return r.save(ctx, users, rev)
}

// Delete elimina un usuario por ID.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	users, rev, err := r.load(ctx)
	if err != nil {
		return err
	}
	out := users[:0]
	for _, u := range users {
		if u.ID != id {
			out = append(out, u)
		}
	}
	if len(out) == len(users) {
		return domain.ErrNotFound
	}
	return r.save(ctx, out, rev)
}

func (r *UserRepo) load(ctx context.Context) ([]*entity.User, int64, error) {
	raw, rev, err := r.kv.Get(ctx, KeyUsers)
	if err != nil {
		return nil, 0, fmt.Errorf("leer usuarios: %w", err)
	}
	users := []*entity.User{}
	if len(raw) == 0 {
		return users, rev, nil
	}
	var records []userRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, 0, fmt.Errorf("decodificar usuarios: %w", err)
	}
	migrated := false
	for _, rec := range records {
		u := rec.toEntity()
		if u.PasswordHash == "" && rec.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(rec.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, 0, fmt.Errorf("migrar contraseña de %s: %w", rec.Username, err)
			}
			u.PasswordHash = string(hash)
			migrated = true
		}
		users = append(users, u)
	}
	if migrated {
		// Si otro escritor se adelantó, la migración se reintenta en la próxima lectura.
		if err := r.save(ctx, users, rev); err != nil && !errors.Is(err, domain.ErrConflict) {
			return nil, 0, err
		}
		_, rev, err = r.kv.Get(ctx, KeyUsers)
		if err != nil {
			return nil, 0, fmt.Errorf("leer usuarios: %w", err)
		}
	}
	return users, rev, nil
}

func (r *UserRepo) save(ctx context.Context, users []*entity.User, rev int64) error {
	records := make([]userRecord, 0, len(users))
	for _, u := range users {
		records = append(records, userRecordFrom(u))
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("codificar usuarios: %w", err)
	}
	if _, err := r.kv.Put(ctx, KeyUsers, raw, rev); err != nil {
		return fmt.Errorf("guardar usuarios: %w", err)
	}
	return nil
}
