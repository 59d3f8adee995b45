package repository

import (
	"context"

	"github.com/jhoicas/malexa-pos/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para usuarios del personal (DIP).
type UserRepository interface {
	List(ctx context.Context) ([]*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error
}
