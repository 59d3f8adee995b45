package repository

import (
	"context"

	"github.com/jhoicas/malexa-pos/internal/domain/entity"
)

// ProductRepository puerto de persistencia del catálogo (DIP).
// El catálogo se lee y se escribe completo, en una sola operación.
type ProductRepository interface {
	Load(ctx context.Context) (*entity.Catalog, error)
	// Save escribe el catálogo si nadie lo modificó desde Load (compara Revision) y
	// actualiza catalog.Revision. Devuelve domain.ErrConflict si quedó desactualizado.
	Save(ctx context.Context, catalog *entity.Catalog) error
}
