package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo persistido bajo KeyProducts (usable con el almacén o con una tx).
type ProductRepo struct {
	kv repository.KeyValueStore
}

// NewProductRepository construye el repositorio del catálogo.
func NewProductRepository(kv repository.KeyValueStore) *ProductRepo {
	return &ProductRepo{kv: kv}
}

// Load lee y normaliza el catálogo completo. Si la clave no existe devuelve un catálogo vacío.
func (r *ProductRepo) Load(ctx context.Context) (*entity.Catalog, error) {
	raw, rev, err := r.kv.Get(ctx, KeyProducts)
	if err != nil {
		return nil, fmt.Errorf("leer productos: %w", err)
	}
	catalog := &entity.Catalog{Revision: rev, Products: []*entity.Product{}}
	if len(raw) == 0 {
		return catalog, nil
	}
	var records []productRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decodificar productos: %w", err)
	}
	for _, rec := range records {
		catalog.Products = append(catalog.Products, rec.toEntity())
	}
	return catalog, nil
}

// Save escribe el catálogo completo en una sola operación, con control de revisión. Las claves
// que el modelo no interpreta se copian del registro guardado con el mismo ID.
func (r *ProductRepo) Save(ctx context.Context, catalog *entity.Catalog) error {
	extras, err := r.storedExtras(ctx)
	if err != nil {
		return err
	}
	records := make([]json.RawMessage, 0, len(catalog.Products))
	for _, p := range catalog.Products {
		rec, err := marshalProduct(productRecordFrom(p), extras[p.ID])
		if err != nil {
			return fmt.Errorf("codificar producto %d: %w", p.ID, err)
		}
		records = append(records, rec)
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("codificar productos: %w", err)
	}
	rev, err := r.kv.Put(ctx, KeyProducts, raw, catalog.Revision)
	if err != nil {
		return fmt.Errorf("guardar productos: %w", err)
	}
	catalog.Revision = rev
	return nil
}

func (r *ProductRepo) storedExtras(ctx context.Context) (map[int64]map[string]json.RawMessage, error) {
	raw, _, err := r.kv.Get(ctx, KeyProducts)
	if err != nil {
		return nil, fmt.Errorf("leer productos: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	extras, err := productExtras(raw)
	if err != nil {
		return nil, fmt.Errorf("decodificar productos: %w", err)
	}
	return extras, nil
}
