package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo libro de ventas bajo KeySales. Append conserva byte a byte los registros previos.
type SaleRepo struct {
	kv repository.KeyValueStore
}

// NewSaleRepository construye el repositorio de ventas.
func NewSaleRepository(kv repository.KeyValueStore) *SaleRepo {
	return &SaleRepo{kv: kv}
}

// Load lee todas las ventas en orden de registro.
func (r *SaleRepo) Load(ctx context.Context) (*entity.Ledger, error) {
	raws, rev, err := r.loadRaw(ctx)
	if err != nil {
		return nil, err
	}
	ledger := &entity.Ledger{Revision: rev, Sales: make([]*entity.Sale, 0, len(raws))}
	for i, raw := range raws {
		var rec saleRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decodificar venta %d: %w", i, err)
		}
		ledger.Sales = append(ledger.Sales, rec.toEntity())
	}
	return ledger, nil
}

// Append agrega la venta al final del libro en una sola escritura.
func (r *SaleRepo) Append(ctx context.Context, sale *entity.Sale) error {
	raws, rev, err := r.loadRaw(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(saleRecordFrom(sale))
	if err != nil {
		return fmt.Errorf("codificar venta: %w", err)
	}
	out, err := json.Marshal(append(raws, raw))
	if err != nil {
		return fmt.Errorf("codificar ventas: %w", err)
	}
	if _, err := r.kv.Put(ctx, KeySales, out, rev); err != nil {
		return fmt.Errorf("guardar ventas: %w", err)
	}
	return nil
}

func (r *SaleRepo) loadRaw(ctx context.Context) ([]json.RawMessage, int64, error) {
	raw, rev, err := r.kv.Get(ctx, KeySales)
	if err != nil {
		return nil, 0, fmt.Errorf("leer ventas: %w", err)
	}
	if len(raw) == 0 {
		return nil, rev, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(raw, &raws); err != nil {
		return nil, 0, fmt.Errorf("decodificar ventas: %w", err)
	}
	return raws, rev, nil
}
