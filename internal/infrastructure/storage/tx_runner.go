package storage

import (
	"context"

	"github.com/jhoicas/malexa-pos/internal/application/sales"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
)

var _ sales.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks con repositorios atados a una transacción del almacén.
type TxRunner struct {
	tx repository.Transactor
}

// NewTxRunner construye el runner sobre cualquier almacén transaccional (memoria o Postgres).
func NewTxRunner(tx repository.Transactor) *TxRunner {
	return &TxRunner{tx: tx}
}

// Run abre la transacción, ejecuta fn y confirma solo si fn no devolvió error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return r.tx.WithinTx(ctx, func(kv repository.KeyValueStore) error {
		return fn(NewProductRepository(kv), NewSaleRepository(kv))
	})
}
