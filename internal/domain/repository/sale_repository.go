package repository

import (
	"context"

	"github.com/jhoicas/malexa-pos/internal/domain/entity"
)

// SaleRepository puerto del libro de ventas: solo lectura y alta.
type SaleRepository interface {
	Load(ctx context.Context) (*entity.Ledger, error)
	Append(ctx context.Context, sale *entity.Sale) error
}
