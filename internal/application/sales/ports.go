package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
)

// TxRunner ejecuta fn con repositorios atados a una misma transacción del almacén.
// Garantiza que el descuento de stock y el alta de la venta se confirmen juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// ProductLookup resuelve productos por ID contra la copia en memoria del catálogo.
type ProductLookup interface {
	FindProduct(id int64) (*entity.Product, bool)
}

// SalesSource lista las ventas vigentes (copia en memoria del libro).
type SalesSource interface {
	Sales() []*entity.Sale
}

// CheckoutObserver recibe el resultado de cada intento de checkout (métricas).
type CheckoutObserver interface {
	ObserveCheckout(result string, units int)
}

// ReceiptGenerator genera el comprobante PDF de una venta.
type ReceiptGenerator interface {
	GenerateReceiptPDF(ctx context.Context, sale *entity.Sale) ([]byte, error)
}

// LedgerExporter exporta ventas a un documento (XML para el contador).
type LedgerExporter interface {
	ExportLedger(sales []*entity.Sale, total string) ([]byte, error)
}

// SalesTotaler suma los totales del libro directamente en el almacén. Es opcional: sirve para
// contrastar la suma en memoria cuando el almacén lo soporta (Postgres).
type SalesTotaler interface {
	SumSalesTotal(ctx context.Context) (decimal.Decimal, error)
}
