package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod medio de cobro.
type PaymentMethod string

// Medios de cobro válidos.
const (
	PaymentCash        PaymentMethod = "Efectivo"
	PaymentMercadoPago PaymentMethod = "Mercado Pago"
)

// Valid indica si es un medio de cobro soportado.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentMercadoPago
}

// PricingType tipo de precio de una línea: unidad o combo Nx.
type PricingType string

// Tipos de precio.
const (
	PricingUnit   PricingType = "unit"
	PricingCombo2 PricingType = "combo2"
	PricingCombo3 PricingType = "combo3"
	PricingCombo4 PricingType = "combo4"
	PricingCombo5 PricingType = "combo5"
)

// MaxQuantityPacks tope de packs por línea. Con packs de hasta MaxComboTier unidades la
// demanda de una línea nunca desborda int.
const MaxQuantityPacks = 1_000_000

// CartLineItem línea del carrito (y, copiada, de la venta).
// PricePerPack se congela al agregar; cambios de precio posteriores no la afectan.
type CartLineItem struct {
	ID            string
	ProductID     int64
	ProductName   string
	PricingType   PricingType
	PackSize      int
	QuantityPacks int
	PricePerPack  decimal.Decimal
	Subtotal      decimal.Decimal
}

// Units unidades físicas que representa la línea.
func (it CartLineItem) Units() int {
	return it.PackSize * it.QuantityPacks
}

// Recalc recalcula Subtotal a partir de PricePerPack y QuantityPacks.
func (it *CartLineItem) Recalc() {
	it.Subtotal = it.PricePerPack.Mul(decimal.NewFromInt(int64(it.QuantityPacks)))
}

// StockMovement cambio de stock de un producto producido por una venta.
type StockMovement struct {
	ProductID   int64
	ProductName string
	Before      int
	Sold        int
	After       int
}

// Sale venta registrada. Inmutable una vez creada.
type Sale struct {
	ID             int64
	Items          []CartLineItem
	TotalCharged   decimal.Decimal
	PaymentMethod  PaymentMethod
	Timestamp      time.Time
	RecordedByName string
	RecordedByRole Role
	StockMovements []StockMovement
}

// Clone copia profunda de la venta.
func (s *Sale) Clone() *Sale {
	if s == nil {
		return nil
	}
	c := *s
	c.Items = append([]CartLineItem(nil), s.Items...)
	c.StockMovements = append([]StockMovement(nil), s.StockMovements...)
	return &c
}

// Ledger colección de ventas persistidas (solo se agregan) con su revisión.
type Ledger struct {
	Sales    []*Sale
	Revision int64
}
