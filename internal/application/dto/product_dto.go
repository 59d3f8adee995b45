package dto

import "github.com/shopspring/decimal"

// ProductRequest alta o edición de un producto (el formulario completo).
// Los precios nil dejan la opción sin vender; los combos por encima de combo_max se descartan.
type ProductRequest struct {
	Name      string           `json:"name"`
	Quantity  int              `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	ComboMax  int              `json:"combo_max"`
	Combo2    *decimal.Decimal `json:"combo2"`
	Combo3    *decimal.Decimal `json:"combo3"`
	Combo4    *decimal.Decimal `json:"combo4"`
	Combo5    *decimal.Decimal `json:"combo5"`
}

// ComboPrice precio del combo n en el request.
func (r ProductRequest) ComboPrice(n int) *decimal.Decimal {
	switch n {
	case 2:
		return r.Combo2
	case 3:
		return r.Combo3
	case 4:
		return r.Combo4
	case 5:
		return r.Combo5
	}
	return nil
}

// PricingOptionResponse opción de compra de un producto.
type PricingOptionResponse struct {
	Value        string          `json:"value"`
	Label        string          `json:"label"`
	PackSize     int             `json:"pack_size"`
	PricePerPack decimal.Decimal `json:"price_per_pack"`
}

// ProductResponse salida de un producto con sus opciones de compra ya resueltas.
type ProductResponse struct {
	ID        int64                   `json:"id"`
	Name      string                  `json:"name"`
	Quantity  int                     `json:"quantity"`
	UnitPrice *decimal.Decimal        `json:"unit_price"`
	ComboMax  int                     `json:"combo_max"`
	Combo2    *decimal.Decimal        `json:"combo2"`
	Combo3    *decimal.Decimal        `json:"combo3"`
	Combo4    *decimal.Decimal        `json:"combo4"`
	Combo5    *decimal.Decimal        `json:"combo5"`
	Options   []PricingOptionResponse `json:"options"`
}

// ProductListResponse listado de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
}
