package dto

import "github.com/shopspring/decimal"

// AddCartItemRequest agrega packs de un producto al carrito.
type AddCartItemRequest struct {
	ProductID   int64  `json:"product_id"`
	PricingType string `json:"pricing_type"`
	Quantity    int    `json:"quantity"`
}

// ChangeQuantityRequest suma (o resta) packs a una línea.
type ChangeQuantityRequest struct {
	Delta int `json:"delta"`
}

// CheckoutRequest medio de cobro de la venta.
type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// CartLineResponse línea del carrito o de una venta.
type CartLineResponse struct {
	ID            string          `json:"id"`
	ProductID     int64           `json:"product_id"`
	ProductName   string          `json:"product_name"`
	PricingType   string          `json:"pricing_type"`
	PricingLabel  string          `json:"pricing_label"`
	PackSize      int             `json:"pack_size"`
	QuantityPacks int             `json:"quantity_packs"`
	Units         int             `json:"units"`
	PricePerPack  decimal.Decimal `json:"price_per_pack"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// CartResponse estado del carrito.
type CartResponse struct {
	Items []CartLineResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}
