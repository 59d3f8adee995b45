package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockMovementResponse cambio de stock de un producto en una venta.
type StockMovementResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Before      int    `json:"before"`
	Sold        int    `json:"sold"`
	After       int    `json:"after"`
}

// SaleResponse venta registrada.
type SaleResponse struct {
	ID             int64                   `json:"id"`
	Items          []CartLineResponse      `json:"items"`
	TotalCharged   decimal.Decimal         `json:"total_charged"`
	PaymentMethod  string                  `json:"payment_method"`
	Timestamp      time.Time               `json:"timestamp"`
	RecordedByName string                  `json:"recorded_by_name"`
	RecordedByRole string                  `json:"recorded_by_role"`
	StockMovements []StockMovementResponse `json:"stock_movements"`
}

// SaleListResponse ventas filtradas y su total.
type SaleListResponse struct {
	Date  string          `json:"date,omitempty"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
	Items []SaleResponse  `json:"items"`
}
