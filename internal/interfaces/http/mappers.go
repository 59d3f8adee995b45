package http

import (
	"github.com/jhoicas/malexa-pos/internal/application/dto"
	"github.com/jhoicas/malexa-pos/internal/application/sales"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/pricing"
)

func toLineResponses(items []entity.CartLineItem) []dto.CartLineResponse {
	out := make([]dto.CartLineResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.CartLineResponse{
			ID:            it.ID,
			ProductID:     it.ProductID,
			ProductName:   it.ProductName,
			PricingType:   string(it.PricingType),
			PricingLabel:  pricing.TypeLabel(it.PricingType),
			PackSize:      it.PackSize,
			QuantityPacks: it.QuantityPacks,
			Units:         it.Units(),
			PricePerPack:  it.PricePerPack,
			Subtotal:      it.Subtotal,
		})
	}
	return out
}

func toCartResponse(cart *sales.Cart) dto.CartResponse {
	items := cart.Items()
	return dto.CartResponse{Items: toLineResponses(items), Total: sales.SumLines(items)}
}

func toSaleResponse(s *entity.Sale) dto.SaleResponse {
	movements := make([]dto.StockMovementResponse, 0, len(s.StockMovements))
	for _, m := range s.StockMovements {
		movements = append(movements, dto.StockMovementResponse{
			ProductID:   m.ProductID,
			ProductName: m.ProductName,
			Before:      m.Before,
			Sold:        m.Sold,
			After:       m.After,
		})
	}
	return dto.SaleResponse{
		ID:             s.ID,
		Items:          toLineResponses(s.Items),
		TotalCharged:   s.TotalCharged,
		PaymentMethod:  string(s.PaymentMethod),
		Timestamp:      s.Timestamp,
		RecordedByName: s.RecordedByName,
		RecordedByRole: string(s.RecordedByRole),
		StockMovements: movements,
	}
}
