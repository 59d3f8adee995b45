package export_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/infrastructure/export"
)

func TestXMLExporter_ExportLedger(t *testing.T) {
	sales := []*entity.Sale{{
		ID:             42,
		TotalCharged:   decimal.RequireFromString("33"),
		PaymentMethod:  entity.PaymentMercadoPago,
		Timestamp:      time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
		RecordedByName: "Ana & Co",
		RecordedByRole: entity.RoleStaff,
		Items: []entity.CartLineItem{{
			ProductID: 1, ProductName: "Widget", PricingType: entity.PricingCombo2, PackSize: 2, QuantityPacks: 2,
			PricePerPack: decimal.NewFromInt(9), Subtotal: decimal.NewFromInt(18),
		}},
		StockMovements: []entity.StockMovement{{ProductID: 1, ProductName: "Widget", Before: 10, Sold: 4, After: 6}},
	}}

	out, err := export.NewXMLExporter(time.UTC).ExportLedger(sales, "33.00")
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(out))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "ventas", root.Tag)
	assert.Equal(t, "1", root.SelectAttrValue("cantidad", ""))
	assert.Equal(t, "33.00", root.SelectAttrValue("total", ""))

	venta := root.FindElement("venta[@id='42']")
	require.NotNil(t, venta)
	assert.Equal(t, "Mercado Pago", venta.FindElement("metodoCobro").Text())
	assert.Equal(t, "Ana & Co", venta.FindElement("registradoPor").Text(), "el texto se escapa y se recupera")

	item := venta.FindElement("items/item")
	require.NotNil(t, item)
	assert.Equal(t, "combo2", item.SelectAttrValue("tipo", ""))
	assert.Equal(t, "18.00", item.SelectAttrValue("subtotal", ""))

	mov := venta.FindElement("stock/movimiento")
	require.NotNil(t, mov)
	assert.Equal(t, "4", mov.SelectAttrValue("vendido", ""))
}
