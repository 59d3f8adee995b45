// Package pdf genera el comprobante de una venta registrada.
//
// Layout de la página A5:
//
//	┌───────────────────────────────────────────────┐
//	│  HEADER: Nombre del local │ N° venta + fecha  │
//	│  Registrada por / medio de cobro              │
//	│  ───────────────────────────────────────────  │
//	│  TABLA: Packs | Producto | Tipo | P.Pack | Sub│
//	│  ───────────────────────────────────────────  │
//	│  TOTAL COBRADO                                │
//	│  STOCK: antes, vendido y después             │
//	│  QR con el ID de la venta                     │
//	└───────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"

	"github.com/jhoicas/malexa-pos/internal/application/sales"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/pricing"
	"github.com/jhoicas/malexa-pos/pkg/money"
)

var _ sales.ReceiptGenerator = (*ReceiptGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 136, Green: 19, Blue: 55}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ReceiptGenerator implementa sales.ReceiptGenerator usando Maroto v2.
type ReceiptGenerator struct {
	storeName string
	loc       *time.Location
	locale    language.Tag
}

// NewReceiptGenerator construye el generador. loc es la zona de las fechas impresas.
func NewReceiptGenerator(storeName string, loc *time.Location) *ReceiptGenerator {
	if loc == nil {
		loc = time.Local
	}
	return &ReceiptGenerator{storeName: storeName, loc: loc, locale: money.DefaultLocale}
}

// GenerateReceiptPDF genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) GenerateReceiptPDF(_ context.Context, sale *entity.Sale) ([]byte, error) {
	if sale == nil {
		return nil, fmt.Errorf("pdf: venta nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(fmt.Sprintf("Venta %d", sale.ID), true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	m.AddRows(g.itemRows(sale.Items)...)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(sale))
	m.AddRows(movementRows(sale.StockMovements)...)
	m.AddRows(line.NewRow(3))
	m.AddRows(qrRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *ReceiptGenerator) headerRow(sale *entity.Sale) core.Row {
	return row.New(20).Add(
		col.New(7).Add(
			text.New(g.storeName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Registrada por: %s (%s)", sale.RecordedByName, sale.RecordedByRole), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
			text.New("Medio de cobro: "+string(sale.PaymentMethod), props.Text{
				Size: 8, Top: 14, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("N° "+strconv.FormatInt(sale.ID, 10), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 7,
			}),
			text.New(sale.Timestamp.In(g.loc).Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(7).Add(
		h("Packs", 1, align.Center),
		h("Producto", 5, align.Left),
		h("Tipo", 2, align.Left),
		h("P. pack", 2, align.Right),
		h("Subtotal", 2, align.Right),
	)
}

func (g *ReceiptGenerator) itemRows(items []entity.CartLineItem) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(6).Add(
			col.New(1).Add(text.New(strconv.Itoa(it.QuantityPacks), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(it.ProductName, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(pricing.TypeLabel(it.PricingType), props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(money.FormatLocal(it.PricePerPack, g.locale), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(money.FormatLocal(it.Subtotal, g.locale), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func (g *ReceiptGenerator) totalRow(sale *entity.Sale) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("TOTAL COBRADO:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 2,
		})),
		col.New(3).Add(text.New(money.FormatLocal(sale.TotalCharged, g.locale), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2,
		})),
	)
}

// movementRows detalle del stock descontado por producto.
func movementRows(movements []entity.StockMovement) []core.Row {
	if len(movements) == 0 {
		return nil
	}
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(text.New("MOVIMIENTOS DE STOCK", props.Text{
			Style: fontstyle.Bold, Size: 7, Color: colorPrimary, Top: 2,
		}))),
	}
	for _, m := range movements {
		rows = append(rows, row.New(4).Add(col.New(12).Add(text.New(
			fmt.Sprintf("%s: %d -> %d (vendidas %d)", m.ProductName, m.Before, m.After, m.Sold),
			props.Text{Size: 7, Color: colorGray, Left: 2},
		))))
	}
	return rows
}

func qrRow(sale *entity.Sale) core.Row {
	return row.New(28).Add(
		col.New(3).Add(code.NewQr("malexa-venta:"+strconv.FormatInt(sale.ID, 10), props.Rect{
			Percent: 95,
			Center:  true,
		})),
		col.New(9).Add(text.New("Conserve este comprobante. No válido como factura.", props.Text{
			Size: 7, Top: 10, Left: 3, Color: colorGray,
		})),
	)
}
