// Package export serializa el libro de ventas para el contador.
package export

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/malexa-pos/internal/application/sales"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
)

var _ sales.LedgerExporter = (*XMLExporter)(nil)

// XMLExporter arma un documento <ventas> con una entrada por venta, sus líneas y movimientos.
type XMLExporter struct {
	loc *time.Location
	now func() time.Time
}

// NewXMLExporter construye el exportador. loc es la zona de las fechas del documento.
func NewXMLExporter(loc *time.Location) *XMLExporter {
	if loc == nil {
		loc = time.Local
	}
	return &XMLExporter{loc: loc, now: time.Now}
}

// ExportLedger serializa las ventas con indentación de dos espacios.
func (e *XMLExporter) ExportLedger(list []*entity.Sale, total string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("ventas")
	root.CreateAttr("generado", e.now().In(e.loc).Format(time.RFC3339))
	root.CreateAttr("cantidad", strconv.Itoa(len(list)))
	root.CreateAttr("total", total)

	for _, s := range list {
		v := root.CreateElement("venta")
		v.CreateAttr("id", strconv.FormatInt(s.ID, 10))
		v.CreateElement("fecha").SetText(s.Timestamp.In(e.loc).Format(time.RFC3339))
		v.CreateElement("totalCobrado").SetText(s.TotalCharged.StringFixed(2))
		v.CreateElement("metodoCobro").SetText(string(s.PaymentMethod))
		reg := v.CreateElement("registradoPor")
		reg.CreateAttr("rol", string(s.RecordedByRole))
		reg.SetText(s.RecordedByName)

		items := v.CreateElement("items")
		for _, it := range s.Items {
			el := items.CreateElement("item")
			el.CreateAttr("productId", strconv.FormatInt(it.ProductID, 10))
			el.CreateAttr("tipo", string(it.PricingType))
			el.CreateAttr("packSize", strconv.Itoa(it.PackSize))
			el.CreateAttr("packs", strconv.Itoa(it.QuantityPacks))
			el.CreateAttr("precioPack", it.PricePerPack.StringFixed(2))
			el.CreateAttr("subtotal", it.Subtotal.StringFixed(2))
			el.SetText(it.ProductName)
		}

		movs := v.CreateElement("stock")
		for _, m := range s.StockMovements {
			el := movs.CreateElement("movimiento")
			el.CreateAttr("productId", strconv.FormatInt(m.ProductID, 10))
			el.CreateAttr("antes", strconv.Itoa(m.Before))
			el.CreateAttr("vendido", strconv.Itoa(m.Sold))
			el.CreateAttr("despues", strconv.Itoa(m.After))
			el.SetText(m.ProductName)
		}
	}

	doc.Indent(2)
	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("export: escribir XML: %w", err)
	}
	return out.Bytes(), nil
}
