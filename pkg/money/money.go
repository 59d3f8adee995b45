// Package money formatea importes para etiquetas, comprobantes y exportaciones.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale locale de los comprobantes (pesos argentinos).
var DefaultLocale = language.MustParse("es-AR")

// Format formato corto usado en etiquetas de precio: "$9.00".
func Format(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// FormatOrDash igual que Format, pero "-" para precios ausentes.
func FormatOrDash(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return Format(*d)
}

// FormatLocal formatea con separadores del locale: es-AR -> "$12.345,50".
func FormatLocal(d decimal.Decimal, tag language.Tag) string {
	p := message.NewPrinter(tag)
	f := d.Round(2).InexactFloat64()
	if f < 0 {
		return "-$" + p.Sprint(number.Decimal(-f, number.Scale(2)))
	}
	return "$" + p.Sprint(number.Decimal(f, number.Scale(2)))
}
