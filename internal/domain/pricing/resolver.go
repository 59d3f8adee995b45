// Package pricing deriva las opciones de compra (unidad y combos 2x–5x) de un producto.
// Funciones puras: solo dependen del estado del producto al momento de la llamada.
package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/pkg/money"
)

// Option opción de precio seleccionable para un producto.
type Option struct {
	Value        entity.PricingType
	Label        string
	PackSize     int
	PricePerPack decimal.Decimal
}

// Options devuelve las opciones en orden: unidad primero, luego combos 2x..5x ascendente.
// La disponibilidad de un combo depende solo de que tenga precio, no de ComboMax,
// para tolerar registros viejos. Sin precios válidos devuelve una lista vacía.
func Options(p *entity.Product) []Option {
	if p == nil {
		return nil
	}
	opts := make([]Option, 0, 1+entity.MaxComboTier-entity.MinComboTier+1)
	if p.UnitPrice != nil {
		opts = append(opts, Option{
			Value:        entity.PricingUnit,
			Label:        fmt.Sprintf("Unidad (%s)", money.Format(*p.UnitPrice)),
			PackSize:     1,
			PricePerPack: *p.UnitPrice,
		})
	}
	for n := entity.MinComboTier; n <= entity.MaxComboTier; n++ {
		price, ok := p.ComboPrice(n)
		if !ok {
			continue
		}
		opts = append(opts, Option{
			Value:        ComboType(n),
			Label:        fmt.Sprintf("Combo %dx (%s)", n, money.Format(price)),
			PackSize:     n,
			PricePerPack: price,
		})
	}
	return opts
}

// Find busca la opción t entre las disponibles del producto.
func Find(p *entity.Product, t entity.PricingType) (Option, bool) {
	for _, o := range Options(p) {
		if o.Value == t {
			return o, true
		}
	}
	return Option{}, false
}

// ComboType devuelve el tipo de precio del combo n ("combo3").
func ComboType(n int) entity.PricingType {
	return entity.PricingType("combo" + strconv.Itoa(n))
}

// PackSize tamaño de pack de un tipo de precio: 1 para unidad, N para comboN.
func PackSize(t entity.PricingType) (int, bool) {
	if t == entity.PricingUnit {
		return 1, true
	}
	s, ok := strings.CutPrefix(string(t), "combo")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < entity.MinComboTier || n > entity.MaxComboTier {
		return 0, false
	}
	return n, true
}

// ParseType valida un tipo de precio recibido como texto.
func ParseType(s string) (entity.PricingType, bool) {
	t := entity.PricingType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := PackSize(t); !ok {
		return "", false
	}
	return t, true
}

// TypeLabel etiqueta legible del tipo: "Unidad" o "Combo 3x".
func TypeLabel(t entity.PricingType) string {
	n, ok := PackSize(t)
	switch {
	case !ok:
		return string(t)
	case n == 1:
		return "Unidad"
	default:
		return fmt.Sprintf("Combo %dx", n)
	}
}
