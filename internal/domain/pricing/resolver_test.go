package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/pricing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestOptions_UnidadYCombosEnOrden(t *testing.T) {
	p := &entity.Product{
		ID:        1,
		Name:      "Widget",
		UnitPrice: ptr(dec("5")),
		ComboMax:  4,
		ComboPrices: map[int]decimal.Decimal{
			4: dec("16"),
			2: dec("9"),
		},
	}

	opts := pricing.Options(p)
	require.Len(t, opts, 3)

	assert.Equal(t, entity.PricingUnit, opts[0].Value)
	assert.Equal(t, 1, opts[0].PackSize)
	assert.Equal(t, "Unidad ($5.00)", opts[0].Label)

	assert.Equal(t, entity.PricingCombo2, opts[1].Value)
	assert.Equal(t, 2, opts[1].PackSize)
	assert.True(t, opts[1].PricePerPack.Equal(dec("9")))
	assert.Equal(t, "Combo 2x ($9.00)", opts[1].Label)

	assert.Equal(t, entity.PricingCombo4, opts[2].Value)
	assert.Equal(t, 4, opts[2].PackSize)
}

func TestOptions_ComboDisponiblePorPrecioAunqueSupereComboMax(t *testing.T) {
	p := &entity.Product{
		ComboMax:    2,
		ComboPrices: map[int]decimal.Decimal{5: dec("20")},
	}
	opts := pricing.Options(p)
	require.Len(t, opts, 1)
	assert.Equal(t, entity.PricingCombo5, opts[0].Value)
}

func TestOptions_SinPrecios(t *testing.T) {
	assert.Empty(t, pricing.Options(&entity.Product{Name: "Sin precio"}))
	assert.Empty(t, pricing.Options(nil))
}

func TestFind(t *testing.T) {
	p := &entity.Product{UnitPrice: ptr(dec("5"))}

	o, ok := pricing.Find(p, entity.PricingUnit)
	require.True(t, ok)
	assert.True(t, o.PricePerPack.Equal(dec("5")))

	_, ok = pricing.Find(p, entity.PricingCombo2)
	assert.False(t, ok)
}

func TestParseTypeYPackSize(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		pack int
	}{
		{"unit", true, 1},
		{" Combo3 ", true, 3},
		{"combo5", true, 5},
		{"combo1", false, 0},
		{"combo6", false, 0},
		{"docena", false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			typ, ok := pricing.ParseType(tc.in)
			assert.Equal(t, tc.ok, ok)
			if ok {
				n, _ := pricing.PackSize(typ)
				assert.Equal(t, tc.pack, n)
			}
		})
	}
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "Unidad", pricing.TypeLabel(entity.PricingUnit))
	assert.Equal(t, "Combo 3x", pricing.TypeLabel(entity.PricingCombo3))
}
