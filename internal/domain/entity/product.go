package entity

import (
	"github.com/shopspring/decimal"
)

// Límites de los combos: un combo Nx vende N unidades como un solo pack.
const (
	MinComboTier = 2
	MaxComboTier = 5
)

// Product producto del catálogo con precio unitario y precios por combo (2x a 5x).
// Quantity es el stock en unidades; solo el checkout lo descuenta.
type Product struct {
	ID        int64
	Name      string
	Quantity  int
	UnitPrice *decimal.Decimal // nil = no se vende por unidad
	ComboMax  int              // 2..5
	// ComboPrices precio por pack para cada combo; una clave ausente = combo no disponible.
	ComboPrices map[int]decimal.Decimal
}

// ComboPrice devuelve el precio del combo n, si existe.
func (p *Product) ComboPrice(n int) (decimal.Decimal, bool) {
	if p == nil || p.ComboPrices == nil {
		return decimal.Zero, false
	}
	d, ok := p.ComboPrices[n]
	return d, ok
}

// Clone copia profunda; las mutaciones sobre la copia no afectan al original.
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	if p.UnitPrice != nil {
		u := *p.UnitPrice
		c.UnitPrice = &u
	}
	if p.ComboPrices != nil {
		c.ComboPrices = make(map[int]decimal.Decimal, len(p.ComboPrices))
		for k, v := range p.ComboPrices {
			c.ComboPrices[k] = v
		}
	}
	return &c
}

// NormalizeComboMax lleva ComboMax a [2,5]. Un valor ausente o fuera de rango infiere el tope
// desde el combo más alto con precio (registros viejos) y si no hay ninguno queda en 2.
func (p *Product) NormalizeComboMax() {
	if p.ComboMax >= MinComboTier && p.ComboMax <= MaxComboTier {
		return
	}
	p.ComboMax = MinComboTier
	for n := MaxComboTier; n >= MinComboTier; n-- {
		if _, ok := p.ComboPrices[n]; ok {
			p.ComboMax = n
			return
		}
	}
}

// Catalog colección completa de productos tal como se persiste, con su revisión
// para control de concurrencia optimista.
type Catalog struct {
	Products []*Product
	Revision int64
}

// Find busca un producto por ID.
func (c *Catalog) Find(id int64) *Product {
	if c == nil {
		return nil
	}
	for _, p := range c.Products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Clone copia profunda del catálogo.
func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return nil
	}
	out := &Catalog{Revision: c.Revision, Products: make([]*Product, len(c.Products))}
	for i, p := range c.Products {
		out.Products[i] = p.Clone()
	}
	return out
}
