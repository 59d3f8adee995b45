package sales

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/malexa-pos/internal/domain"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/pricing"
)

// Cart líneas de una venta en armado. Vive solo en memoria, una por sesión.
type Cart struct {
	mu      sync.Mutex
	lookup  ProductLookup
	items   []entity.CartLineItem
	newLine func() string
}

// NewCart crea un carrito vacío que resuelve productos con lookup.
func NewCart(lookup ProductLookup) *Cart {
	return &Cart{
		lookup:  lookup,
		newLine: func() string { return uuid.NewString() },
	}
}

// AddItem agrega packs de un producto al precio vigente de pricingType. Si ya hay una línea
// con el mismo producto, tipo y precio, suma cantidades en lugar de duplicar la fila.
func (c *Cart) AddItem(productID int64, pricingType entity.PricingType, quantityPacks int) (entity.CartLineItem, error) {
	product, ok := c.lookup.FindProduct(productID)
	if !ok || product == nil {
		return entity.CartLineItem{}, domain.NewValidationError("product_id", "seleccioná un producto")
	}
	if quantityPacks < 1 || quantityPacks > entity.MaxQuantityPacks {
		return entity.CartLineItem{}, domain.NewValidationError("quantity", "cantidad inválida")
	}
	opt, ok := pricing.Find(product, pricingType)
	if !ok {
		return entity.CartLineItem{}, domain.NewValidationError("pricing_type", "tipo de precio %q no disponible para %q", pricingType, product.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		it := &c.items[i]
		if it.ProductID == productID && it.PricingType == opt.Value && it.PricePerPack.Equal(opt.PricePerPack) {
			if it.QuantityPacks > entity.MaxQuantityPacks-quantityPacks {
				return entity.CartLineItem{}, domain.NewValidationError("quantity", "una línea no puede superar %d packs", entity.MaxQuantityPacks)
			}
			it.QuantityPacks += quantityPacks
			it.Recalc()
			return *it, nil
		}
	}

	line := entity.CartLineItem{
		ID:            c.newLine(),
		ProductID:     product.ID,
		ProductName:   product.Name,
		PricingType:   opt.Value,
		PackSize:      opt.PackSize,
		QuantityPacks: quantityPacks,
		PricePerPack:  opt.PricePerPack,
	}
	line.Recalc()
	c.items = append(c.items, line)
	return line, nil
}

// ChangeQuantity suma delta packs a la línea; nunca baja de 1 (para eso está RemoveItem)
// ni supera entity.MaxQuantityPacks.
func (c *Cart) ChangeQuantity(lineID string, delta int) (entity.CartLineItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		it := &c.items[i]
		if it.ID != lineID {
			continue
		}
		it.QuantityPacks = clampPacks(it.QuantityPacks, delta)
		it.Recalc()
		return *it, nil
	}
	return entity.CartLineItem{}, domain.ErrNotFound
}

// clampPacks suma delta a cur dentro de [1, MaxQuantityPacks] sin desbordar.
func clampPacks(cur, delta int) int {
	cur = min(max(cur, 1), entity.MaxQuantityPacks)
	switch {
	case delta > entity.MaxQuantityPacks-cur:
		return entity.MaxQuantityPacks
	case delta < 1-cur:
		return 1
	}
	return cur + delta
}

// RemoveItem elimina la línea por ID.
func (c *Cart) RemoveItem(lineID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == lineID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// Clear vacía el carrito.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Items copia de las líneas actuales.
func (c *Cart) Items() []entity.CartLineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]entity.CartLineItem(nil), c.items...)
}

// Len cantidad de líneas.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Total suma de subtotales, calculada en cada llamada.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SumLines(c.items)
}

// SumLines suma los subtotales de las líneas.
func SumLines(items []entity.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal)
	}
	return total
}
