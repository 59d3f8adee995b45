package sales

import "github.com/jhoicas/malexa-pos/internal/domain/entity"

// SetLines reemplaza las líneas del carrito sin pasar por AddItem.
func (c *Cart) SetLines(items ...entity.CartLineItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]entity.CartLineItem(nil), items...)
}
