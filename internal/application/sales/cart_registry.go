package sales

import "sync"

// CartRegistry carritos en memoria por sesión. No se persisten.
type CartRegistry struct {
	mu     sync.Mutex
	lookup ProductLookup
	carts  map[string]*Cart
}

// NewCartRegistry construye el registro.
func NewCartRegistry(lookup ProductLookup) *CartRegistry {
	return &CartRegistry{lookup: lookup, carts: make(map[string]*Cart)}
}

// Get devuelve el carrito de la sesión, creándolo vacío si no existe.
func (r *CartRegistry) Get(sessionID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[sessionID]
	if !ok {
		c = NewCart(r.lookup)
		r.carts[sessionID] = c
	}
	return c
}

// Drop descarta el carrito de la sesión (logout).
func (r *CartRegistry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
}
