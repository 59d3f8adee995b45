package entity

import (
	"sync"
	"time"
)

// IDGenerator genera IDs enteros derivados del timestamp en milisegundos.
// Dos llamadas en el mismo milisegundo no colisionan: se toma max(now, último+1).
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator construye el generador; now nil usa time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next devuelve el siguiente ID.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
