// Package catalog mantiene la copia en memoria del catálogo y del libro de ventas que
// sirven las lecturas, y la refresca cuando el almacén avisa que una colección cambió.
package catalog

import (
	"context"
	"sync"

	"github.com/jhoicas/malexa-pos/internal/application/sales"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
	"github.com/jhoicas/malexa-pos/pkg/logger"
)

var (
	_ sales.ProductLookup = (*Snapshot)(nil)
	_ sales.SalesSource   = (*Snapshot)(nil)
)

// Snapshot copia en memoria de productos y ventas.
type Snapshot struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	log         *logger.Logger

	mu       sync.RWMutex
	products *entity.Catalog
	ledger   *entity.Ledger
}

// NewSnapshot construye la copia vacía; llamar Reload antes de usarla.
func NewSnapshot(productRepo repository.ProductRepository, saleRepo repository.SaleRepository, log *logger.Logger) *Snapshot {
	if log == nil {
		log = logger.Nop()
	}
	return &Snapshot{
		productRepo: productRepo,
		saleRepo:    saleRepo,
		log:         log.Component("snapshot"),
		products:    &entity.Catalog{},
		ledger:      &entity.Ledger{},
	}
}

// Reload relee ambas colecciones.
func (s *Snapshot) Reload(ctx context.Context) error {
	if err := s.ReloadProducts(ctx); err != nil {
		return err
	}
	return s.ReloadSales(ctx)
}

// ReloadProducts relee el catálogo.
func (s *Snapshot) ReloadProducts(ctx context.Context) error {
	c, err := s.productRepo.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.products = c
	s.mu.Unlock()
	return nil
}

// ReloadSales relee el libro de ventas.
func (s *Snapshot) ReloadSales(ctx context.Context) error {
	l, err := s.saleRepo.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.ledger = l
	s.mu.Unlock()
	return nil
}

// Watch se suscribe a notifier y recarga la colección cuya clave cambió. Devuelve la
// función para dejar de escuchar.
func (s *Snapshot) Watch(ctx context.Context, notifier repository.ChangeNotifier, productsKey, salesKey string) func() {
	return notifier.Subscribe(func(key string) {
		var err error
		switch key {
		case productsKey:
			err = s.ReloadProducts(ctx)
		case salesKey:
			err = s.ReloadSales(ctx)
		default:
			return
		}
		if err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("no se pudo recargar la colección")
			return
		}
		s.log.Debug().Str("key", key).Msg("colección recargada")
	})
}

// Products copia del catálogo actual.
func (s *Snapshot) Products() []*entity.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Product, len(s.products.Products))
	for i, p := range s.products.Products {
		out[i] = p.Clone()
	}
	return out
}

// FindProduct copia del producto id, si existe.
func (s *Snapshot) FindProduct(id int64) (*entity.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.products.Find(id)
	if p == nil {
		return nil, false
	}
	return p.Clone(), true
}

// Sales ventas actuales en orden de registro. Las ventas no se mutan, se comparten.
func (s *Snapshot) Sales() []*entity.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*entity.Sale(nil), s.ledger.Sales...)
}
