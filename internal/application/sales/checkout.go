package sales

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/jhoicas/malexa-pos/internal/domain"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
	"github.com/jhoicas/malexa-pos/pkg/logger"
	"github.com/jhoicas/malexa-pos/pkg/metrics"
)

// CheckoutUseCase registra la venta de un carrito y descuenta el stock.
type CheckoutUseCase struct {
	txRunner TxRunner
	ids      *entity.IDGenerator
	observer CheckoutObserver
	now      func() time.Time
	log      *logger.Logger
}

// NewCheckoutUseCase construye el caso de uso. observer y log pueden ser nil.
func NewCheckoutUseCase(txRunner TxRunner, ids *entity.IDGenerator, observer CheckoutObserver, log *logger.Logger) *CheckoutUseCase {
	if ids == nil {
		ids = entity.NewIDGenerator(nil)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CheckoutUseCase{
		txRunner: txRunner,
		ids:      ids,
		observer: observer,
		now:      time.Now,
		log:      log.Component("checkout"),
	}
}

// demand unidades pedidas de un producto, sumando todas sus líneas.
type demand struct {
	productID int64
	name      string
	units     int
}

// unitsByProduct agrupa la demanda por producto en orden de primera aparición. Una línea
// con cantidad o pack fuera de rango, o una suma que desbordaría int, es un error.
func unitsByProduct(items []entity.CartLineItem) ([]demand, error) {
	idx := make(map[int64]int, len(items))
	out := make([]demand, 0, len(items))
	for _, it := range items {
		if it.PackSize < 1 || it.PackSize > entity.MaxComboTier ||
			it.QuantityPacks < 1 || it.QuantityPacks > entity.MaxQuantityPacks {
			return nil, domain.NewValidationError("quantity", "cantidad inválida para %q", it.ProductName)
		}
		i, ok := idx[it.ProductID]
		if !ok {
			idx[it.ProductID] = len(out)
			out = append(out, demand{productID: it.ProductID, name: it.ProductName})
			i = len(out) - 1
		}
		units := it.Units()
		if out[i].units > math.MaxInt-units {
			return nil, domain.NewValidationError("quantity", "demanda de %q fuera de rango", it.ProductName)
		}
		out[i].units += units
	}
	return out, nil
}

// Checkout valida el stock de todos los productos antes de tocar nada; si alguno falla,
// no se modifica catálogo, libro ni carrito. Si todo alcanza, descuenta el stock en una
// sola escritura, agrega la venta al libro y vacía el carrito, todo en la misma transacción.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, cart *Cart, actor entity.Actor, method entity.PaymentMethod) (*entity.Sale, error) {
	if !method.Valid() {
		return nil, domain.NewValidationError("payment_method", "medio de cobro inválido: %q", method)
	}

	cart.mu.Lock()
	defer cart.mu.Unlock()

	if len(cart.items) == 0 {
		uc.observe(metrics.ResultEmptyCart, 0)
		return nil, domain.ErrEmptyCart
	}

	items := append([]entity.CartLineItem(nil), cart.items...)
	total := SumLines(items)
	demands, err := unitsByProduct(items)
	if err != nil {
		uc.logFailure(err, actor)
		return nil, err
	}

	var sale *entity.Sale
	err = uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, saleRepo repository.SaleRepository) error {
		catalog, err := productRepo.Load(ctx)
		if err != nil {
			return err
		}

		movements := make([]entity.StockMovement, 0, len(demands))
		for _, d := range demands {
			if d.units <= 0 {
				return domain.NewValidationError("quantity", "cantidad inválida para %q", d.name)
			}
			p := catalog.Find(d.productID)
			if p == nil {
				return &domain.ProductNotFoundError{ProductID: d.productID}
			}
			after := p.Quantity - d.units
			if after < 0 {
				return &domain.InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Current:     p.Quantity,
					Needed:      d.units,
					Shortfall:   -after,
				}
			}
			movements = append(movements, entity.StockMovement{
				ProductID:   p.ID,
				ProductName: p.Name,
				Before:      p.Quantity,
				Sold:        d.units,
				After:       after,
			})
		}

		// Validado todo: recién ahora se muta.
		for _, m := range movements {
			catalog.Find(m.ProductID).Quantity = m.After
		}
		if err := productRepo.Save(ctx, catalog); err != nil {
			return err
		}

		sale = &entity.Sale{
			ID:             uc.ids.Next(),
			Items:          items,
			TotalCharged:   total,
			PaymentMethod:  method,
			Timestamp:      uc.now(),
			RecordedByName: actor.Name,
			RecordedByRole: actor.Role,
			StockMovements: movements,
		}
		return saleRepo.Append(ctx, sale)
	})
	if err != nil {
		uc.logFailure(err, actor)
		return nil, err
	}

	cart.items = nil

	units := 0
	for _, m := range sale.StockMovements {
		units += m.Sold
	}
	uc.observe(metrics.ResultOK, units)
	uc.log.Info().
		Int64("sale_id", sale.ID).
		Str("total", sale.TotalCharged.StringFixed(2)).
		Str("payment_method", string(method)).
		Str("recorded_by", actor.Name).
		Int("units", units).
		Msg("venta registrada")
	return sale.Clone(), nil
}

func (uc *CheckoutUseCase) logFailure(err error, actor entity.Actor) {
	var stockErr *domain.InsufficientStockError
	var notFound *domain.ProductNotFoundError
	switch {
	case errors.As(err, &stockErr):
		uc.observe(metrics.ResultInsufficientStock, 0)
		uc.log.Warn().
			Int64("product_id", stockErr.ProductID).
			Str("product", stockErr.ProductName).
			Int("current", stockErr.Current).
			Int("needed", stockErr.Needed).
			Int("shortfall", stockErr.Shortfall).
			Str("recorded_by", actor.Name).
			Msg("checkout rechazado por stock")
	case errors.As(err, &notFound):
		uc.observe(metrics.ResultNotFound, 0)
		uc.log.Warn().Int64("product_id", notFound.ProductID).Msg("checkout con catálogo desactualizado")
	case errors.Is(err, domain.ErrInvalidInput):
		uc.observe(metrics.ResultInvalid, 0)
		uc.log.Warn().Err(err).Str("recorded_by", actor.Name).Msg("checkout con líneas inválidas")
	case errors.Is(err, domain.ErrConflict):
		uc.observe(metrics.ResultConflict, 0)
		uc.log.Warn().Err(err).Msg("checkout perdió la carrera contra otra escritura")
	default:
		uc.observe(metrics.ResultError, 0)
		uc.log.Error().Err(err).Msg("checkout falló")
	}
}

func (uc *CheckoutUseCase) observe(result string, units int) {
	if uc.observer != nil {
		uc.observer.ObserveCheckout(result, units)
	}
}
