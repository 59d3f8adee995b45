package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados de checkout usados como label.
const (
	ResultOK                = "ok"
	ResultEmptyCart         = "empty_cart"
	ResultInsufficientStock = "insufficient_stock"
	ResultNotFound          = "product_not_found"
	ResultConflict          = "conflict"
	ResultInvalid           = "invalid"
	ResultError             = "error"
)

// SalesMetrics contadores del registro de ventas.
type SalesMetrics struct {
	Checkouts *prometheus.CounterVec
	UnitsSold prometheus.Counter
}

// NewSalesMetrics registra los contadores en reg (prometheus.DefaultRegisterer si es nil).
func NewSalesMetrics(service string, reg prometheus.Registerer) *SalesMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "malexa",
		Subsystem: service,
		Name:      "checkouts_total",
		Help:      "Total de intentos de checkout por resultado.",
	}, []string{"result"})
	units := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "malexa",
		Subsystem: service,
		Name:      "units_sold_total",
		Help:      "Unidades descontadas del stock por ventas registradas.",
	})
	reg.MustRegister(checkouts, units)
	return &SalesMetrics{Checkouts: checkouts, UnitsSold: units}
}

// ObserveCheckout implementa sales.CheckoutObserver.
func (m *SalesMetrics) ObserveCheckout(result string, units int) {
	m.Checkouts.WithLabelValues(result).Inc()
	if result == ResultOK && units > 0 {
		m.UnitsSold.Add(float64(units))
	}
}

// Handler expone /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
