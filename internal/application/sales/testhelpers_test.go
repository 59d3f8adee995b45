package sales_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/malexa-pos/internal/application/catalog"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/infrastructure/kvstore"
	"github.com/jhoicas/malexa-pos/internal/infrastructure/storage"
)

type fixture struct {
	store    *kvstore.Store
	snapshot *catalog.Snapshot
	products *storage.ProductRepo
	sales    *storage.SaleRepo
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func widget(qty int) *entity.Product {
	return &entity.Product{
		ID:          1,
		Name:        "Widget",
		Quantity:    qty,
		UnitPrice:   decPtr("5"),
		ComboMax:    2,
		ComboPrices: map[int]decimal.Decimal{2: dec("9")},
	}
}

// newFixture siembra los productos y deja la copia en memoria escuchando cambios.
func newFixture(t *testing.T, products ...*entity.Product) *fixture {
	t.Helper()
	ctx := context.Background()
	store := kvstore.New()
	f := &fixture{
		store:    store,
		products: storage.NewProductRepository(store),
		sales:    storage.NewSaleRepository(store),
	}
	require.NoError(t, f.products.Save(ctx, &entity.Catalog{Products: products}))
	f.snapshot = catalog.NewSnapshot(f.products, f.sales, nil)
	require.NoError(t, f.snapshot.Reload(ctx))
	stop := f.snapshot.Watch(ctx, store, storage.KeyProducts, storage.KeySales)
	t.Cleanup(stop)
	return f
}

func (f *fixture) quantity(t *testing.T, id int64) int {
	t.Helper()
	c, err := f.products.Load(context.Background())
	require.NoError(t, err)
	p := c.Find(id)
	require.NotNil(t, p)
	return p.Quantity
}

func (f *fixture) ledgerLen(t *testing.T) int {
	t.Helper()
	l, err := f.sales.Load(context.Background())
	require.NoError(t, err)
	return len(l.Sales)
}

type recordingObserver struct {
	results []string
	units   int
}

func (o *recordingObserver) ObserveCheckout(result string, units int) {
	o.results = append(o.results, result)
	o.units += units
}
