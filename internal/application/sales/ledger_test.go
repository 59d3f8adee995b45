package sales_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/malexa-pos/internal/application/sales"
	"github.com/jhoicas/malexa-pos/internal/domain"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
)

type staticSales []*entity.Sale

func (s staticSales) Sales() []*entity.Sale { return s }

type fakeExporter struct {
	got   []*entity.Sale
	total string
}

func (e *fakeExporter) ExportLedger(sales []*entity.Sale, total string) ([]byte, error) {
	e.got, e.total = sales, total
	return []byte("<ventas/>"), nil
}

type fakeReceipts struct{}

func (fakeReceipts) GenerateReceiptPDF(_ context.Context, sale *entity.Sale) ([]byte, error) {
	return []byte("%PDF " + sale.RecordedByName), nil
}

type fakeTotaler struct {
	total decimal.Decimal
	err   error
	calls int
}

func (f *fakeTotaler) SumSalesTotal(context.Context) (decimal.Decimal, error) {
	f.calls++
	return f.total, f.err
}

func sampleLedger(loc *time.Location) staticSales {
	return staticSales{
		{ID: 1, TotalCharged: dec("10"), RecordedByName: "Lucía", RecordedByRole: entity.RoleStaff,
			Timestamp: time.Date(2025, 3, 14, 23, 30, 0, 0, loc)},
		{ID: 2, TotalCharged: dec("5.5"), RecordedByName: "Admin", RecordedByRole: entity.RoleAdmin,
			Timestamp: time.Date(2025, 3, 15, 0, 10, 0, 0, loc)},
		{ID: 3, TotalCharged: dec("2.25"), RecordedByName: "Lucía", RecordedByRole: entity.RoleStaff,
			Timestamp: time.Date(2025, 3, 15, 9, 0, 0, 0, loc)},
	}
}

// ── Filtros puros ─────────────────────────────────────────────────────────────

func TestFilterByDate_UsaFechaLocal(t *testing.T) {
	loc := time.FixedZone("ART", -3*3600)
	ledger := sampleLedger(loc)

	got, err := sales.FilterByDate(ledger, "2025-03-15", loc)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)

	// La venta de las 23:30 locales ya es 15/03 en UTC pero cuenta como 14/03.
	got, err = sales.FilterByDate(ledger, "2025-03-14", loc)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	all, err := sales.FilterByDate(ledger, "", loc)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = sales.FilterByDate(ledger, "15/03/2025", loc)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFilterByRecorderYSumTotals(t *testing.T) {
	ledger := sampleLedger(time.UTC)
	mine := sales.FilterByRecorder(ledger, "Lucía")
	assert.Len(t, mine, 2)
	assert.True(t, dec("12.25").Equal(sales.SumTotals(mine)))
	assert.True(t, dec("17.75").Equal(sales.SumTotals(ledger)))
	assert.True(t, sales.SumTotals(nil).IsZero())
}

// ── LedgerUseCase ─────────────────────────────────────────────────────────────

func TestLedgerUseCase_ListSegunRol(t *testing.T) {
	totaler := &fakeTotaler{total: dec("17.75")}
	uc := sales.NewLedgerUseCase(sampleLedger(time.UTC), nil, nil, totaler, time.UTC, nil)
	ctx := context.Background()

	staff, err := uc.List(ctx, entity.Actor{Name: "Lucía", Role: entity.RoleStaff}, "")
	require.NoError(t, err)
	require.Len(t, staff.Sales, 2)
	assert.Equal(t, int64(3), staff.Sales[0].ID, "más recientes primero")
	assert.True(t, dec("12.25").Equal(staff.Total))
	assert.Zero(t, totaler.calls, "el contraste con el almacén es solo para el libro completo")

	admin, err := uc.List(ctx, entity.Actor{Name: "Admin", Role: entity.RoleAdmin}, "")
	require.NoError(t, err)
	assert.Len(t, admin.Sales, 3)
	assert.True(t, dec("17.75").Equal(admin.Total))
	assert.Equal(t, 1, totaler.calls)

	day, err := uc.List(ctx, entity.Actor{Name: "Admin", Role: entity.RoleAdmin}, "2025-03-15")
	require.NoError(t, err)
	assert.Len(t, day.Sales, 2)
	assert.Equal(t, 1, totaler.calls)
}

func TestLedgerUseCase_TotalerConErrorNoFalla(t *testing.T) {
	uc := sales.NewLedgerUseCase(sampleLedger(time.UTC), nil, nil, &fakeTotaler{err: errors.New("db caída")}, time.UTC, nil)
	_, err := uc.List(context.Background(), entity.Actor{Role: entity.RoleAdmin}, "")
	assert.NoError(t, err)
}

func TestLedgerUseCase_GetByIDRespetaVisibilidad(t *testing.T) {
	uc := sales.NewLedgerUseCase(sampleLedger(time.UTC), fakeReceipts{}, nil, nil, time.UTC, nil)
	ctx := context.Background()
	lucia := entity.Actor{Name: "Lucía", Role: entity.RoleStaff}

	s, err := uc.GetByID(ctx, lucia, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.ID)

	_, err = uc.GetByID(ctx, lucia, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound, "la venta de otro usuario no es visible")

	pdf, err := uc.Receipt(ctx, lucia, 3)
	require.NoError(t, err)
	assert.Equal(t, "%PDF Lucía", string(pdf))
}

func TestLedgerUseCase_ExportSoloAdmin(t *testing.T) {
	exp := &fakeExporter{}
	uc := sales.NewLedgerUseCase(sampleLedger(time.UTC), nil, exp, nil, time.UTC, nil)
	ctx := context.Background()

	_, err := uc.Export(ctx, entity.Actor{Name: "Lucía", Role: entity.RoleStaff}, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := uc.Export(ctx, entity.Actor{Name: "Admin", Role: entity.RoleAdmin}, "2025-03-15")
	require.NoError(t, err)
	assert.Equal(t, "<ventas/>", string(out))
	assert.Len(t, exp.got, 2)
	assert.Equal(t, "7.75", exp.total)
}
