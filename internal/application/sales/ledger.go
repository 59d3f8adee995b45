package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/malexa-pos/internal/domain"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/pkg/logger"
)

// DateLayout formato de fecha de los filtros (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// FilterByDate ventas cuya fecha local (en loc) coincide con ymd. ymd vacío devuelve todas.
func FilterByDate(sales []*entity.Sale, ymd string, loc *time.Location) ([]*entity.Sale, error) {
	if ymd == "" {
		return sales, nil
	}
	if loc == nil {
		loc = time.Local
	}
	if _, err := time.ParseInLocation(DateLayout, ymd, loc); err != nil {
		return nil, domain.NewValidationError("date", "fecha inválida %q, se espera AAAA-MM-DD", ymd)
	}
	out := make([]*entity.Sale, 0, len(sales))
	for _, s := range sales {
		if s.Timestamp.In(loc).Format(DateLayout) == ymd {
			out = append(out, s)
		}
	}
	return out, nil
}

// FilterByRecorder ventas registradas por name.
func FilterByRecorder(sales []*entity.Sale, name string) []*entity.Sale {
	out := make([]*entity.Sale, 0, len(sales))
	for _, s := range sales {
		if s.RecordedByName == name {
			out = append(out, s)
		}
	}
	return out
}

// SumTotals suma TotalCharged.
func SumTotals(sales []*entity.Sale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.TotalCharged)
	}
	return total
}

// Summary resultado de una consulta al libro.
type Summary struct {
	Sales []*entity.Sale
	Total decimal.Decimal
}

// LedgerUseCase consultas de lectura sobre el libro de ventas.
type LedgerUseCase struct {
	source   SalesSource
	receipts ReceiptGenerator
	exporter LedgerExporter
	totaler  SalesTotaler
	loc      *time.Location
	log      *logger.Logger
}

// NewLedgerUseCase construye el caso de uso. receipts, exporter y totaler son opcionales.
func NewLedgerUseCase(source SalesSource, receipts ReceiptGenerator, exporter LedgerExporter, totaler SalesTotaler, loc *time.Location, log *logger.Logger) *LedgerUseCase {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{
		source:   source,
		receipts: receipts,
		exporter: exporter,
		totaler:  totaler,
		loc:      loc,
		log:      log.Component("ledger"),
	}
}

// List ventas visibles para actor en la fecha dada (vacía = todas), más recientes primero.
// Quien no puede ver todo el libro solo ve las ventas que registró.
func (uc *LedgerUseCase) List(ctx context.Context, actor entity.Actor, ymd string) (*Summary, error) {
	visible := uc.visible(actor)
	filtered, err := FilterByDate(visible, ymd, uc.loc)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.Sale, len(filtered))
	for i, s := range filtered {
		out[len(filtered)-1-i] = s.Clone()
	}
	summary := &Summary{Sales: out, Total: SumTotals(filtered)}
	if ymd == "" && actor.Role.CanViewAllSales() {
		uc.crossCheck(ctx, summary.Total)
	}
	return summary, nil
}

// GetByID venta por ID, respetando la visibilidad del actor.
func (uc *LedgerUseCase) GetByID(_ context.Context, actor entity.Actor, id int64) (*entity.Sale, error) {
	for _, s := range uc.visible(actor) {
		if s.ID == id {
			return s.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

// Receipt comprobante PDF de una venta.
func (uc *LedgerUseCase) Receipt(ctx context.Context, actor entity.Actor, id int64) ([]byte, error) {
	if uc.receipts == nil {
		return nil, fmt.Errorf("comprobantes no configurados")
	}
	sale, err := uc.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return uc.receipts.GenerateReceiptPDF(ctx, sale)
}

// Export documento XML con las ventas del día (o todas). Solo admin.
func (uc *LedgerUseCase) Export(ctx context.Context, actor entity.Actor, ymd string) ([]byte, error) {
	if !actor.Role.CanViewAllSales() {
		return nil, domain.ErrForbidden
	}
	if uc.exporter == nil {
		return nil, fmt.Errorf("exportación no configurada")
	}
	summary, err := uc.List(ctx, actor, ymd)
	if err != nil {
		return nil, err
	}
	return uc.exporter.ExportLedger(summary.Sales, summary.Total.StringFixed(2))
}

func (uc *LedgerUseCase) visible(actor entity.Actor) []*entity.Sale {
	all := uc.source.Sales()
	if actor.Role.CanViewAllSales() {
		return all
	}
	return FilterByRecorder(all, actor.Name)
}

// crossCheck compara la suma en memoria con la del almacén; una diferencia indica que la
// copia en memoria quedó atrasada respecto de otra instancia.
func (uc *LedgerUseCase) crossCheck(ctx context.Context, total decimal.Decimal) {
	if uc.totaler == nil {
		return
	}
	stored, err := uc.totaler.SumSalesTotal(ctx)
	if err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo sumar el libro en el almacén")
		return
	}
	if !stored.Equal(total) {
		uc.log.Warn().
			Str("memory", total.StringFixed(2)).
			Str("store", stored.StringFixed(2)).
			Msg("el total del libro en memoria difiere del almacén")
	}
}
