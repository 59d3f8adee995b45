// Package storage implementa los repositorios del dominio sobre un repository.KeyValueStore.
//
// Cada colección se guarda como un arreglo JSON bajo una clave, con el mismo formato de
// registro que ya usaba el panel web (claves en español), para que los datos existentes carguen tal cual.
// Los valores sueltos ("" / null / números como texto) se normalizan una sola vez al cargar.
package storage

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/malexa-pos/internal/domain/entity"
)

// Claves de las colecciones en el almacén.
const (
	KeyProducts      = "malexa.products.v1"
	KeySales         = "malexa.sales.v1"
	KeyUsers         = "malexa.users.v1"
	KeySessionPrefix = "malexa.session.v1/"
)

// looseDecimal acepta número, número como texto, "" o null. Lo que no sea un número finito
// queda como ausente.
type looseDecimal struct {
	value decimal.Decimal
	valid bool
}

func someDecimal(d decimal.Decimal) looseDecimal { return looseDecimal{value: d, valid: true} }

func optDecimal(d *decimal.Decimal) looseDecimal {
	if d == nil {
		return looseDecimal{}
	}
	return someDecimal(*d)
}

func (l *looseDecimal) UnmarshalJSON(b []byte) error {
	*l = looseDecimal{}
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	l.value, l.valid = d, true
	return nil
}

func (l looseDecimal) MarshalJSON() ([]byte, error) {
	if !l.valid {
		return []byte("null"), nil
	}
	return []byte(l.value.String()), nil
}

func (l looseDecimal) ptr() *decimal.Decimal {
	if !l.valid {
		return nil
	}
	d := l.value
	return &d
}

func (l looseDecimal) int() int {
	if !l.valid {
		return 0
	}
	return int(l.value.IntPart())
}

// looseID acepta IDs numéricos (Date.now()) o de texto.
type looseID string

func (id *looseID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = looseID(s)
		return nil
	}
	*id = looseID(string(b))
	return nil
}

// ── Productos ────────────────────────────────────────────────────────────────

type productRecord struct {
	ID           int64        `json:"id"`
	Nombre       string       `json:"nombre"`
	Cantidad     looseDecimal `json:"cantidad"`
	PrecioUnidad looseDecimal `json:"precioUnidad"`
	ComboMax     looseDecimal `json:"comboMax"`
	Combo2       looseDecimal `json:"combo2"`
	Combo3       looseDecimal `json:"combo3"`
	Combo4       looseDecimal `json:"combo4"`
	Combo5       looseDecimal `json:"combo5"`
	// PrecioCombo formato viejo de un único combo; equivale a combo2.
	PrecioCombo *looseDecimal `json:"precioCombo,omitempty"`
}

func (r *productRecord) tiers() [4]*looseDecimal {
	return [4]*looseDecimal{&r.Combo2, &r.Combo3, &r.Combo4, &r.Combo5}
}

func (r productRecord) toEntity() *entity.Product {
	p := &entity.Product{
		ID:          r.ID,
		Name:        r.Nombre,
		Quantity:    r.Cantidad.int(),
		UnitPrice:   r.PrecioUnidad.ptr(),
		ComboMax:    r.ComboMax.int(),
		ComboPrices: make(map[int]decimal.Decimal),
	}
	if p.Quantity < 0 {
		p.Quantity = 0
	}
	for i, tier := range r.tiers() {
		if tier.valid {
			p.ComboPrices[entity.MinComboTier+i] = tier.value
		}
	}
	if _, ok := p.ComboPrices[2]; !ok && r.PrecioCombo != nil && r.PrecioCombo.valid {
		p.ComboPrices[2] = r.PrecioCombo.value
	}
	p.NormalizeComboMax()
	return p
}

func productRecordFrom(p *entity.Product) productRecord {
	r := productRecord{
		ID:           p.ID,
		Nombre:       p.Name,
		Cantidad:     someDecimal(decimal.NewFromInt(int64(p.Quantity))),
		PrecioUnidad: optDecimal(p.UnitPrice),
		ComboMax:     someDecimal(decimal.NewFromInt(int64(p.ComboMax))),
	}
	for i, tier := range r.tiers() {
		if d, ok := p.ComboPrice(entity.MinComboTier + i); ok {
			*tier = someDecimal(d)
		}
	}
	return r
}

// productKeys claves que interpreta productRecord. Cualquier otra (foto, createdAt, etc.)
// la escribió otra versión del panel y se conserva tal cual al guardar.
var productKeys = map[string]bool{
	"id": true, "nombre": true, "cantidad": true, "precioUnidad": true, "comboMax": true,
	"combo2": true, "combo3": true, "combo4": true, "combo5": true, "precioCombo": true,
}

// productExtras indexa por ID las claves no interpretadas de cada registro guardado.
func productExtras(raw []byte) (map[int64]map[string]json.RawMessage, error) {
	var objs []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &objs); err != nil {
		return nil, err
	}
	out := make(map[int64]map[string]json.RawMessage, len(objs))
	for _, obj := range objs {
		var id int64
		if err := json.Unmarshal(obj["id"], &id); err != nil {
			continue
		}
		for k := range obj {
			if productKeys[k] {
				delete(obj, k)
			}
		}
		if len(obj) > 0 {
			out[id] = obj
		}
	}
	return out, nil
}

// marshalProduct codifica el registro sumando extra; las claves propias pisan a las de extra.
func marshalProduct(r productRecord, extra map[string]json.RawMessage) (json.RawMessage, error) {
	raw, err := json.Marshal(r)
	if err != nil || len(extra) == 0 {
		return raw, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := obj[k]; !ok {
			obj[k] = v
		}
	}
	return json.Marshal(obj)
}

// ── Ventas ───────────────────────────────────────────────────────────────────

type saleItemRecord struct {
	ID           looseID      `json:"id"`
	ProductID    int64        `json:"productId"`
	ProductName  string       `json:"productName"`
	PricingType  string       `json:"pricingType"`
	PackSize     int          `json:"packSize"`
	QtyPacks     int          `json:"qtyPacks"`
	PricePerPack looseDecimal `json:"pricePerPack"`
	Subtotal     looseDecimal `json:"subtotal"`
}

type movementRecord struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Before      int    `json:"before"`
	Sold        int    `json:"sold"`
	After       int    `json:"after"`
}

type saleRecord struct {
	ID               int64            `json:"id"`
	Items            []saleItemRecord `json:"items"`
	TotalCobrado     looseDecimal     `json:"totalCobrado"`
	MontoCobrado     looseDecimal     `json:"montoCobrado"`
	MetodoCobro      string           `json:"metodoCobro"`
	Fecha            string           `json:"fecha"`
	RegistradoPor    string           `json:"registradoPor"`
	RegistradoPorRol string           `json:"registradoPorRol"`
	StockMovements   []movementRecord `json:"stockMovements"`
}

func (r saleRecord) toEntity() *entity.Sale {
	s := &entity.Sale{
		ID:             r.ID,
		PaymentMethod:  entity.PaymentMethod(r.MetodoCobro),
		RecordedByName: r.RegistradoPor,
		RecordedByRole: entity.Role(r.RegistradoPorRol),
		Items:          make([]entity.CartLineItem, 0, len(r.Items)),
		StockMovements: make([]entity.StockMovement, 0, len(r.StockMovements)),
	}
	switch {
	case r.TotalCobrado.valid:
		s.TotalCharged = r.TotalCobrado.value
	case r.MontoCobrado.valid:
		s.TotalCharged = r.MontoCobrado.value
	}
	if t, err := time.Parse(time.RFC3339Nano, r.Fecha); err == nil {
		s.Timestamp = t
	}
	for _, it := range r.Items {
		line := entity.CartLineItem{
			ID:            string(it.ID),
			ProductID:     it.ProductID,
			ProductName:   it.ProductName,
			PricingType:   entity.PricingType(it.PricingType),
			PackSize:      it.PackSize,
			QuantityPacks: it.QtyPacks,
			PricePerPack:  it.PricePerPack.value,
			Subtotal:      it.Subtotal.value,
		}
		if !it.Subtotal.valid {
			line.Recalc()
		}
		s.Items = append(s.Items, line)
	}
	for _, m := range r.StockMovements {
		s.StockMovements = append(s.StockMovements, entity.StockMovement(m))
	}
	return s
}

func saleRecordFrom(s *entity.Sale) saleRecord {
	r := saleRecord{
		ID:               s.ID,
		TotalCobrado:     someDecimal(s.TotalCharged),
		MontoCobrado:     someDecimal(s.TotalCharged),
		MetodoCobro:      string(s.PaymentMethod),
		Fecha:            s.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		RegistradoPor:    s.RecordedByName,
		RegistradoPorRol: string(s.RecordedByRole),
		Items:            make([]saleItemRecord, 0, len(s.Items)),
		StockMovements:   make([]movementRecord, 0, len(s.StockMovements)),
	}
	for _, it := range s.Items {
		r.Items = append(r.Items, saleItemRecord{
			ID:           looseID(it.ID),
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			PricingType:  string(it.PricingType),
			PackSize:     it.PackSize,
			QtyPacks:     it.QuantityPacks,
			PricePerPack: someDecimal(it.PricePerPack),
			Subtotal:     someDecimal(it.Subtotal),
		})
	}
	for _, m := range s.StockMovements {
		r.StockMovements = append(r.StockMovements, movementRecord(m))
	}
	return r
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

type userRecord struct {
	ID           looseID `json:"id"`
	Username     string  `json:"username"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	PasswordHash string  `json:"passwordHash,omitempty"`
	// Password contraseña en texto plano de registros viejos; se migra a hash al cargar.
	Password  string `json:"password,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func (r userRecord) toEntity() *entity.User {
	u := &entity.User{
		ID:           string(r.ID),
		Username:     r.Username,
		Name:         r.Name,
		Role:         entity.Role(r.Role),
		PasswordHash: r.PasswordHash,
	}
	if t, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
		u.CreatedAt = t
	}
	return u
}

func userRecordFrom(u *entity.User) userRecord {
	r := userRecord{
		ID:           looseID(u.ID),
		Username:     u.Username,
		Name:         u.Name,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
	}
	if !u.CreatedAt.IsZero() {
		r.CreatedAt = u.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return r
}

// ── Sesiones ─────────────────────────────────────────────────────────────────

type sessionUserRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
}

type sessionRecord struct {
	ID       string            `json:"id"`
	User     sessionUserRecord `json:"user"`
	Remember bool              `json:"remember"`
	TS       int64             `json:"ts"`
}

func (r sessionRecord) toEntity() *entity.Session {
	return &entity.Session{
		ID: r.ID,
		User: entity.SessionUser{
			ID:       r.User.ID,
			Name:     r.User.Name,
			Email:    r.User.Email,
			Username: r.User.Username,
			Role:     entity.Role(r.User.Role),
		},
		Remember:  r.Remember,
		CreatedAt: time.UnixMilli(r.TS),
	}
}

func sessionRecordFrom(s *entity.Session) sessionRecord {
	return sessionRecord{
		ID: s.ID,
		User: sessionUserRecord{
			ID:       s.User.ID,
			Name:     s.User.Name,
			Email:    s.User.Email,
			Username: s.User.Username,
			Role:     string(s.User.Role),
		},
		Remember: s.Remember,
		TS:       s.CreatedAt.UnixMilli(),
	}
}
