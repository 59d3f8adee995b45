package storage_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/malexa-pos/internal/domain"
	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
	"github.com/jhoicas/malexa-pos/internal/infrastructure/kvstore"
	"github.com/jhoicas/malexa-pos/internal/infrastructure/storage"
)

func put(t *testing.T, kv repository.KeyValueStore, key, raw string) {
	t.Helper()
	_, err := kv.Put(context.Background(), key, []byte(raw), repository.AnyRevision)
	require.NoError(t, err)
}

// ── Productos ─────────────────────────────────────────────────────────────────

func TestProductRepo_NormalizaRegistrosViejos(t *testing.T) {
	store := kvstore.New()
	put(t, store, storage.KeyProducts, `[
		{"id": 1, "nombre": "Viejo", "cantidad": "12", "precioUnidad": "5", "precioCombo": 9},
		{"id": 2, "nombre": "Vacío", "cantidad": -3, "precioUnidad": "", "combo2": null, "combo4": "20.5"},
		{"id": 3, "nombre": "Texto", "cantidad": 4, "precioUnidad": "abc", "comboMax": 7}
	]`)

	c, err := storage.NewProductRepository(store).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, c.Products, 3)
	assert.Equal(t, int64(1), c.Revision)

	viejo := c.Find(1)
	assert.Equal(t, 12, viejo.Quantity)
	require.NotNil(t, viejo.UnitPrice)
	assert.True(t, decimal.NewFromInt(5).Equal(*viejo.UnitPrice))
	combo2, ok := viejo.ComboPrice(2)
	require.True(t, ok, "precioCombo equivale a combo2")
	assert.True(t, decimal.NewFromInt(9).Equal(combo2))
	assert.Equal(t, 2, viejo.ComboMax)

	vacio := c.Find(2)
	assert.Zero(t, vacio.Quantity, "stock negativo se normaliza a 0")
	assert.Nil(t, vacio.UnitPrice)
	_, ok = vacio.ComboPrice(2)
	assert.False(t, ok)
	assert.Equal(t, 4, vacio.ComboMax, "comboMax ausente se infiere del combo más alto")

	texto := c.Find(3)
	assert.Nil(t, texto.UnitPrice)
	assert.Equal(t, 2, texto.ComboMax)
}

func TestProductRepo_SaveConRevision(t *testing.T) {
	ctx := context.Background()
	store := kvstore.New()
	repo := storage.NewProductRepository(store)

	c, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, c.Products)

	unit := decimal.RequireFromString("1.25")
	c.Products = append(c.Products, &entity.Product{
		ID: 10, Name: "Alfajor", Quantity: 3, UnitPrice: &unit, ComboMax: 3,
		ComboPrices: map[int]decimal.Decimal{3: decimal.RequireFromString("3.3")},
	})
	require.NoError(t, repo.Save(ctx, c))
	assert.Equal(t, int64(1), c.Revision)

	stale := &entity.Catalog{Revision: 0}
	assert.ErrorIs(t, repo.Save(ctx, stale), domain.ErrConflict)

	raw, _, err := store.Get(ctx, storage.KeyProducts)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "Alfajor", decoded[0]["nombre"])
	assert.Nil(t, decoded[0]["combo2"])
	assert.Equal(t, 3.3, decoded[0]["combo3"])
	assert.NotContains(t, decoded[0], "precioCombo")

	again, err := repo.Load(ctx)
	require.NoError(t, err)
	p := again.Find(10)
	require.NotNil(t, p)
	assert.True(t, unit.Equal(*p.UnitPrice))
	assert.Equal(t, 3, p.ComboMax)
}

// Claves que el modelo no interpreta (foto, createdAt) sobreviven a cualquier guardado.
func TestProductRepo_SaveConservaClavesDesconocidas(t *testing.T) {
	ctx := context.Background()
	store := kvstore.New()
	put(t, store, storage.KeyProducts, `[
		{"id": 1, "nombre": "W", "cantidad": 10, "precioUnidad": 5, "precioCombo": 9,
		 "foto": "data:image/png;base64,AAAA", "createdAt": "2024-01-01T00:00:00.000Z"},
		{"id": 2, "nombre": "Sin extras", "cantidad": 1, "precioUnidad": 1}
	]`)
	repo := storage.NewProductRepository(store)

	c, err := repo.Load(ctx)
	require.NoError(t, err)
	c.Find(1).Quantity = 7
	c.Find(1).Name = "Widget"
	require.NoError(t, repo.Save(ctx, c))

	raw, _, err := store.Get(ctx, storage.KeyProducts)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "data:image/png;base64,AAAA", decoded[0]["foto"])
	assert.Equal(t, "2024-01-01T00:00:00.000Z", decoded[0]["createdAt"])
	assert.Equal(t, "Widget", decoded[0]["nombre"], "las claves propias pisan a las guardadas")
	assert.Equal(t, float64(7), decoded[0]["cantidad"])
	assert.Equal(t, float64(9), decoded[0]["combo2"])
	assert.NotContains(t, decoded[0], "precioCombo", "el formato viejo se migra a combo2")
	assert.NotContains(t, decoded[1], "foto")

	// Un producto borrado se lleva sus claves: un alta nueva con otro ID no las hereda.
	c.Products = c.Products[1:]
	c.Products = append(c.Products, &entity.Product{ID: 3, Name: "Nuevo", ComboMax: 2})
	require.NoError(t, repo.Save(ctx, c))
	raw, _, err = store.Get(ctx, storage.KeyProducts)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "foto")
}

// ── Ventas ────────────────────────────────────────────────────────────────────

func TestSaleRepo_MontoCobradoComoRespaldo(t *testing.T) {
	store := kvstore.New()
	put(t, store, storage.KeySales, `[
		{"id": 1, "montoCobrado": 12.5, "metodoCobro": "Efectivo", "fecha": "2025-03-14T12:00:00.000Z",
		 "registradoPor": "Ana", "items": [{"id": 17, "productId": 1, "productName": "W", "pricingType": "unit",
		 "packSize": 1, "qtyPacks": 2, "pricePerPack": "6.25"}]}
	]`)

	l, err := storage.NewSaleRepository(store).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, l.Sales, 1)
	s := l.Sales[0]
	assert.True(t, decimal.RequireFromString("12.5").Equal(s.TotalCharged))
	assert.Equal(t, time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC), s.Timestamp.UTC())
	require.Len(t, s.Items, 1)
	assert.Equal(t, "17", s.Items[0].ID)
	assert.True(t, decimal.RequireFromString("12.5").Equal(s.Items[0].Subtotal), "subtotal ausente se recalcula")
	assert.Empty(t, s.StockMovements)
}

func TestSaleRepo_AppendConservaRegistrosPrevios(t *testing.T) {
	ctx := context.Background()
	store := kvstore.New()
	legacy := `{"id":1,"montoCobrado":3,"campoExtra":"se conserva"}`
	put(t, store, storage.KeySales, "["+legacy+"]")

	repo := storage.NewSaleRepository(store)
	sale := &entity.Sale{
		ID:             2,
		TotalCharged:   decimal.NewFromInt(9),
		PaymentMethod:  entity.PaymentMercadoPago,
		Timestamp:      time.UnixMilli(1741953600123),
		RecordedByName: "Ana",
		RecordedByRole: entity.RoleStaff,
		StockMovements: []entity.StockMovement{{ProductID: 1, ProductName: "W", Before: 5, Sold: 2, After: 3}},
	}
	require.NoError(t, repo.Append(ctx, sale))

	raw, rev, err := store.Get(ctx, storage.KeySales)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev)
	assert.True(t, strings.HasPrefix(string(raw), "["+legacy+","), "el registro previo queda intacto")

	l, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, l.Sales, 2)
	got := l.Sales[1]
	assert.Equal(t, entity.PaymentMercadoPago, got.PaymentMethod)
	assert.Equal(t, sale.Timestamp.UnixMilli(), got.Timestamp.UnixMilli())
	assert.Equal(t, sale.StockMovements, got.StockMovements)
	assert.True(t, decimal.NewFromInt(9).Equal(got.TotalCharged))
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

func TestTxRunner_ErrorNoAplicaNada(t *testing.T) {
	ctx := context.Background()
	store := kvstore.New()
	runner := storage.NewTxRunner(store)

	err := runner.Run(ctx, func(products repository.ProductRepository, sales repository.SaleRepository) error {
		c, err := products.Load(ctx)
		if err != nil {
			return err
		}
		c.Products = append(c.Products, &entity.Product{ID: 1, Name: "X", ComboMax: 2})
		if err := products.Save(ctx, c); err != nil {
			return err
		}
		if err := sales.Append(ctx, &entity.Sale{ID: 1}); err != nil {
			return err
		}
		return domain.ErrInsufficientStock
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	raw, _, err := store.Get(ctx, storage.KeyProducts)
	require.NoError(t, err)
	assert.Nil(t, raw)
	raw, _, err = store.Get(ctx, storage.KeySales)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

func TestUserRepo_MigraContraseñasEnTextoPlano(t *testing.T) {
	ctx := context.Background()
	store := kvstore.New()
	put(t, store, storage.KeyUsers, `[{"id": 1712345678901, "username": "Ana", "name": "Ana P", "role": "staff", "password": "secreta"}]`)
	repo := storage.NewUserRepository(store)

	u, err := repo.FindByUsername(ctx, "  ana ")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "1712345678901", u.ID)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secreta")))

	raw, _, err := store.Get(ctx, storage.KeyUsers)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secreta", "la contraseña plana no queda persistida")
	assert.Contains(t, string(raw), "passwordHash")
}

func TestUserRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewUserRepository(kvstore.New())

	ana := &entity.User{ID: "a", Username: "ana", Name: "Ana", Role: entity.RoleStaff, PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, ana))
	assert.ErrorIs(t, repo.Create(ctx, &entity.User{ID: "b", Username: "ANA"}), domain.ErrDuplicate)

	beto := &entity.User{ID: "b", Username: "beto", Name: "Beto", Role: entity.RoleStaff, PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, beto))

	beto.Username = "Ana"
	assert.ErrorIs(t, repo.Update(ctx, beto), domain.ErrDuplicate)
	beto.Username = "roberto"
	require.NoError(t, repo.Update(ctx, beto))
	assert.ErrorIs(t, repo.Update(ctx, &entity.User{ID: "zz", Username: "x"}), domain.ErrNotFound)

	got, err := repo.GetByID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "roberto", got.Username)

	require.NoError(t, repo.Delete(ctx, "a"))
	assert.ErrorIs(t, repo.Delete(ctx, "a"), domain.ErrNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].ID)
}

// ── Sesiones ──────────────────────────────────────────────────────────────────

func TestSessionRepo_DosTiemposDeVida(t *testing.T) {
	ctx := context.Background()
	persistent, volatile := kvstore.New(), kvstore.New()
	repo := storage.NewSessionRepository(persistent, volatile)

	s := &entity.Session{
		ID:        "s1",
		User:      entity.SessionUser{ID: "admin", Name: "Admin", Email: "admin@malexa.com", Role: entity.RoleAdmin},
		CreatedAt: time.UnixMilli(1741953600000),
	}
	require.NoError(t, repo.Save(ctx, s))
	raw, _, _ := persistent.Get(ctx, storage.KeySessionPrefix+"s1")
	assert.Nil(t, raw, "una sesión de pestaña no se persiste")

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.User, got.User)
	assert.Equal(t, s.CreatedAt.UnixMilli(), got.CreatedAt.UnixMilli())

	s.Remember = true
	require.NoError(t, repo.Save(ctx, s))
	raw, _, _ = volatile.Get(ctx, storage.KeySessionPrefix+"s1")
	assert.Nil(t, raw)
	raw, _, _ = persistent.Get(ctx, storage.KeySessionPrefix+"s1")
	assert.NotNil(t, raw)

	require.NoError(t, repo.Delete(ctx, "s1"))
	got, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
