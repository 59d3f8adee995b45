package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/malexa-pos/internal/domain"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
	"github.com/jhoicas/malexa-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/malexa-pos/pkg/config"
)

// Requiere una base descartable: MALEXA_TEST_DATABASE_URL=postgres://... go test ./...
func newTestStore(t *testing.T) (*postgres.KVStore, *postgres.Listener, string) {
	t.Helper()
	dsn := os.Getenv("MALEXA_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("MALEXA_TEST_DATABASE_URL no definido")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.EnsureSchema(ctx, pool))

	prefix := "test/" + time.Now().Format("150405.000000") + "/"
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM kv_entries WHERE key LIKE $1`, prefix+"%")
	})
	return postgres.NewKVStore(pool, prefix+"sales"), postgres.NewListener(pool, nil), prefix
}

func TestKVStore_CompareAndSwap(t *testing.T) {
	store, _, prefix := newTestStore(t)
	ctx := context.Background()
	key := prefix + "k"

	rev1, err := store.Put(ctx, key, []byte(`[1]`), 0)
	require.NoError(t, err)
	assert.Positive(t, rev1)

	_, err = store.Put(ctx, key, []byte(`[2]`), 0)
	assert.ErrorIs(t, err, domain.ErrConflict)

	rev2, err := store.Put(ctx, key, []byte(`[3]`), rev1)
	require.NoError(t, err)
	assert.Greater(t, rev2, rev1)

	v, rev, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `[3]`, string(v))
	assert.Equal(t, rev2, rev)

	// Borrar y recrear no vuelve a una revisión vieja.
	require.NoError(t, store.Delete(ctx, key))
	rev3, err := store.Put(ctx, key, []byte(`[4]`), 0)
	require.NoError(t, err)
	assert.Greater(t, rev3, rev2)
	_, err = store.Put(ctx, key, []byte(`[5]`), rev1)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestKVStore_TxConErrorNoAplica(t *testing.T) {
	store, _, prefix := newTestStore(t)
	ctx := context.Background()

	err := store.WithinTx(ctx, func(kv repository.KeyValueStore) error {
		if _, err := kv.Put(ctx, prefix+"a", []byte(`{}`), 0); err != nil {
			return err
		}
		return domain.ErrInsufficientStock
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	v, rev, err := store.Get(ctx, prefix+"a")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Zero(t, rev)
}

func TestKVStore_SumSalesTotalYNotify(t *testing.T) {
	store, listener, prefix := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 4)
	stop := listener.Subscribe(func(key string) { got <- key })
	defer stop()
	go listener.Run(ctx)
	time.Sleep(200 * time.Millisecond)

	_, err := store.Put(ctx, prefix+"sales", []byte(`[{"totalCobrado": 10.5}, {"montoCobrado": "2"}, {"totalCobrado": ""}]`), repository.AnyRevision)
	require.NoError(t, err)

	total, err := store.SumSalesTotal(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(total), total.String())

	select {
	case key := <-got:
		assert.Equal(t, prefix+"sales", key)
	case <-time.After(5 * time.Second):
		t.Fatal("no llegó la notificación")
	}
}
