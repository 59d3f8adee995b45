package kvstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/malexa-pos/internal/domain"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
	"github.com/jhoicas/malexa-pos/internal/infrastructure/kvstore"
)

func TestStore_PutGetRevision(t *testing.T) {
	ctx := context.Background()
	s := kvstore.New()

	v, rev, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Zero(t, rev)

	rev, err = s.Put(ctx, "k", []byte(`[1]`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)

	_, err = s.Put(ctx, "k", []byte(`[2]`), 0)
	assert.ErrorIs(t, err, domain.ErrConflict, "revisión vieja debe fallar")

	rev, err = s.Put(ctx, "k", []byte(`[3]`), repository.AnyRevision)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev)

	v, rev, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[3]`, string(v))
	assert.Equal(t, int64(2), rev)
}

func TestStore_GetDevuelveCopia(t *testing.T) {
	ctx := context.Background()
	s := kvstore.New()
	_, err := s.Put(ctx, "k", []byte("abc"), 0)
	require.NoError(t, err)

	v, _, _ := s.Get(ctx, "k")
	v[0] = 'X'

	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	s := kvstore.New()

	var got []string
	unsubscribe := s.Subscribe(func(key string) { got = append(got, key) })

	_, _ = s.Put(ctx, "a", []byte("1"), repository.AnyRevision)
	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "no-existe"))
	unsubscribe()
	_, _ = s.Put(ctx, "b", []byte("1"), repository.AnyRevision)

	assert.Equal(t, []string{"a", "a"}, got)
}

func TestStore_WithinTx_CommitAtomico(t *testing.T) {
	ctx := context.Background()
	s := kvstore.New()

	var notified []string
	s.Subscribe(func(key string) { notified = append(notified, key) })

	err := s.WithinTx(ctx, func(kv repository.KeyValueStore) error {
		if _, err := kv.Put(ctx, "x", []byte("1"), 0); err != nil {
			return err
		}
		// la tx ve sus propias escrituras, el almacén base todavía no
		v, rev, err := kv.Get(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, "1", string(v))
		assert.Equal(t, int64(1), rev)

		base, _, _ := s.Get(ctx, "x")
		assert.Nil(t, base)

		_, err = kv.Put(ctx, "y", []byte("2"), 0)
		return err
	})
	require.NoError(t, err)

	x, _, _ := s.Get(ctx, "x")
	y, _, _ := s.Get(ctx, "y")
	assert.Equal(t, "1", string(x))
	assert.Equal(t, "2", string(y))
	assert.Equal(t, []string{"x", "y"}, notified)
}

func TestStore_WithinTx_ErrorNoAplicaNada(t *testing.T) {
	ctx := context.Background()
	s := kvstore.New()
	_, err := s.Put(ctx, "x", []byte("orig"), 0)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.WithinTx(ctx, func(kv repository.KeyValueStore) error {
		_, _ = kv.Put(ctx, "x", []byte("nuevo"), 1)
		require.NoError(t, kv.Delete(ctx, "x"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	x, rev, _ := s.Get(ctx, "x")
	assert.Equal(t, "orig", string(x))
	assert.Equal(t, int64(1), rev)
}

func TestStore_WithinTx_ConflictoConEscritorExterno(t *testing.T) {
	ctx := context.Background()
	s := kvstore.New()
	_, err := s.Put(ctx, "x", []byte("v1"), 0)
	require.NoError(t, err)

	err = s.WithinTx(ctx, func(kv repository.KeyValueStore) error {
		_, rev, _ := kv.Get(ctx, "x")
		// otro escritor (otra "pestaña") escribe fuera de la tx
		_, perr := s.Put(ctx, "x", []byte("externo"), repository.AnyRevision)
		require.NoError(t, perr)
		_, err := kv.Put(ctx, "x", []byte("tx"), rev)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	x, _, _ := s.Get(ctx, "x")
	assert.Equal(t, "externo", string(x))
}

// Borrar y recrear una clave nunca repite una revisión ya entregada.
func TestStore_BorrarYRecrearNoRepiteRevision(t *testing.T) {
	ctx := context.Background()
	s := kvstore.New()
	rev1, err := s.Put(ctx, "x", []byte("v1"), 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), rev1)

	require.NoError(t, s.Delete(ctx, "x"))
	v, rev, err := s.Get(ctx, "x")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Zero(t, rev, "una clave borrada se ve como inexistente")

	_, err = s.Put(ctx, "x", []byte("v2"), rev1)
	assert.ErrorIs(t, err, domain.ErrConflict, "la revisión vieja ya no sirve")

	rev2, err := s.Put(ctx, "x", []byte("v2"), 0)
	require.NoError(t, err)
	assert.Greater(t, rev2, rev1)
}

// Una tx que leyó la revisión 1 no puede confirmar si la clave se borró y recreó en el medio.
func TestStore_WithinTx_ConflictoConBorradoYRecreado(t *testing.T) {
	ctx := context.Background()
	s := kvstore.New()
	_, err := s.Put(ctx, "x", []byte("v1"), 0)
	require.NoError(t, err)

	err = s.WithinTx(ctx, func(kv repository.KeyValueStore) error {
		_, rev, _ := kv.Get(ctx, "x")
		require.Equal(t, int64(1), rev)
		require.NoError(t, s.Delete(ctx, "x"))
		_, perr := s.Put(ctx, "x", []byte("recreada"), 0)
		require.NoError(t, perr)
		_, err := kv.Put(ctx, "x", []byte("tx"), repository.AnyRevision)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	x, _, _ := s.Get(ctx, "x")
	assert.Equal(t, "recreada", string(x))
}

// Un borrado externo tampoco se pisa con una escritura transaccional que no lo vio.
func TestStore_WithinTx_ConflictoConBorradoExterno(t *testing.T) {
	ctx := context.Background()
	s := kvstore.New()
	_, err := s.Put(ctx, "x", []byte("v1"), 0)
	require.NoError(t, err)

	err = s.WithinTx(ctx, func(kv repository.KeyValueStore) error {
		_, _, _ = kv.Get(ctx, "x")
		require.NoError(t, s.Delete(ctx, "x"))
		_, err := kv.Put(ctx, "x", []byte("tx"), repository.AnyRevision)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	x, _, _ := s.Get(ctx, "x")
	assert.Nil(t, x)
}
