package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/malexa-pos/internal/application/sales"
	"github.com/jhoicas/malexa-pos/internal/domain"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
)

var (
	_ repository.KeyValueStore = (*KVStore)(nil)
	_ repository.Transactor    = (*KVStore)(nil)
	_ sales.SalesTotaler       = (*KVStore)(nil)
)

// maxTxAttempts intentos de una transacción que choca con otra (deadlock o serialización).
const maxTxAttempts = 3

// KVStore almacén clave-valor sobre la tabla kv_entries.
type KVStore struct {
	pool     *pgxpool.Pool
	salesKey string
}

// NewKVStore construye el almacén. salesKey es la clave del libro que suma SumSalesTotal.
func NewKVStore(pool *pgxpool.Pool, salesKey string) *KVStore {
	return &KVStore{pool: pool, salesKey: salesKey}
}

// Get lee fuera de transacción.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, int64, error) {
	return kvConn{q: s.pool}.Get(ctx, key)
}

// Put escribe fuera de transacción; el NOTIFY sale inmediatamente.
func (s *KVStore) Put(ctx context.Context, key string, value []byte, expectedRevision int64) (int64, error) {
	return kvConn{q: s.pool}.Put(ctx, key, value, expectedRevision)
}

// Delete borra fuera de transacción.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	return kvConn{q: s.pool}.Delete(ctx, key)
}

// WithinTx corre fn en una transacción. Las lecturas bloquean la fila (FOR UPDATE), así dos
// checkouts concurrentes se serializan; los NOTIFY se entregan recién al confirmar.
func (s *KVStore) WithinTx(ctx context.Context, fn func(kv repository.KeyValueStore) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrConflict, err)
}

func (s *KVStore) runTx(ctx context.Context, fn func(kv repository.KeyValueStore) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(kvConn{q: tx, lock: true}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SumSalesTotal suma totalCobrado (o montoCobrado en registros viejos) de todas las ventas
// directamente en SQL. Los valores que no son numéricos cuentan como cero.
func (s *KVStore) SumSalesTotal(ctx context.Context) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(
			CASE
				WHEN e->>'totalCobrado' ~ '^-?[0-9]+(\.[0-9]+)?$' THEN (e->>'totalCobrado')::numeric
				WHEN e->>'montoCobrado' ~ '^-?[0-9]+(\.[0-9]+)?$' THEN (e->>'montoCobrado')::numeric
				ELSE 0
			END), 0)
		FROM kv_entries, jsonb_array_elements(value) AS e
		WHERE key = $1 AND jsonb_typeof(value) = 'array'`
	var total decimal.Decimal
	if err := s.pool.QueryRow(ctx, query, s.salesKey).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sumar ventas: %w", err)
	}
	return total, nil
}

// kvConn operaciones sobre un Querier (pool o tx). lock agrega FOR UPDATE a las lecturas.
type kvConn struct {
	q    Querier
	lock bool
}

func (c kvConn) Get(ctx context.Context, key string) ([]byte, int64, error) {
	query := `SELECT value::text, revision FROM kv_entries WHERE key = $1`
	if c.lock {
		query += ` FOR UPDATE`
	}
	var value string
	var rev int64
	err := c.q.QueryRow(ctx, query, key).Scan(&value, &rev)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), rev, nil
}

func (c kvConn) Put(ctx context.Context, key string, value []byte, expectedRevision int64) (int64, error) {
	var query string
	args := []any{key, string(value)}
	switch {
	case expectedRevision == repository.AnyRevision:
		query = `
			INSERT INTO kv_entries (key, value, revision, updated_at) VALUES ($1, $2::jsonb, nextval('kv_revision_seq'), now())
			ON CONFLICT (key) DO UPDATE
			SET value = EXCLUDED.value, revision = nextval('kv_revision_seq'), updated_at = now()
			RETURNING revision`
	case expectedRevision == 0:
		query = `
			INSERT INTO kv_entries (key, value, revision, updated_at) VALUES ($1, $2::jsonb, nextval('kv_revision_seq'), now())
			ON CONFLICT (key) DO NOTHING
			RETURNING revision`
	default:
		query = `
			UPDATE kv_entries SET value = $2::jsonb, revision = nextval('kv_revision_seq'), updated_at = now()
			WHERE key = $1 AND revision = $3
			RETURNING revision`
		args = append(args, expectedRevision)
	}

	var rev int64
	err := c.q.QueryRow(ctx, query, args...).Scan(&rev)
	switch {
	case errors.Is(err, pgx.ErrNoRows), err != nil && isUniqueViolation(err):
		return 0, domain.ErrConflict
	case err != nil:
		return 0, fmt.Errorf("put %s: %w", key, err)
	}
	if err := c.notify(ctx, key); err != nil {
		return 0, err
	}
	return rev, nil
}

func (c kvConn) Delete(ctx context.Context, key string) error {
	tag, err := c.q.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}
	return c.notify(ctx, key)
}

func (c kvConn) notify(ctx context.Context, key string) error {
	if _, err := c.q.Exec(ctx, `SELECT pg_notify($1, $2)`, ChangesChannel, key); err != nil {
		return fmt.Errorf("notify %s: %w", key, err)
	}
	return nil
}
