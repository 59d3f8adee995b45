package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ChangesChannel canal de NOTIFY con la clave modificada como payload.
const ChangesChannel = "kv_changed"

// Las revisiones salen de una secuencia compartida: una clave borrada y recreada nunca
// repite una revisión ya entregada.
const schemaSQL = `
CREATE SEQUENCE IF NOT EXISTS kv_revision_seq;
CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	revision   BIGINT NOT NULL CHECK (revision > 0),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema crea la tabla del almacén si no existe. Idempotente.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("crear esquema kv_entries: %w", err)
	}
	return nil
}
