package repository

import "context"

// AnyRevision en Put desactiva el control de revisión (escritura incondicional, last-write-wins).
const AnyRevision int64 = -1

// KeyValueStore puerto del almacén clave-valor donde viven las colecciones (productos, ventas,
// usuarios, sesiones) serializadas como JSON.
//
// Cada clave lleva una revisión que se incrementa en cada escritura; 0 significa "no existe".
type KeyValueStore interface {
	// Get devuelve el valor y su revisión. Una clave ausente devuelve (nil, 0, nil).
	Get(ctx context.Context, key string) ([]byte, int64, error)
	// Put escribe si la revisión actual coincide con expectedRevision (AnyRevision = sin chequeo).
	// Devuelve la nueva revisión o domain.ErrConflict si otro escritor se adelantó.
	Put(ctx context.Context, key string, value []byte, expectedRevision int64) (int64, error)
	// Delete elimina la clave; no es error si no existe.
	Delete(ctx context.Context, key string) error
}

// Transactor ejecuta fn con un KeyValueStore transaccional: todas las escrituras de fn
// se confirman juntas o ninguna.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(kv KeyValueStore) error) error
}

// ChangeNotifier publica la clave modificada después de cada escritura confirmada
// (el equivalente al evento "storage" entre pestañas).
type ChangeNotifier interface {
	Subscribe(fn func(key string)) (unsubscribe func())
}
