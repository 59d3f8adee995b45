// Package kvstore implementa el almacén clave-valor en memoria del proceso.
package kvstore

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/malexa-pos/internal/domain"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
)

var (
	_ repository.KeyValueStore  = (*Store)(nil)
	_ repository.Transactor     = (*Store)(nil)
	_ repository.ChangeNotifier = (*Store)(nil)
)

// entry valor de una clave. Un borrado deja una lápida con su versión, así una clave
// recreada nunca repite una revisión ya vista.
type entry struct {
	value    []byte
	revision int64
	deleted  bool
}

// visible revisión que ven los clientes: 0 si la clave no existe.
func (e entry) visible() int64 {
	if e.deleted {
		return 0
	}
	return e.revision
}

// Store almacén en memoria con revisión por clave, transacciones serializadas y
// notificación de cambios. Seguro para uso concurrente.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry

	// txMu serializa transacciones: un solo escritor transaccional a la vez.
	txMu sync.Mutex

	watchMu  sync.Mutex
	watchers map[int]func(key string)
	nextID   int
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{
		entries:  make(map[string]entry),
		watchers: make(map[int]func(string)),
	}
}

// Get devuelve una copia del valor y su revisión.
func (s *Store) Get(_ context.Context, key string) ([]byte, int64, error) {
	e := s.lookup(key)
	if e.deleted {
		return nil, 0, nil
	}
	return clone(e.value), e.revision, nil
}

// lookup devuelve la entrada tal cual, lápida incluida. Una clave nunca escrita es la lápida 0.
func (s *Store) lookup(key string) entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return entry{deleted: true}
	}
	return e
}

// Put escribe con control de revisión y notifica a los suscriptores.
func (s *Store) Put(_ context.Context, key string, value []byte, expectedRevision int64) (int64, error) {
	s.mu.Lock()
	e := s.entries[key]
	if expectedRevision != repository.AnyRevision && expectedRevision != e.visible() {
		s.mu.Unlock()
		return 0, domain.ErrConflict
	}
	next := e.revision + 1
	s.entries[key] = entry{value: clone(value), revision: next}
	s.mu.Unlock()

	s.notify([]string{key})
	return next, nil
}

// Delete elimina la clave y notifica si existía.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	e, ok := s.entries[key]
	ok = ok && !e.deleted
	if ok {
		s.entries[key] = entry{revision: e.revision + 1, deleted: true}
	}
	s.mu.Unlock()

	if ok {
		s.notify([]string{key})
	}
	return nil
}

// Subscribe registra fn para recibir la clave de cada cambio confirmado.
func (s *Store) Subscribe(fn func(key string)) func() {
	s.watchMu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.watchMu.Unlock()

	return func() {
		s.watchMu.Lock()
		delete(s.watchers, id)
		s.watchMu.Unlock()
	}
}

// notify se llama sin locks de datos tomados, para que los suscriptores puedan releer.
func (s *Store) notify(keys []string) {
	s.watchMu.Lock()
	fns := make([]func(string), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.watchMu.Unlock()

	for _, k := range keys {
		for _, fn := range fns {
			fn(k)
		}
	}
}

// WithinTx ejecuta fn sobre una vista con escrituras en staging. Si fn devuelve error nada se
// aplica. Al confirmar se verifica que ninguna clave escrita haya cambiado desde que la
// transacción la vio; si cambió, se aborta con domain.ErrConflict sin aplicar nada.
func (s *Store) WithinTx(ctx context.Context, fn func(kv repository.KeyValueStore) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memTx{base: s, staged: make(map[string]entry), seen: make(map[string]int64)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	keys, err := s.commit(tx)
	if err != nil {
		return err
	}
	s.notify(keys)
	return nil
}

func (s *Store) commit(tx *memTx) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range tx.staged {
		if s.entries[key].revision != tx.seen[key] {
			return nil, domain.ErrConflict
		}
	}
	keys := make([]string, 0, len(tx.staged))
	for key, e := range tx.staged {
		s.entries[key] = e
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// memTx vista transaccional: lee primero lo escrito en la tx, luego el almacén base.
// seen guarda la versión de la base la primera vez que la tx toca cada clave.
type memTx struct {
	base   *Store
	staged map[string]entry
	seen   map[string]int64
}

func (t *memTx) current(key string) entry {
	if e, ok := t.staged[key]; ok {
		return e
	}
	e := t.base.lookup(key)
	if _, ok := t.seen[key]; !ok {
		t.seen[key] = e.revision
	}
	return e
}

func (t *memTx) Get(_ context.Context, key string) ([]byte, int64, error) {
	e := t.current(key)
	if e.deleted {
		return nil, 0, nil
	}
	return clone(e.value), e.revision, nil
}

func (t *memTx) Put(_ context.Context, key string, value []byte, expectedRevision int64) (int64, error) {
	e := t.current(key)
	if expectedRevision != repository.AnyRevision && expectedRevision != e.visible() {
		return 0, domain.ErrConflict
	}
	next := e.revision + 1
	t.staged[key] = entry{value: clone(value), revision: next}
	return next, nil
}

func (t *memTx) Delete(_ context.Context, key string) error {
	e := t.current(key)
	if e.deleted {
		return nil
	}
	t.staged[key] = entry{revision: e.revision + 1, deleted: true}
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
