package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/malexa-pos/internal/domain/entity"
	"github.com/jhoicas/malexa-pos/internal/domain/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo sesiones con dos tiempos de vida: persistent para "recordarme" y volatile
// para sesiones de pestaña.
type SessionRepo struct {
	persistent repository.KeyValueStore
	volatile   repository.KeyValueStore
}

// NewSessionRepository construye el repositorio de sesiones.
func NewSessionRepository(persistent, volatile repository.KeyValueStore) *SessionRepo {
	return &SessionRepo{persistent: persistent, volatile: volatile}
}

func sessionKey(id string) string { return KeySessionPrefix + id }

// Save guarda la sesión en el almacén que corresponde y la quita del otro.
func (r *SessionRepo) Save(ctx context.Context, s *entity.Session) error {
	raw, err := json.Marshal(sessionRecordFrom(s))
	if err != nil {
		return fmt.Errorf("codificar sesión: %w", err)
	}
	target, other := r.volatile, r.persistent
	if s.Remember {
		target, other = r.persistent, r.volatile
	}
	if _, err := target.Put(ctx, sessionKey(s.ID), raw, repository.AnyRevision); err != nil {
		return fmt.Errorf("guardar sesión: %w", err)
	}
	if err := other.Delete(ctx, sessionKey(s.ID)); err != nil {
		return fmt.Errorf("limpiar sesión: %w", err)
	}
	return nil
}

// Get busca primero la sesión de pestaña y después la recordada.
func (r *SessionRepo) Get(ctx context.Context, id string) (*entity.Session, error) {
	for _, kv := range []repository.KeyValueStore{r.volatile, r.persistent} {
		raw, _, err := kv.Get(ctx, sessionKey(id))
		if err != nil {
			return nil, fmt.Errorf("leer sesión: %w", err)
		}
		if len(raw) == 0 {
			continue
		}
		var rec sessionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decodificar sesión: %w", err)
		}
		return rec.toEntity(), nil
	}
	return nil, nil
}

// Delete elimina la sesión de ambos almacenes.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if err := r.volatile.Delete(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("borrar sesión: %w", err)
	}
	if err := r.persistent.Delete(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("borrar sesión: %w", err)
	}
	return nil
}
