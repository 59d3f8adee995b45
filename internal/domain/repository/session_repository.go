package repository

import (
	"context"

	"github.com/jhoicas/malexa-pos/internal/domain/entity"
)

// SessionRepository guarda sesiones con dos tiempos de vida: recordadas (persistentes)
// y de pestaña (volátiles, se pierden al terminar el proceso).
type SessionRepository interface {
	Save(ctx context.Context, session *entity.Session) error
	// Get busca primero entre las volátiles y luego entre las recordadas. nil si no existe.
	Get(ctx context.Context, id string) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
}
