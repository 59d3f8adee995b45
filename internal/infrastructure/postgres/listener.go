package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/malexa-pos/internal/domain/repository"
	"github.com/jhoicas/malexa-pos/pkg/logger"
)

var _ repository.ChangeNotifier = (*Listener)(nil)

// Listener escucha NOTIFY kv_changed en una conexión dedicada y reparte la clave a los
// suscriptores. Así cada instancia se entera de lo que escribieron las demás.
type Listener struct {
	pool  *pgxpool.Pool
	log   *logger.Logger
	retry time.Duration

	mu     sync.Mutex
	subs   map[int]func(key string)
	nextID int
}

// NewListener construye el listener; Run lo pone a escuchar.
func NewListener(pool *pgxpool.Pool, log *logger.Logger) *Listener {
	if log == nil {
		log = logger.Nop()
	}
	return &Listener{
		pool:  pool,
		log:   log.Component("pg-listener"),
		retry: 2 * time.Second,
		subs:  make(map[int]func(string)),
	}
}

// Subscribe registra fn.
func (l *Listener) Subscribe(fn func(key string)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// Run escucha hasta que ctx se cancele. Si la conexión se cae, reintenta.
func (l *Listener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		l.log.Warn().Err(err).Dur("retry_in", l.retry).Msg("LISTEN interrumpido")
		select {
		case <-ctx.Done():
			return
		case <-time.After(l.retry):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("adquirir conexión: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+ChangesChannel); err != nil {
		return fmt.Errorf("LISTEN: %w", err)
	}
	l.log.Info().Str("channel", ChangesChannel).Msg("escuchando cambios")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		l.dispatch(n.Payload)
	}
}

func (l *Listener) dispatch(key string) {
	l.mu.Lock()
	fns := make([]func(string), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(key)
	}
}
