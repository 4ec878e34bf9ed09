// Package lock implementa ledger.Locker: bloqueo por empresa en proceso (KeyedMutex)
// o distribuido entre réplicas (Redis).
package lock

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/guias-api/internal/application/ledger"
	"github.com/jhoicas/guias-api/internal/domain"
)

var _ ledger.Locker = (*KeyedMutex)(nil)

// KeyedMutex exclusión mutua por clave dentro del proceso. Claves distintas no compiten.
// La espera respeta la cancelación del contexto.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	sem  chan struct{}
	refs int
}

// NewKeyedMutex construye el mutex por clave.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock adquiere la clave. Si ctx se cancela antes devuelve domain.ErrBusy envolviendo ctx.Err().
func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{sem: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, errBusy(ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.release(key, e)
		})
	}, nil
}

func (k *KeyedMutex) release(key string, e *keyedEntry) {
	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}

func errBusy(cause error) error { return fmt.Errorf("%w: %w", domain.ErrBusy, cause) }
