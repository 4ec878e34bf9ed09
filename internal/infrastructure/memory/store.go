// Package memory implementa todos los puertos de persistencia en memoria del proceso.
// Se usa con STORAGE_DRIVER=memory (desarrollo) y en los tests de casos de uso.
//
// Las transacciones acumulan escrituras en un área propia y las confirman de una vez
// al terminar sin error; GetForUpdate toma un bloqueo de fila que se mantiene hasta
// el Commit o Rollback, igual que SELECT ... FOR UPDATE.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/guias-api/internal/application/ledger"
	"github.com/jhoicas/guias-api/internal/domain"
	"github.com/jhoicas/guias-api/internal/domain/entity"
	"github.com/jhoicas/guias-api/internal/domain/repository"
	"github.com/jhoicas/guias-api/internal/infrastructure/lock"
)

var _ ledger.TxRunner = (*Store)(nil)

// Store datos en memoria protegidos por un RWMutex.
type Store struct {
	mu        sync.RWMutex
	companies map[string]*entity.Company
	users     map[string]*entity.User
	guides    map[string]*entity.Guide
	tracking  map[string]string // número de guía -> id
	requests  map[string]*entity.PurchaseRequest
	payments  map[string]*entity.Payment
	movements []*entity.LedgerMovement

	rows *lock.KeyedMutex
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		companies: make(map[string]*entity.Company),
		users:     make(map[string]*entity.User),
		guides:    make(map[string]*entity.Guide),
		tracking:  make(map[string]string),
		requests:  make(map[string]*entity.PurchaseRequest),
		payments:  make(map[string]*entity.Payment),
		rows:      lock.NewKeyedMutex(),
	}
}

// txState escrituras pendientes de una transacción.
type txState struct {
	companies map[string]*entity.Company
	guides    map[string]*entity.Guide
	requests  map[string]*entity.PurchaseRequest
	payments  map[string]*entity.Payment
	movements []*entity.LedgerMovement
	held      map[string]func()
}

func newTxState() *txState {
	return &txState{
		companies: make(map[string]*entity.Company),
		guides:    make(map[string]*entity.Guide),
		requests:  make(map[string]*entity.PurchaseRequest),
		payments:  make(map[string]*entity.Payment),
		held:      make(map[string]func()),
	}
}

// session une el store con una transacción opcional (nil = autocommit).
type session struct {
	st *Store
	tx *txState
}

// lockRow toma el bloqueo de fila una sola vez por transacción.
func (s *session) lockRow(ctx context.Context, key string) error {
	if s.tx == nil {
		return nil
	}
	if _, ok := s.tx.held[key]; ok {
		return nil
	}
	unlock, err := s.st.rows.Lock(ctx, key)
	if err != nil {
		return err
	}
	s.tx.held[key] = unlock
	return nil
}

// Run ejecuta fn con repositorios atados a una transacción en memoria.
func (st *Store) Run(ctx context.Context, fn func(tx repository.TxRepositories) error) error {
	tx := newTxState()
	defer func() {
		for _, unlock := range tx.held {
			unlock()
		}
	}()
	sess := &session{st: st, tx: tx}
	if err := fn(sess.repositories()); err != nil {
		return err
	}
	return st.commit(tx)
}

func (st *Store) commit(tx *txState) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, g := range tx.guides {
		if id, ok := st.tracking[g.TrackingNumber]; ok && id != g.ID {
			return domain.ErrDuplicate
		}
	}
	for id, c := range tx.companies {
		st.companies[id] = c
	}
	for id, g := range tx.guides {
		st.guides[id] = g
		st.tracking[g.TrackingNumber] = id
	}
	for id, r := range tx.requests {
		st.requests[id] = r
	}
	for id, p := range tx.payments {
		st.payments[id] = p
	}
	st.movements = append(st.movements, tx.movements...)
	return nil
}

func (s *session) repositories() repository.TxRepositories {
	return repository.TxRepositories{
		Companies: &CompanyRepo{s: s},
		Movements: &LedgerMovementRepo{s: s},
		Guides:    &GuideRepo{s: s},
		Requests:  &PurchaseRequestRepo{s: s},
		Payments:  &PaymentRepo{s: s},
	}
}

// Repositorios fuera de transacción (autocommit).

// Companies repositorio de empresas.
func (st *Store) Companies() *CompanyRepo { return &CompanyRepo{s: &session{st: st}} }

// Users repositorio de usuarios.
func (st *Store) Users() *UserRepo { return &UserRepo{st: st} }

// Guides repositorio de guías.
func (st *Store) Guides() *GuideRepo { return &GuideRepo{s: &session{st: st}} }

// Requests repositorio de solicitudes.
func (st *Store) Requests() *PurchaseRequestRepo { return &PurchaseRequestRepo{s: &session{st: st}} }

// Payments repositorio de pagos.
func (st *Store) Payments() *PaymentRepo { return &PaymentRepo{s: &session{st: st}} }

// Movements repositorio del diario del libro.
func (st *Store) Movements() *LedgerMovementRepo { return &LedgerMovementRepo{s: &session{st: st}} }

// lookup lee primero lo escrito en la transacción y luego lo confirmado.
func lookup[T any](s *session, staged func(*txState) map[string]*T, base func(*Store) map[string]*T, id string) *T {
	if s.tx != nil {
		if v, ok := staged(s.tx)[id]; ok {
			cp := *v
			return &cp
		}
	}
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	v, ok := base(s.st)[id]
	if !ok {
		return nil
	}
	cp := *v
	return &cp
}

// store escribe en la transacción o directamente si no hay transacción.
func store[T any](s *session, staged func(*txState) map[string]*T, base func(*Store) map[string]*T, id string, v *T) {
	cp := *v
	if s.tx != nil {
		staged(s.tx)[id] = &cp
		return
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	base(s.st)[id] = &cp
}
