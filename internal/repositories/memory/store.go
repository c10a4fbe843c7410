// Package memory is an in-process store implementing the repository
// interfaces. Reads see a consistent snapshot; transactions work on a copy
// that replaces the live state only when they succeed.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"reservation-system/internal/entities"
)

type state struct {
	users        map[string]entities.User
	companies    map[string]entities.Company
	equipment    map[string]entities.Equipment
	reservations map[string]entities.Reservation

	// insertion order, used to keep listings stable
	userOrder        []string
	companyOrder     []string
	equipmentOrder   []string
	reservationOrder []string
}

func newState() *state {
	return &state{
		users:        make(map[string]entities.User),
		companies:    make(map[string]entities.Company),
		equipment:    make(map[string]entities.Equipment),
		reservations: make(map[string]entities.Reservation),
	}
}

func (s *state) clone() *state {
	return &state{
		users:            maps.Clone(s.users),
		companies:        maps.Clone(s.companies),
		equipment:        maps.Clone(s.equipment),
		reservations:     maps.Clone(s.reservations),
		userOrder:        slices.Clone(s.userOrder),
		companyOrder:     slices.Clone(s.companyOrder),
		equipmentOrder:   slices.Clone(s.equipmentOrder),
		reservationOrder: slices.Clone(s.reservationOrder),
	}
}

type Store struct {
	mu    sync.RWMutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

type txKey struct{}

type txState struct {
	owner *Store
	st    *state
}

func (s *Store) txFrom(ctx context.Context) (*state, bool) {
	tx, ok := ctx.Value(txKey{}).(*txState)
	if !ok || tx.owner != s {
		return nil, false
	}
	return tx.st, true
}

// RunInTransaction holds the write lock for the duration of fn, so
// check-then-insert sequences inside fn cannot interleave with other
// writers. Nested calls join the outer transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := s.txFrom(ctx); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	err = fn(context.WithValue(ctx, txKey{}, &txState{owner: s, st: working}))
	if err == nil {
		s.state = working
	}
	return err
}

func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if st, ok := s.txFrom(ctx); ok {
		return fn(st)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// write applies fn to the transaction copy, or directly to the live state
// under the write lock. fn must validate before it mutates.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	if st, ok := s.txFrom(ctx); ok {
		return fn(st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func removeID(order []string, id string) []string {
	if i := slices.Index(order, id); i >= 0 {
		return slices.Delete(order, i, i+1)
	}
	return order
}
