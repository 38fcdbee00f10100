package store

import (
	"errors"
	"sync"

	"github.com/openexch/matchcore/pkg/model"
)

var ErrNotFound = errors.New("order not found")

// Store is a thread-safe registry of orders by id. The engine itself does
// not need it; submitters use it to track what they have resting so they
// can cancel by id later.
type Store struct {
	mu     sync.RWMutex
	orders map[string]*model.Order
}

func NewStore() *Store {
	return &Store{
		orders: make(map[string]*model.Order),
	}
}

func (s *Store) Add(o *model.Order) {
	s.mu.Lock()
	s.orders[o.ID] = o
	s.mu.Unlock()
}

func (s *Store) Get(id string) (*model.Order, error) {
	s.mu.RLock()
	o, ok := s.orders[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return ErrNotFound
	}
	delete(s.orders, id)
	return nil
}

// Any returns some tracked order, map-iteration order. Handy for picking a
// cancellation target under load.
func (s *Store) Any() (*model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		return o, true
	}
	return nil, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
