package cart

import (
	"sync"

	"github.com/Joebakid/Gudrix/internal/domain"
)

// Listener receives a copy of the cart rows after every mutation.
type Listener func(items []domain.LineItem)

// Store holds the line items of one browsing session. It never touches
// durable storage; its lifetime is the session's.
type Store struct {
	mu        sync.RWMutex
	items     []domain.LineItem
	listeners map[int]Listener
	nextID    int
}

func NewStore() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// Add merges item into the cart. A row with the same (productId, variant)
// has its quantity incremented; otherwise a new row is appended.
// A non-positive quantity counts as 1.
func (s *Store) Add(item domain.LineItem) {
	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}
	key := item.Key()

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		item.Variant = domain.NormalizeVariant(item.Variant)
		item.Quantity = qty
		s.items = append(s.items, item)
	}
	s.mu.Unlock()

	s.notify()
}

// Remove deletes the row matching (productID, variant) and reports whether one existed.
func (s *Store) Remove(productID string, variant *string) bool {
	key := domain.KeyOf(productID, variant)

	s.mu.Lock()
	removed := false
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items = append(s.items[:i], s.items[i+1:]...)
			removed = true
			break
		}
	}
	s.mu.Unlock()

	if removed {
		s.notify()
	}
	return removed
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	s.notify()
}

// Settle removes what was paid for. Each paid row reduces the matching row's
// quantity; rows that reach zero are dropped. Items added after the paid
// snapshot was taken stay in the cart.
func (s *Store) Settle(paid []domain.LineItem) {
	owed := make(map[domain.ItemKey]int, len(paid))
	for _, it := range paid {
		owed[it.Key()] += it.Quantity
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, it := range s.items {
		if q, ok := owed[it.Key()]; ok {
			it.Quantity -= q
			if it.Quantity <= 0 {
				continue
			}
		}
		kept = append(kept, it)
	}
	s.items = kept
	if len(s.items) == 0 {
		s.items = nil
	}
	s.mu.Unlock()

	s.notify()
}

// Items returns a copy of the rows in insertion order.
func (s *Store) Items() []domain.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Subscribe registers fn for change notifications and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	if len(s.listeners) == 0 {
		s.mu.RUnlock()
		return
	}
	items := s.snapshotLocked()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l(items)
	}
}

func (s *Store) snapshotLocked() []domain.LineItem {
	out := make([]domain.LineItem, len(s.items))
	copy(out, s.items)
	return out
}
