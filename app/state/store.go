// Package state holds the last committed data of each feature and lets
// observers follow its changes.
package state

import (
	"sync"
)

// Store holds one feature state value. Updates replace the value under a lock
// and then hand a snapshot to every subscriber, in update order.
type Store[T any] struct {
	delivery    sync.Mutex
	mu          sync.RWMutex
	value       T
	version     uint64
	subscribers map[int]func(T)
	nextID      int
}

func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{
		value:       initial,
		subscribers: make(map[int]func(T)),
	}
}

func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Version counts committed updates.
func (s *Store[T]) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Update applies fn to the stored value. Subscribers run after the value lock
// is released, one update at a time. They must not block or call Update.
func (s *Store[T]) Update(fn func(*T)) {
	s.delivery.Lock()
	defer s.delivery.Unlock()

	s.mu.Lock()
	fn(&s.value)
	s.version++
	snapshot := s.value
	subscribers := make([]func(T), 0, len(s.subscribers))
	for _, subscriber := range s.subscribers {
		subscribers = append(subscribers, subscriber)
	}
	s.mu.Unlock()

	for _, subscriber := range subscribers {
		subscriber(snapshot)
	}
}

// Subscribe registers fn for future updates and returns its cancel function.
func (s *Store[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}
