// Package state holds observable values: one writer at a time, and
// subscribers notified in order after each change.
package state

import "sync"

// Store holds a value of type T. T should be treated as immutable by
// readers; writers replace it through Set or Update.
type Store[T any] struct {
	mu     sync.RWMutex
	value  T
	subs   map[int]func(T)
	order  []int
	nextID int

	// pending holds notifications in commit order. Whichever caller finds
	// draining unset delivers them, with mu released.
	pending  []func()
	draining bool
}

func New[T any](initial T) *Store[T] {
	return &Store[T]{value: initial, subs: map[int]func(T){}}
}

// Get returns the current value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value.
func (s *Store[T]) Set(v T) {
	s.Update(func(T) T { return v })
}

// Update applies fn to the current value, stores the result and returns it.
// fn must not call back into the store. Subscribers are notified before
// Update returns, unless Update was called from a subscriber or while
// another goroutine is notifying; the change is then delivered by that
// caller, after the notifications queued before it.
func (s *Store[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	s.value = fn(s.value)
	v := s.value
	subs := s.snapshot()
	s.pending = append(s.pending, func() {
		for _, f := range subs {
			f(v)
		}
	})
	s.drain()
	return v
}

// Subscribe registers fn, calls it once with the current value, and returns
// a function that removes it. fn may call Set or Update.
func (s *Store[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)
	v := s.value
	s.pending = append(s.pending, func() { fn(v) })
	s.drain()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			for i, o := range s.order {
				if o == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// drain is called with mu held and returns with it released.
func (s *Store[T]) drain() {
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		next()
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

func (s *Store[T]) snapshot() []func(T) {
	out := make([]func(T), 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.subs[id])
	}
	return out
}
