// Package signal provides Signal[T], a single-slot value that remembers its
// current state and tells subscribers about every change.
package signal

import (
	"maps"
	"slices"
	"sync"
)

// Signal holds one comparable value. Setting the value it already holds is a
// no-op: nobody is notified.
type Signal[T comparable] struct {
	mu        sync.Mutex
	value     T
	version   uint64
	listeners map[uint64]*listener[T]
	nextID    uint64
}

func New[T comparable](initial T) *Signal[T] {
	return &Signal[T]{
		value:     initial,
		listeners: make(map[uint64]*listener[T]),
	}
}

func (s *Signal[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set stores v and notifies listeners in subscription order. It reports
// whether the value changed. Listeners run in the caller's goroutine after
// the lock is released, so they may call Get or Set themselves.
func (s *Signal[T]) Set(v T) bool {
	s.mu.Lock()
	if s.value == v {
		s.mu.Unlock()
		return false
	}
	s.value = v
	s.version++
	version := s.version
	listeners := s.snapshot()
	s.mu.Unlock()

	for _, l := range listeners {
		l.notify(v, version)
	}
	return true
}

// Subscribe calls fn with the current value, then with every effective
// change until the returned function is called.
//
// A listener never sees an older value after a newer one, nor the same value
// twice in a row. When changes race, intermediate values may be skipped but
// the last value fn sees is the signal's latest.
func (s *Signal[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	l := &listener[T]{fn: fn}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	current, version := s.value, s.version
	s.mu.Unlock()

	l.notify(current, version)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// snapshot must be called with mu held. Ids grow monotonically, so sorted
// ids are subscription order.
func (s *Signal[T]) snapshot() []*listener[T] {
	out := make([]*listener[T], 0, len(s.listeners))
	for _, id := range slices.Sorted(maps.Keys(s.listeners)) {
		out = append(out, s.listeners[id])
	}
	return out
}

// listener serializes calls to fn. Whoever finds it idle delivers; anyone
// arriving meanwhile leaves the newer value in pending for that goroutine to
// pick up, so a Set from inside fn returns before fn sees the new value.
type listener[T comparable] struct {
	fn func(T)

	mu         sync.Mutex
	accepted   bool
	version    uint64
	pending    T
	hasPending bool
	delivering bool
	last       T
	delivered  bool
}

func (l *listener[T]) notify(v T, version uint64) {
	l.mu.Lock()
	if l.accepted && version <= l.version {
		l.mu.Unlock()
		return
	}
	l.accepted = true
	l.version = version
	l.pending, l.hasPending = v, true
	if l.delivering {
		l.mu.Unlock()
		return
	}

	l.delivering = true
	for l.hasPending {
		next := l.pending
		l.hasPending = false
		if l.delivered && next == l.last {
			continue
		}
		l.last, l.delivered = next, true

		l.mu.Unlock()
		l.fn(next)
		l.mu.Lock()
	}
	l.delivering = false
	l.mu.Unlock()
}
