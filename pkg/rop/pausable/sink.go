package pausable

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ib-77/ropause/pkg/rop"
)

// Observer receives a stream's events. Nil callbacks are skipped. The empty
// (absent) value arrives as OnNext with the zero T.
type Observer[T any] struct {
	OnNext     func(T)
	OnError    func(error)
	OnComplete func()
}

func (o Observer[T]) handle(event rop.Result[T]) {
	switch {
	case event.IsEnd():
		if o.OnComplete != nil {
			o.OnComplete()
		}
	case event.IsCancel() || event.IsFailure():
		if o.OnError != nil {
			o.OnError(event.Err())
		}
	default:
		if o.OnNext != nil {
			o.OnNext(event.Result())
		}
	}
}

// sink fans forwarded events out to subscribers and latches the terminal
// event. Events come from the stream's loop, while a cancellation may come
// from any goroutine; deliverMu keeps deliveries from overlapping.
type sink[T any] struct {
	deliverMu sync.Mutex
	mu        sync.Mutex
	handlers  map[uint64]func(rop.Result[T])
	nextID    uint64
	terminal  *rop.Result[T]
	ended     atomic.Bool
	done      chan struct{}
}

func newSink[T any]() *sink[T] {
	return &sink[T]{
		handlers: make(map[uint64]func(rop.Result[T])),
		done:     make(chan struct{}),
	}
}

// subscribe registers h. When the stream has already terminated h is not
// registered and the terminal event is returned for the caller to deliver.
func (s *sink[T]) subscribe(h func(rop.Result[T])) (unsubscribe func(), terminal *rop.Result[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminal != nil {
		t := *s.terminal
		return func() {}, &t
	}

	id := s.nextID
	s.nextID++
	s.handlers[id] = h

	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}, nil
}

// forward delivers event to every subscriber in subscription order. A
// terminal event latches ended before anyone sees it; nothing is delivered
// after it.
func (s *sink[T]) forward(event rop.Result[T]) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if s.terminal != nil {
		s.mu.Unlock()
		return
	}
	if event.IsTerminal() {
		s.ended.Store(true)
		s.terminal = &event
	}
	handlers := make([]func(rop.Result[T]), 0, len(s.handlers))
	for _, id := range slices.Sorted(maps.Keys(s.handlers)) {
		handlers = append(handlers, s.handlers[id])
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}

	if event.IsTerminal() {
		close(s.done)
	}
}

// err is the stream's outcome once done is closed: nil after End.
func (s *sink[T]) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.terminal == nil {
		return nil
	}
	return s.terminal.Err()
}
