package pausable

import (
	"context"
	"io"
	"iter"

	"github.com/ib-77/ropause/pkg/rop"
)

// Callback is the callback producer: each call advances hidden state and
// returns the next event. Returning rop.End ends the stream; returning a
// failed or cancelled Result ends it with ErrProducerThrew.
type Callback[T any] func() rop.Result[T]

// Iterator is the iterator producer. Advance returns the next event and
// whether the iterator is done. When done is true the returned event is
// still delivered (an empty Result included) and then the stream ends.
// An Iterator that also implements io.Closer is closed when the stream ends.
type Iterator[T any] interface {
	Advance() (event rop.Result[T], done bool)
}

type pullKind int

const (
	pullValue pullKind = iota
	pullValueThenEnd
	pullEnd
	pullFailed
)

type pullResult[T any] struct {
	kind  pullKind
	event rop.Result[T]
	err   error
}

// source is what the pump pulls from. pull is never called concurrently and
// never after release.
type source[T any] interface {
	pull() pullResult[T]
	release()
}

func failed[T any](err error) pullResult[T] {
	if err == nil {
		err = context.Canceled
	}
	return pullResult[T]{kind: pullFailed, err: &ProducerError{Err: err}}
}

// classify interprets one event. done is only ever true for iterators.
func classify[T any](event rop.Result[T], done bool) pullResult[T] {
	switch {
	case event.IsEnd():
		return pullResult[T]{kind: pullEnd, event: event}
	case event.IsCancel() || event.IsFailure():
		return failed[T](event.Err())
	case done:
		return pullResult[T]{kind: pullValueThenEnd, event: event}
	default:
		return pullResult[T]{kind: pullValue, event: event}
	}
}

func recoverPull[T any](res *pullResult[T]) {
	if r := recover(); r != nil {
		pe := &ProducerError{Panic: r}
		if err, ok := r.(error); ok {
			pe.Err = err
		}
		*res = pullResult[T]{kind: pullFailed, err: pe}
	}
}

type callbackSource[T any] struct {
	next func() rop.Result[T]
}

func (c *callbackSource[T]) pull() (res pullResult[T]) {
	defer recoverPull(&res)
	return classify(c.next(), false)
}

func (c *callbackSource[T]) release() {}

type iteratorSource[T any] struct {
	it Iterator[T]
}

func (s *iteratorSource[T]) pull() (res pullResult[T]) {
	defer recoverPull(&res)
	event, done := s.it.Advance()
	return classify(event, done)
}

func (s *iteratorSource[T]) release() {
	if c, ok := s.it.(io.Closer); ok {
		_ = c.Close()
	}
}

// seqSource pulls a push-style sequence one element at a time. Exhaustion
// is a plain end: a sequence has no completion value to deliver.
type seqSource[T any] struct {
	seq  iter.Seq[T]
	next func() (T, bool)
	stop func()
}

func (s *seqSource[T]) pull() (res pullResult[T]) {
	defer recoverPull(&res)

	if s.next == nil {
		s.next, s.stop = iter.Pull(s.seq)
	}
	v, ok := s.next()
	if !ok {
		return pullResult[T]{kind: pullEnd, event: rop.End[T]()}
	}
	return pullResult[T]{kind: pullValue, event: rop.Success(v)}
}

func (s *seqSource[T]) release() {
	if s.stop != nil {
		s.stop()
	}
}

func callbackOf[T any](producer any) (source[T], bool) {
	var next func() rop.Result[T]

	switch p := producer.(type) {
	case Callback[T]:
		next = p
	case func() rop.Result[T]:
		next = p
	case func() (T, error):
		if p != nil {
			next = func() rop.Result[T] {
				v, err := p()
				return rop.FromError(v, err)
			}
		}
	case func() T:
		if p != nil {
			next = func() rop.Result[T] {
				return rop.Success(p())
			}
		}
	}

	if next == nil {
		return nil, false
	}
	return &callbackSource[T]{next: next}, true
}

func iteratorOf[T any](producer any) (source[T], bool) {
	it, ok := producer.(Iterator[T])
	if !ok || rop.IsNil(it) {
		return nil, false
	}
	return &iteratorSource[T]{it: it}, true
}

func seqOf[T any](producer any) (source[T], bool) {
	var seq iter.Seq[T]

	switch p := producer.(type) {
	case iter.Seq[T]:
		seq = p
	case func(yield func(T) bool):
		seq = p
	}

	if seq == nil {
		return nil, false
	}
	return &seqSource[T]{seq: seq}, true
}
