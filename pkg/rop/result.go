package rop

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrEnd marks the end of a stream. Producers that report errors instead of
// Results return it (or wrap it) to say no more events will follow.
var ErrEnd = errors.New("end of stream")

type Result[T any] struct {
	id        uuid.UUID
	createdAt time.Time
	result    T
	err       error
	isSuccess bool
	isCancel  bool
	isEnd     bool
	hasResult bool
}

func Success[T any](r T) Result[T] {
	return Result[T]{
		result:    r,
		err:       nil,
		isSuccess: true,
		isCancel:  false,
		createdAt: time.Now().UTC(),
		hasResult: true,
		id:        uuid.New(),
	}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		isSuccess: false,
		isCancel:  false,
		createdAt: time.Now().UTC(),
		hasResult: false,
		id:        uuid.New(),
	}
}

func Cancel[T any](err error) Result[T] {
	return Result[T]{
		err:       err,
		isSuccess: false,
		isCancel:  true,
		createdAt: time.Now().UTC(),
		hasResult: false,
		id:        uuid.New(),
	}
}

// End returns the end-of-stream sentinel. It is neither a success nor a
// failure: consumers detect it with IsEnd and stop reading.
func End[T any]() Result[T] {
	return Result[T]{
		isEnd:     true,
		createdAt: time.Now().UTC(),
		id:        uuid.New(),
	}
}

// EndFrom converts a sentinel between element types keeping its identity.
func EndFrom[In, Out any](from Result[In]) Result[Out] {
	return Result[Out]{
		isEnd:     from.isEnd,
		createdAt: from.createdAt,
		id:        from.id,
	}
}

func CancelFrom[In, Out any](from Result[In]) Result[Out] {
	return Result[Out]{
		err:       from.err,
		isSuccess: from.isSuccess,
		isCancel:  from.isCancel,
		isEnd:     from.isEnd,
		createdAt: from.createdAt,
		hasResult: false,
		id:        from.id,
	}
}

func (r Result[T]) Result() T {
	return r.result
}

func (r Result[T]) Err() error {
	return r.err
}

func (r Result[T]) IsSuccess() bool {
	return r.isSuccess
}

func (r Result[T]) IsFailure() bool {
	return r.err != nil
}

func (r Result[T]) IsCancel() bool {
	return r.isCancel
}

func (r Result[T]) IsEnd() bool {
	return r.isEnd
}

// IsTerminal reports whether nothing may follow r on a stream: the sentinel,
// a failure or a cancellation.
func (r Result[T]) IsTerminal() bool {
	return r.isEnd || r.err != nil || r.isCancel
}

func (r Result[T]) HasResult() bool {
	return r.hasResult
}

func (r Result[T]) CreatedAt() time.Time {
	return r.createdAt
}

// IsEmpty reports the absent value: not a success, not a failure, not the
// sentinel. The zero Result is empty.
func (r Result[T]) IsEmpty() bool {
	return r.err == nil && !r.isCancel && !r.isSuccess && !r.isEnd
}

func (r Result[T]) Id() uuid.UUID {
	return r.id
}
