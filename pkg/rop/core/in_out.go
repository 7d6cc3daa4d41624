package core

import (
	"context"

	"github.com/ib-77/ropause/pkg/rop"
)

type ToChanHandlers[T any] struct {
	OnStartFail func(ctx context.Context, input []T)
	OnSuccess   func(ctx context.Context, input T)
	OnBreak     func(ctx context.Context, rest []T)
}

func ToChanFromArgs[T any](ctx context.Context, values ...T) <-chan T {
	in := make(chan T)

	go func() {
		defer close(in)

		for _, v := range values {
			select {
			case in <- v:
			case <-ctx.Done():
				return
			}
		}
	}()

	return in
}

// ToChanFromArgsResults emits every value as a success and finishes with the
// End sentinel. OnBreak receives the values that were never sent.
func ToChanFromArgsResults[T any](ctx context.Context, handlers ToChanHandlers[T], values ...T) <-chan rop.Result[T] {
	in := make(chan rop.Result[T])

	go func() {
		defer close(in)

		if ctx.Err() != nil {
			if handlers.OnStartFail != nil {
				handlers.OnStartFail(ctx, values)
			}
			return
		}

		for i, v := range values {
			select {
			case in <- rop.Success(v):
				if handlers.OnSuccess != nil {
					handlers.OnSuccess(ctx, v)
				}
			case <-ctx.Done():
				if handlers.OnBreak != nil {
					handlers.OnBreak(ctx, values[i:])
				}
				return
			}
		}

		select {
		case in <- rop.End[T]():
		case <-ctx.Done():
		}
	}()

	return in
}

func ToChanMany[T any](ctx context.Context, values []T) <-chan T {
	return ToChanFromArgs[T](ctx, values...)
}

func ToChanManyResultsWithHandlers[T any](ctx context.Context, handlers ToChanHandlers[T], values []T) <-chan rop.Result[T] {
	return ToChanFromArgsResults[T](ctx, handlers, values...)
}

func ToChanManyResults[T any](ctx context.Context, values []T) <-chan rop.Result[T] {
	return ToChanFromArgsResults[T](ctx, ToChanHandlers[T]{}, values...)
}

// FromChanMany collects everything from out until it closes or ctx is done.
func FromChanMany[T any](ctx context.Context, out <-chan T) []T {
	res := make([]T, 0)
	for {
		select {
		case v, ok := <-out:
			if !ok {
				return res
			}
			res = append(res, v)
		case <-ctx.Done():
			return res
		}
	}
}

// FromChanValues collects success values until the End sentinel or the
// channel closes. The first failure or cancellation stops collection and is
// returned together with the values read so far.
func FromChanValues[T any](ctx context.Context, out <-chan rop.Result[T]) ([]T, error) {
	res := make([]T, 0)
	for {
		select {
		case r, ok := <-out:
			if !ok || r.IsEnd() {
				return res, nil
			}
			if r.IsFailure() {
				return res, r.Err()
			}
			if r.IsSuccess() || r.IsEmpty() {
				res = append(res, r.Result())
			}
		case <-ctx.Done():
			return res, ctx.Err()
		}
	}
}
