package lite

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ib-77/ropause/pkg/rop"
	"github.com/ib-77/ropause/pkg/rop/core"
	"github.com/ib-77/ropause/pkg/rop/solo"
)

var ErrCancelled = errors.New("operation cancelled")

type Engine[In, Out any] func(ctx context.Context, input rop.Result[In]) <-chan rop.Result[Out]

func Run[T any](ctx context.Context, inputCh <-chan rop.Result[T],
	engine Engine[T, T], lines int) <-chan rop.Result[T] {
	return Turnout(ctx, inputCh, engine, lines)
}

// Turnout runs engine over inputCh on the given number of lines. With more
// than one line results may be reordered, but a received End sentinel is
// always emitted once, after every line has drained. lines <= 0 falls back
// to core.WithWorkerOptions, then to a single ordered line.
func Turnout[In, Out any](ctx context.Context, inputCh <-chan rop.Result[In],
	engine Engine[In, Out], lines int) <-chan rop.Result[Out] {

	if lines <= 0 {
		lines = core.GetWorkerMaxCount(ctx, 1)
	}

	out := make(chan rop.Result[Out])
	wg := &sync.WaitGroup{}

	var end atomic.Pointer[rop.Result[In]]
	handlers := core.CancellationHandlers[In, Out]{
		OnEnd: func(ctx context.Context, e rop.Result[In]) {
			end.CompareAndSwap(nil, &e)
		},
	}

	for range lines {
		wg.Add(1)
		go core.Locomotive(ctx, inputCh, out, engine, handlers, nil, wg)
	}

	go func() {
		defer close(out)
		wg.Wait()

		if e := end.Load(); e != nil {
			select {
			case out <- rop.EndFrom[In, Out](*e):
			case <-ctx.Done():
			}
		}
	}()

	return out
}

// lift runs step on a single Result in its own goroutine and reports
// ErrCancelled when ctx ends first.
func lift[In, Out any](step func(ctx context.Context, input rop.Result[In]) rop.Result[Out]) Engine[In, Out] {
	return func(ctx context.Context, input rop.Result[In]) <-chan rop.Result[Out] {
		ch := make(chan rop.Result[Out], 1)
		out := make(chan rop.Result[Out], 1)

		go func() {
			defer close(ch)
			if ctx.Err() == nil {
				ch <- step(ctx, input)
			}
		}()

		go func() {
			defer close(out)

			select {
			case pr, ok := <-ch:
				if ok {
					out <- pr
				} else {
					out <- rop.Cancel[Out](ErrCancelled)
				}
			case <-ctx.Done():
				out <- rop.Cancel[Out](ErrCancelled)
			}
		}()

		return out
	}
}

func Validate[T any](validate func(ctx context.Context, in T) (valid bool, errMsg string)) Engine[T, T] {
	return lift(func(ctx context.Context, input rop.Result[T]) rop.Result[T] {
		return solo.AndValidate(ctx, input, validate)
	})
}

func Switch[In, Out any](switchOnSuccess func(ctx context.Context, r In) rop.Result[Out]) Engine[In, Out] {
	return lift(func(ctx context.Context, input rop.Result[In]) rop.Result[Out] {
		return solo.Switch(ctx, input, switchOnSuccess)
	})
}

func Map[In, Out any](mapOnSuccess func(ctx context.Context, r In) Out) Engine[In, Out] {
	return lift(func(ctx context.Context, input rop.Result[In]) rop.Result[Out] {
		return solo.Map(ctx, input, mapOnSuccess)
	})
}

func Tee[T any](sideEffect func(ctx context.Context, r rop.Result[T])) Engine[T, T] {
	return lift(func(ctx context.Context, input rop.Result[T]) rop.Result[T] {
		return solo.Tee(ctx, input, sideEffect)
	})
}

func Try[In, Out any](onTryExecute func(ctx context.Context, r In) (Out, error)) Engine[In, Out] {
	return lift(func(ctx context.Context, input rop.Result[In]) rop.Result[Out] {
		return solo.Try(ctx, input, onTryExecute)
	})
}

type FinallyHandlers[In, Out any] struct {
	OnSuccess func(ctx context.Context, r In) Out
	OnError   func(ctx context.Context, err error) Out
	OnCancel  func(ctx context.Context, err error) Out
}

// Finally reduces every Result to Out and stops at the End sentinel. Empty
// values carry nothing and are skipped.
func Finally[In, Out any](ctx context.Context, inputCh <-chan rop.Result[In],
	handlers FinallyHandlers[In, Out]) <-chan Out {

	out := make(chan Out)

	go func() {
		defer close(out)

		for {
			select {
			case <-ctx.Done():
				return
			case in, ok := <-inputCh:
				if !ok || in.IsEnd() {
					return
				}

				res, ok := solo.Finally(ctx, in, handlers.OnSuccess, handlers.OnError, handlers.OnCancel)
				if !ok {
					continue
				}

				select {
				case <-ctx.Done():
					return
				case out <- res:
				}
			}
		}
	}()

	return out
}
