package core

import (
	"context"
	"sync"

	"github.com/ib-77/ropause/pkg/rop"
)

type CancellationHandlers[In, Out any] struct {
	OnCancel            func(ctx context.Context, inputCh <-chan rop.Result[In], outCh chan<- rop.Result[Out])
	OnCancelUnprocessed func(ctx context.Context, unprocessed rop.Result[In], outCh chan<- rop.Result[Out])
	OnCancelProcessed   func(ctx context.Context, in rop.Result[In], processed rop.Result[Out], outCh chan<- rop.Result[Out])
	// OnEnd receives the End sentinel instead of the engine. The line stops
	// after it; emitting the sentinel downstream is up to the caller.
	OnEnd func(ctx context.Context, end rop.Result[In])
}

// Locomotive is one line of a Turnout: it feeds every Result from inputCh
// through engine and sends the outcome to outCh until inputCh closes or ctx
// ends. The End sentinel never reaches the engine. It is handed to
// handlers.OnEnd and the line stops without reading further, leaving the rest
// of inputCh to the other lines; re-emitting End once every line has stopped
// is the caller's job, so End stays the last Result downstream. Cancellation
// goes to the OnCancel* handlers, and onSuccess sees each Result that was
// sent. wg.Done is called on return.
func Locomotive[In, Out any](ctx context.Context, inputCh <-chan rop.Result[In], outCh chan<- rop.Result[Out],
	engine func(ctx context.Context, input rop.Result[In]) <-chan rop.Result[Out],
	handlers CancellationHandlers[In, Out],
	onSuccess func(ctx context.Context, in rop.Result[Out]), wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			if handlers.OnCancel != nil {
				handlers.OnCancel(ctx, inputCh, outCh)
			}
			return
		case in, ok := <-inputCh:
			if !ok {
				return
			}

			if in.IsEnd() {
				if handlers.OnEnd != nil {
					handlers.OnEnd(ctx, in)
				}
				return
			}

			select {
			case <-ctx.Done():
				if handlers.OnCancelUnprocessed != nil {
					handlers.OnCancelUnprocessed(ctx, in, outCh)
				}
				if handlers.OnCancel != nil {
					handlers.OnCancel(ctx, inputCh, outCh)
				}
				return
			case pr, running := <-engine(ctx, in):
				if !running {
					return
				}

				select {
				case <-ctx.Done():
					if handlers.OnCancelProcessed != nil {
						handlers.OnCancelProcessed(ctx, in, pr, outCh)
					}
					if handlers.OnCancel != nil {
						handlers.OnCancel(ctx, inputCh, outCh)
					}
					return
				case outCh <- pr:
					if onSuccess != nil {
						onSuccess(ctx, pr)
					}
				}
			}
		}
	}
}
