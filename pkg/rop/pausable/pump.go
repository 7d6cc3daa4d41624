package pausable

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ib-77/ropause/pkg/rop"
	"github.com/ib-77/ropause/pkg/rop/loop"
)

// pump pulls one event per loop task and forwards it to the sink. Each step
// ends by posting the next one, so the stack stays flat and pause requests
// are seen between every two pulls.
//
// scheduled is touched only from tasks running on loop. An owned loop gets
// its goroutine on first use, so a stream nobody subscribes to holds none.
type pump[T any] struct {
	src      source[T]
	gate     *gate
	sink     *sink[T]
	loop     *loop.Loop
	ownsLoop bool
	runCtx   context.Context
	runOnce  sync.Once
	logger   *slog.Logger

	scheduled bool
	finished  atomic.Bool
	pulls     atomic.Int64

	// pullMu keeps release from racing a pull when the stream ends off-loop.
	pullMu   sync.Mutex
	released bool

	watchMu sync.Mutex
	stops   []func() bool
}

// watch ends the stream with a cancellation once ctx is done, or once a
// shared loop closes under it.
func (p *pump[T]) watch(ctx context.Context) {
	stops := []func() bool{
		context.AfterFunc(ctx, func() {
			p.post(func() {
				p.cancel(context.Cause(ctx))
			})
		}),
	}
	if !p.ownsLoop {
		stops = append(stops, p.loop.OnClose(func() {
			p.cancel(loop.ErrClosed)
		}))
	}

	p.watchMu.Lock()
	p.stops = stops
	p.watchMu.Unlock()

	if p.finished.Load() {
		p.stopWatching()
	}
}

// run starts the goroutine of an owned loop.
func (p *pump[T]) run() {
	if !p.ownsLoop {
		return
	}
	p.runOnce.Do(func() {
		go func() {
			_ = p.loop.Run(p.runCtx)
		}()
	})
}

// post queues task and ends the stream if the loop no longer takes work.
func (p *pump[T]) post(task func()) {
	if !p.loop.Post(task) {
		p.cancel(loop.ErrClosed)
		return
	}
	p.run()
}

// start subscribes the pump to the gate. The gate reports its current value
// right away, so an unpaused stream begins pulling immediately.
func (p *pump[T]) start() {
	p.gate.subscribe(p.onGate)
}

func (p *pump[T]) onGate(paused bool) {
	if paused || p.sink.ended.Load() {
		return
	}
	// a closed shared loop is reported by its OnClose hook
	if p.loop.Post(p.kick) {
		p.run()
	}
}

// kick begins a step chain unless one is already scheduled. A pause and
// resume issued before the pending step runs therefore leave a single chain.
func (p *pump[T]) kick() {
	if p.scheduled || p.halted() {
		return
	}
	p.scheduled = true
	p.logger.Debug("pausable: pump running", "pulls", p.pulls.Load())
	p.step()
}

func (p *pump[T]) halted() bool {
	return p.sink.ended.Load() || p.gate.paused()
}

func (p *pump[T]) step() {
	if p.halted() {
		p.halt()
		return
	}

	res, ok := p.pull()
	if !ok {
		p.halt()
		return
	}

	switch res.kind {
	case pullValue:
		p.sink.forward(res.event)
	case pullValueThenEnd:
		p.sink.forward(res.event)
		p.sink.forward(rop.End[T]())
	case pullEnd:
		p.sink.forward(res.event)
	case pullFailed:
		p.logger.Error("pausable: producer failed", "pulls", p.pulls.Load(), "err", res.err)
		p.sink.forward(rop.Fail[T](res.err))
	}

	if p.halted() {
		p.halt()
		return
	}
	if !p.loop.Post(p.step) {
		p.scheduled = false
		p.cancel(loop.ErrClosed)
	}
}

// pull reports false once the producer has been released.
func (p *pump[T]) pull() (pullResult[T], bool) {
	p.pullMu.Lock()
	defer p.pullMu.Unlock()

	if p.released {
		return pullResult[T]{}, false
	}
	res := p.src.pull()
	p.pulls.Add(1)
	return res, true
}

func (p *pump[T]) halt() {
	p.scheduled = false
	if p.sink.ended.Load() {
		p.finish()
		return
	}
	p.logger.Debug("pausable: pump paused", "pulls", p.pulls.Load())
}

// cancel ends the stream from outside the producer: its context is done or
// its loop closed. It may run on any goroutine.
func (p *pump[T]) cancel(err error) {
	p.sink.forward(rop.Cancel[T](err))
	p.finish()
}

// finish releases everything the stream holds. The first call wins.
func (p *pump[T]) finish() {
	if !p.finished.CompareAndSwap(false, true) {
		return
	}

	p.pullMu.Lock()
	p.released = true
	p.src.release()
	p.pullMu.Unlock()

	p.stopWatching()
	p.logger.Info("pausable: stream ended", "pulls", p.pulls.Load(), "err", p.sink.err())

	if p.ownsLoop {
		p.loop.Close()
	}
}

func (p *pump[T]) stopWatching() {
	p.watchMu.Lock()
	stops := p.stops
	p.stops = nil
	p.watchMu.Unlock()

	for _, stop := range stops {
		stop()
	}
}
