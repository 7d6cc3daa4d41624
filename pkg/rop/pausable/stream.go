package pausable

import (
	"context"
	"iter"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ib-77/ropause/pkg/rop"
	"github.com/ib-77/ropause/pkg/rop/core"
	"github.com/ib-77/ropause/pkg/rop/loop"
)

type State int

const (
	StateUnstarted State = iota // No subscriber yet, nothing pulled.
	StateRunning                // Pulling whenever the loop gets to it.
	StatePaused                 // Producer is not called until Resume.
	StateEnded                  // Terminal event delivered; no more pulls.
)

func (s State) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Stream is a pausable event stream over a single producer.
//
// Production starts with the first subscription. Events are delivered on the
// stream's loop in the order the producer yields them, followed by exactly
// one terminal event: End, or an error for a failed pull or a cancelled
// context. Pause and Resume are safe from any goroutine, including from
// inside an observer; a pause stops the next pull, never one in progress.
type Stream[T any] struct {
	id      uuid.UUID
	gate    *gate
	sink    *sink[T]
	pump    *pump[T]
	buffer  int
	logger  *slog.Logger
	started atomic.Bool
}

// New creates a stream over a callback producer (Callback, func() rop.Result[T],
// func() (T, error), func() T), an Iterator or an iter.Seq. Any other value
// fails with ErrInvalidProducerKind before anything is pulled.
func New[T any](ctx context.Context, producer any, opts ...Option) (*Stream[T], error) {
	if src, ok := callbackOf[T](producer); ok {
		return newStream(ctx, src, opts), nil
	}
	if src, ok := iteratorOf[T](producer); ok {
		return newStream(ctx, src, opts), nil
	}
	if src, ok := seqOf[T](producer); ok {
		return newStream(ctx, src, opts), nil
	}
	return nil, invalidKind("callback, Iterator or iter.Seq", producer)
}

// FromCallback accepts callback producers only.
func FromCallback[T any](ctx context.Context, producer any, opts ...Option) (*Stream[T], error) {
	src, ok := callbackOf[T](producer)
	if !ok {
		return nil, invalidKind("callback", producer)
	}
	return newStream(ctx, src, opts), nil
}

// FromIterator accepts Iterator producers only; functions, including
// functions that would return an Iterator, are rejected.
func FromIterator[T any](ctx context.Context, producer any, opts ...Option) (*Stream[T], error) {
	src, ok := iteratorOf[T](producer)
	if !ok {
		return nil, invalidKind("Iterator", producer)
	}
	return newStream(ctx, src, opts), nil
}

func FromSeq[T any](ctx context.Context, seq iter.Seq[T], opts ...Option) (*Stream[T], error) {
	src, ok := seqOf[T](seq)
	if !ok {
		return nil, invalidKind("iter.Seq", seq)
	}
	return newStream(ctx, src, opts), nil
}

func newStream[T any](ctx context.Context, src source[T], opts []Option) *Stream[T] {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = core.GetLogger(ctx, core.DiscardLogger())
	}

	id := uuid.New()
	logger := cfg.logger.With("stream", id.String())

	l, owns := cfg.loop, false
	if l == nil {
		l, owns = loop.New(), true
	}

	s := &Stream[T]{
		id:     id,
		gate:   newGate(cfg.initiallyPaused),
		sink:   newSink[T](),
		buffer: cfg.buffer,
		logger: logger,
	}
	p := &pump[T]{
		src:      src,
		gate:     s.gate,
		sink:     s.sink,
		loop:     l,
		ownsLoop: owns,
		runCtx:   context.WithoutCancel(ctx),
		logger:   logger,
	}
	s.pump = p
	p.watch(ctx)

	logger.Debug("pausable: stream created", "paused", cfg.initiallyPaused)
	return s
}

func (s *Stream[T]) ID() uuid.UUID {
	return s.id
}

func (s *Stream[T]) State() State {
	switch {
	case s.sink.ended.Load():
		return StateEnded
	case !s.started.Load():
		return StateUnstarted
	case s.gate.paused():
		return StatePaused
	default:
		return StateRunning
	}
}

func (s *Stream[T]) Ended() bool {
	return s.sink.ended.Load()
}

func (s *Stream[T]) Paused() bool {
	return s.gate.paused()
}

// Pause stops production before the next pull. It is a no-op when already
// paused or after the stream ended.
func (s *Stream[T]) Pause() {
	if s.sink.ended.Load() {
		return
	}
	if s.gate.pause() {
		s.logger.Debug("pausable: pause requested")
	}
}

// Resume restarts production. It is a no-op when not paused or after the
// stream ended.
func (s *Stream[T]) Resume() {
	if s.sink.ended.Load() {
		return
	}
	if s.gate.resume() {
		s.logger.Debug("pausable: resume requested")
	}
}

func (s *Stream[T]) start() {
	if s.started.CompareAndSwap(false, true) {
		s.pump.start()
	}
}

// Subscribe registers o and starts production if this is the first
// subscriber. Subscribing after the stream ended delivers the terminal
// event to o right away, on the caller's goroutine.
func (s *Stream[T]) Subscribe(o Observer[T]) (unsubscribe func()) {
	return s.SubscribeResults(o.handle)
}

// SubscribeResults is Subscribe for raw envelopes, End sentinel included.
func (s *Stream[T]) SubscribeResults(h func(rop.Result[T])) (unsubscribe func()) {
	unsubscribe, terminal := s.sink.subscribe(h)
	if terminal != nil {
		h(*terminal)
		return unsubscribe
	}
	s.start()
	return unsubscribe
}

// Results subscribes a channel. The terminal Result is the last value sent
// before the channel closes. Cancelling ctx unsubscribes and closes the
// channel. A reader that stops reading without cancelling ctx stalls the
// stream's loop.
func (s *Stream[T]) Results(ctx context.Context) <-chan rop.Result[T] {
	c := &channelSink[T]{
		ctx: ctx,
		out: make(chan rop.Result[T], s.buffer),
	}

	c.mu.Lock()
	unsubscribe, terminal := s.sink.subscribe(c.deliver)
	if terminal != nil {
		c.mu.Unlock()
		go c.deliver(*terminal)
		return c.out
	}
	c.unsubscribe = unsubscribe
	c.stopWatch = context.AfterFunc(ctx, c.cancel)
	c.mu.Unlock()

	s.start()
	return c.out
}

// Wait blocks until the stream has delivered its terminal event and returns
// nil after End, the failure otherwise. It does not start production.
func (s *Stream[T]) Wait(ctx context.Context) error {
	select {
	case <-s.sink.done:
		return s.sink.err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

type channelSink[T any] struct {
	mu          sync.Mutex
	ctx         context.Context
	out         chan rop.Result[T]
	closed      bool
	unsubscribe func()
	stopWatch   func() bool
}

func (c *channelSink[T]) deliver(event rop.Result[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.out <- event:
	case <-c.ctx.Done():
	}
	if event.IsTerminal() {
		c.closeLocked()
	}
}

func (c *channelSink[T]) cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	if !c.closed {
		c.closeLocked()
	}
}

func (c *channelSink[T]) closeLocked() {
	c.closed = true
	close(c.out)
	if c.stopWatch != nil {
		c.stopWatch()
	}
}
