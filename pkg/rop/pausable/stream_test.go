package pausable_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/ropause/pkg/rop"
	"github.com/ib-77/ropause/pkg/rop/loop"
	"github.com/ib-77/ropause/pkg/rop/pausable"
)

// recorder collects what an Observer receives.
type recorder struct {
	mu       sync.Mutex
	values   []int
	errs     []error
	complete int
}

func (r *recorder) observer(onNext func(int)) pausable.Observer[int] {
	return pausable.Observer[int]{
		OnNext: func(v int) {
			r.mu.Lock()
			r.values = append(r.values, v)
			r.mu.Unlock()
			if onNext != nil {
				onNext(v)
			}
		},
		OnError: func(err error) {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
		},
		OnComplete: func() {
			r.mu.Lock()
			r.complete++
			r.mu.Unlock()
		},
	}
}

func (r *recorder) snapshot() ([]int, []error, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.values...), append([]error(nil), r.errs...), r.complete
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// counter yields 0..n-1 and then the End sentinel, failing the test on
// overlapping pulls.
func counter(t *testing.T, n int, pulls *atomic.Int32) pausable.Callback[int] {
	var inFlight atomic.Bool
	next := 0
	return func() rop.Result[int] {
		if !inFlight.CompareAndSwap(false, true) {
			t.Error("concurrent pull")
		}
		defer inFlight.Store(false)

		pulls.Add(1)
		if next >= n {
			return rop.End[int]()
		}
		v := next
		next++
		return rop.Success(v)
	}
}

func sequence(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestStream_DeliversEverythingInOrderThenCompletes(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var pulls atomic.Int32
	s, err := pausable.New[int](ctx, counter(t, 30, &pulls))
	require.NoError(t, err)
	assert.Equal(t, pausable.StateUnstarted, s.State())

	rec := &recorder{}
	s.Subscribe(rec.observer(nil))

	require.NoError(t, s.Wait(ctx))
	values, errs, complete := rec.snapshot()
	assert.Equal(t, sequence(30), values)
	assert.Empty(t, errs)
	assert.Equal(t, 1, complete)
	assert.Equal(t, int32(31), pulls.Load())
	assert.Equal(t, pausable.StateEnded, s.State())
}

func TestStream_PauseAfterEighthValueStopsProduction(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var pulls atomic.Int32
	s, err := pausable.New[int](ctx, counter(t, 30, &pulls))
	require.NoError(t, err)

	rec := &recorder{}
	s.Subscribe(rec.observer(func(v int) {
		if v == 7 {
			s.Pause()
		}
	}))

	require.Eventually(t, func() bool { return rec.count() == 8 }, time.Second, time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	values, _, complete := rec.snapshot()
	assert.Equal(t, sequence(8), values)
	assert.Equal(t, 0, complete)
	assert.Equal(t, int32(8), pulls.Load())
	assert.Equal(t, pausable.StatePaused, s.State())

	s.Resume()
	require.NoError(t, s.Wait(ctx))

	values, _, complete = rec.snapshot()
	assert.Equal(t, sequence(30), values)
	assert.Equal(t, 1, complete)
}

func TestStream_InitiallyPausedDeliversNothingUntilResume(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var pulls atomic.Int32
	s, err := pausable.New[int](ctx, counter(t, 30, &pulls), pausable.WithInitiallyPaused(true))
	require.NoError(t, err)

	rec := &recorder{}
	s.Subscribe(rec.observer(nil))

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
	assert.Equal(t, int32(0), pulls.Load())
	assert.Equal(t, pausable.StatePaused, s.State())

	s.Resume()
	require.NoError(t, s.Wait(ctx))

	values, _, complete := rec.snapshot()
	assert.Equal(t, sequence(30), values)
	assert.Equal(t, 1, complete)
}

func TestStream_InvalidProducerKindFailsBeforeAnyPull(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pulled := false
	callback := func() rop.Result[int] {
		pulled = true
		return rop.End[int]()
	}
	it := &listIterator{}

	_, err := pausable.FromIterator[int](ctx, callback)
	assert.ErrorIs(t, err, pausable.ErrInvalidProducerKind)

	_, err = pausable.FromCallback[int](ctx, it)
	assert.ErrorIs(t, err, pausable.ErrInvalidProducerKind)

	factory := func() pausable.Iterator[int] { return it }
	_, err = pausable.FromIterator[int](ctx, factory)
	assert.ErrorIs(t, err, pausable.ErrInvalidProducerKind)

	seq := func(yield func(int) bool) {}
	_, err = pausable.FromCallback[int](ctx, seq)
	assert.ErrorIs(t, err, pausable.ErrInvalidProducerKind)

	for _, bad := range []any{nil, struct{ Next func() int }{}, []int{1, 2}, map[string]int{}, func(int) int { return 0 }} {
		s, err := pausable.New[int](ctx, bad)
		assert.ErrorIs(t, err, pausable.ErrInvalidProducerKind, "%T", bad)
		assert.Nil(t, s)
	}

	assert.False(t, pulled)
}

func TestStream_RepeatedPauseAndResumeAreIdempotent(t *testing.T) {
	t.Parallel()

	l := loop.New()
	defer l.Close()

	var pulls atomic.Int32
	s, err := pausable.New[int](context.Background(), counter(t, 30, &pulls), pausable.WithLoop(l))
	require.NoError(t, err)

	rec := &recorder{}
	s.Subscribe(rec.observer(nil))
	require.Equal(t, 1, l.Pending())

	s.Resume()
	s.Resume()
	assert.Equal(t, 1, l.Pending(), "resume while running must not schedule")

	require.True(t, l.Step())
	assert.Equal(t, []int{0}, first(rec))

	s.Pause()
	s.Pause()
	s.Pause()
	require.True(t, l.Step())
	assert.Equal(t, 0, l.Pending(), "paused pump must not reschedule")
	assert.Equal(t, int32(1), pulls.Load())

	s.Resume()
	s.Resume()
	s.Resume()
	assert.Equal(t, 1, l.Pending(), "only the effective resume schedules")

	require.True(t, l.Step())
	assert.Equal(t, []int{0, 1}, first(rec))
	assert.Equal(t, 1, l.Pending())
}

func TestStream_PauseResumeInOneTickComposeInOrder(t *testing.T) {
	t.Parallel()

	l := loop.New()
	defer l.Close()

	var pulls atomic.Int32
	s, err := pausable.New[int](context.Background(), counter(t, 30, &pulls), pausable.WithLoop(l))
	require.NoError(t, err)

	rec := &recorder{}
	s.Subscribe(rec.observer(nil))
	require.True(t, l.Step())

	// pause-then-resume while a step is queued: one chain, nothing lost
	s.Pause()
	s.Resume()
	for l.Pending() > 0 && pulls.Load() < 3 {
		l.Step()
	}
	assert.Equal(t, []int{0, 1, 2}, first(rec))
	assert.Equal(t, 1, l.Pending())

	// resume-then-pause while halted: the queued kick sees the final pause
	s.Pause()
	require.True(t, l.Step())
	require.Equal(t, 0, l.Pending())
	before := pulls.Load()

	s.Resume()
	s.Pause()
	for l.Step() {
	}
	assert.Equal(t, before, pulls.Load())
	assert.Equal(t, pausable.StatePaused, s.State())
}

func TestStream_PauseAndResumeOncePerEventLosesNothing(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var pulls atomic.Int32
	s, err := pausable.New[int](ctx, counter(t, 30, &pulls))
	require.NoError(t, err)

	got := make(chan int, 64)
	rec := &recorder{}
	s.Subscribe(rec.observer(func(v int) {
		s.Pause()
		got <- v
	}))

	for i := range 30 {
		select {
		case v := <-got:
			require.Equal(t, i, v)
		case <-ctx.Done():
			t.Fatalf("stalled after %d values", i)
		}
		s.Resume()
	}

	require.NoError(t, s.Wait(ctx))
	values, _, complete := rec.snapshot()
	assert.Equal(t, sequence(30), values)
	assert.Equal(t, 1, complete)
}

func TestStream_SentinelInTheMiddleEndsStream(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var pulls atomic.Int32
	i := 0
	callback := func() rop.Result[int] {
		pulls.Add(1)
		defer func() { i++ }()
		if i == 5 {
			return rop.End[int]()
		}
		return rop.Success(i)
	}

	s, err := pausable.FromCallback[int](ctx, callback, pausable.WithInitiallyPaused(true))
	require.NoError(t, err)

	var ends atomic.Int32
	rec := &recorder{}
	s.SubscribeResults(func(r rop.Result[int]) {
		if r.IsEnd() {
			ends.Add(1)
		}
	})
	s.Subscribe(rec.observer(nil))
	s.Resume()

	require.NoError(t, s.Wait(ctx))
	values, _, complete := rec.snapshot()
	assert.Equal(t, sequence(5), values)
	assert.Equal(t, 1, complete)
	assert.Equal(t, int32(1), ends.Load())
	assert.Equal(t, int32(6), pulls.Load())

	s.Resume()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(6), pulls.Load())
}

// listIterator yields items then reports done with final.
type listIterator struct {
	items []rop.Result[int]
	final rop.Result[int]
	pulls atomic.Int32
}

func (l *listIterator) Advance() (rop.Result[int], bool) {
	l.pulls.Add(1)
	if len(l.items) == 0 {
		return l.final, true
	}
	next := l.items[0]
	l.items = l.items[1:]
	return next, false
}

func runIterator(t *testing.T, it *listIterator) ([]rop.Result[int], *recorder) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s, err := pausable.FromIterator[int](ctx, it, pausable.WithInitiallyPaused(true))
	require.NoError(t, err)

	var mu sync.Mutex
	var raw []rop.Result[int]
	s.SubscribeResults(func(r rop.Result[int]) {
		mu.Lock()
		raw = append(raw, r)
		mu.Unlock()
	})
	rec := &recorder{}
	s.Subscribe(rec.observer(nil))
	s.Resume()

	require.NoError(t, s.Wait(ctx))
	mu.Lock()
	defer mu.Unlock()
	return raw, rec
}

func TestIterator_AbsentFinalValueIsDelivered(t *testing.T) {
	t.Parallel()

	it := &listIterator{items: []rop.Result[int]{rop.Success(1), rop.Success(2)}}
	raw, rec := runIterator(t, it)

	require.Len(t, raw, 4)
	assert.True(t, raw[2].IsEmpty())
	assert.True(t, raw[3].IsEnd())

	values, _, complete := rec.snapshot()
	assert.Equal(t, []int{1, 2, 0}, values)
	assert.Equal(t, 1, complete)
}

func TestIterator_FinalValueThenSyntheticEnd(t *testing.T) {
	t.Parallel()

	it := &listIterator{items: []rop.Result[int]{rop.Success(1)}, final: rop.Success(9)}
	raw, rec := runIterator(t, it)

	require.Len(t, raw, 3)
	assert.Equal(t, 9, raw[1].Result())
	assert.True(t, raw[2].IsEnd())

	_, _, complete := rec.snapshot()
	assert.Equal(t, 1, complete)
}

func TestIterator_DoneWithSentinelIsNotDuplicated(t *testing.T) {
	t.Parallel()

	it := &listIterator{items: []rop.Result[int]{rop.Success(1)}, final: rop.End[int]()}
	raw, rec := runIterator(t, it)

	require.Len(t, raw, 2)
	assert.True(t, raw[1].IsEnd())
	_, _, complete := rec.snapshot()
	assert.Equal(t, 1, complete)
}

func TestIterator_SentinelBeforeDoneStopsPulling(t *testing.T) {
	t.Parallel()

	it := &listIterator{items: []rop.Result[int]{rop.Success(1), rop.End[int](), rop.Success(3)}}
	raw, _ := runIterator(t, it)

	require.Len(t, raw, 2)
	assert.True(t, raw[1].IsEnd())
	assert.Equal(t, int32(2), it.pulls.Load())
}

func TestStream_ProducerErrorEndsStream(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	boom := errors.New("boom")
	var pulls atomic.Int32
	producer := func() (int, error) {
		n := pulls.Add(1)
		if n == 3 {
			return 0, boom
		}
		return int(n), nil
	}

	s, err := pausable.New[int](ctx, producer)
	require.NoError(t, err)

	rec := &recorder{}
	s.Subscribe(rec.observer(nil))

	err = s.Wait(ctx)
	assert.ErrorIs(t, err, pausable.ErrProducerThrew)
	assert.ErrorIs(t, err, boom)

	values, errs, complete := rec.snapshot()
	assert.Equal(t, []int{1, 2}, values)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
	assert.Equal(t, 0, complete)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(3), pulls.Load())
}

func TestStream_ProducerPanicEndsStream(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	s, err := pausable.New[int](ctx, func() int { panic("exploded") })
	require.NoError(t, err)

	rec := &recorder{}
	s.Subscribe(rec.observer(nil))

	err = s.Wait(ctx)
	var pe *pausable.ProducerError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "exploded", pe.Panic)
}

func TestStream_AfterEndPauseResumeAreNoOps(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var pulls atomic.Int32
	s, err := pausable.New[int](ctx, counter(t, 3, &pulls))
	require.NoError(t, err)

	s.Subscribe(pausable.Observer[int]{})
	require.NoError(t, s.Wait(ctx))

	s.Pause()
	s.Resume()
	s.Resume()
	assert.Equal(t, pausable.StateEnded, s.State())
	assert.False(t, s.Paused())

	late := &recorder{}
	s.Subscribe(late.observer(nil))
	values, _, complete := late.snapshot()
	assert.Empty(t, values)
	assert.Equal(t, 1, complete)
	assert.Equal(t, int32(4), pulls.Load())
}

func TestStream_ContextCancelEndsPausedStream(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()

	var pulls atomic.Int32
	s, err := pausable.New[int](ctx, counter(t, 30, &pulls), pausable.WithInitiallyPaused(true))
	require.NoError(t, err)

	rec := &recorder{}
	s.Subscribe(rec.observer(nil))
	cancel()

	err = s.Wait(waitCtx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, s.Ended())

	_, errs, complete := rec.snapshot()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
	assert.Equal(t, 0, complete)
	assert.Equal(t, int32(0), pulls.Load())
}

func TestFromSeq_DeliversAndStopsOnCancel(t *testing.T) {
	t.Parallel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()

	finite, err := pausable.FromSeq[int](waitCtx, func(yield func(int) bool) {
		for i := range 4 {
			if !yield(i) {
				return
			}
		}
	})
	require.NoError(t, err)

	rec := &recorder{}
	finite.Subscribe(rec.observer(nil))
	require.NoError(t, finite.Wait(waitCtx))
	values, _, complete := rec.snapshot()
	assert.Equal(t, sequence(4), values)
	assert.Equal(t, 1, complete)

	ctx, cancel := context.WithCancel(context.Background())
	var stopped atomic.Bool
	infinite, err := pausable.FromSeq[int](ctx, func(yield func(int) bool) {
		defer stopped.Store(true)
		for i := 0; ; i++ {
			if !yield(i) {
				return
			}
		}
	})
	require.NoError(t, err)

	infinite.Subscribe(pausable.Observer[int]{
		OnNext: func(v int) {
			if v == 10 {
				cancel()
			}
		},
	})

	assert.ErrorIs(t, infinite.Wait(waitCtx), context.Canceled)
	require.Eventually(t, stopped.Load, time.Second, time.Millisecond)

	_, err = pausable.FromSeq[int](waitCtx, nil)
	assert.ErrorIs(t, err, pausable.ErrInvalidProducerKind)
}

func stackDepth() int {
	pc := make([]uintptr, 1024)
	return runtime.Callers(0, pc)
}

func TestStream_StackDepthStaysFlat(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const total = 50000
	n := 0
	depthFirst, depthMax := 0, 0
	producer := func() rop.Result[int] {
		d := stackDepth()
		if n == 0 {
			depthFirst = d
		}
		depthMax = max(depthMax, d)
		if n == total {
			return rop.End[int]()
		}
		n++
		return rop.Success(n)
	}

	s, err := pausable.New[int](ctx, producer)
	require.NoError(t, err)
	s.Subscribe(pausable.Observer[int]{})

	require.NoError(t, s.Wait(ctx))
	assert.Equal(t, total, n)
	assert.LessOrEqual(t, depthMax, depthFirst+2)
}

func TestStream_SharedLoopInterleavesStreams(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	l := loop.New()
	defer l.Close()

	var order []string
	var pa, pb atomic.Int32
	a, err := pausable.New[int](ctx, counter(t, 3, &pa), pausable.WithLoop(l))
	require.NoError(t, err)
	b, err := pausable.New[int](ctx, counter(t, 3, &pb), pausable.WithLoop(l))
	require.NoError(t, err)

	a.Subscribe(pausable.Observer[int]{OnNext: func(int) { order = append(order, "a") }})
	b.Subscribe(pausable.Observer[int]{OnNext: func(int) { order = append(order, "b") }})

	for l.Step() {
	}

	require.NoError(t, a.Wait(ctx))
	require.NoError(t, b.Wait(ctx))
	assert.Equal(t, []string{"a", "b", "a", "b", "a", "b"}, order)

	select {
	case <-l.Done():
		t.Fatal("a shared loop must outlive its streams")
	default:
	}
}

func TestStream_ConcurrentPauseResumeKeepsSequence(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var pulls atomic.Int32
	s, err := pausable.New[int](ctx, counter(t, 500, &pulls))
	require.NoError(t, err)

	rec := &recorder{}
	s.Subscribe(rec.observer(nil))

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 200 {
				if j%2 == 0 {
					s.Pause()
				} else {
					s.Resume()
				}
			}
		}()
	}
	wg.Wait()
	s.Resume()

	require.NoError(t, s.Wait(ctx))
	values, _, complete := rec.snapshot()
	assert.Equal(t, sequence(500), values)
	assert.Equal(t, 1, complete)
}

func TestStream_ResultsChannelEndsWithSentinelThenCloses(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var pulls atomic.Int32
	s, err := pausable.New[int](ctx, counter(t, 5, &pulls), pausable.WithBuffer(2))
	require.NoError(t, err)

	var got []rop.Result[int]
	for r := range s.Results(ctx) {
		got = append(got, r)
	}

	require.Len(t, got, 6)
	for i, r := range got[:5] {
		assert.Equal(t, i, r.Result())
	}
	assert.True(t, got[5].IsEnd())

	late := s.Results(ctx)
	r, ok := <-late
	require.True(t, ok)
	assert.True(t, r.IsEnd())
	_, ok = <-late
	assert.False(t, ok)
}

func TestStream_ResultsCancelClosesChannel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var pulls atomic.Int32
	s, err := pausable.New[int](ctx, counter(t, math.MaxInt32, &pulls))
	require.NoError(t, err)

	readCtx, stopReading := context.WithCancel(ctx)
	ch := s.Results(readCtx)
	first := <-ch
	assert.Equal(t, 0, first.Result())
	stopReading()

	for range ch {
	}

	s.Pause()
	assert.Equal(t, pausable.StatePaused, s.State())
	assert.False(t, s.Ended())
}

func TestStream_WithLoggerTagsStreamID(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, err := pausable.New[int](ctx, func() int { return 1 },
		pausable.WithLogger(logger), pausable.WithInitiallyPaused(true))
	require.NoError(t, err)

	logged := buf.String()
	assert.Contains(t, logged, "pausable: stream created")
	assert.Contains(t, logged, "stream="+s.ID().String())
	assert.Contains(t, logged, "paused=true")

	cancel()
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	assert.ErrorIs(t, s.Wait(waitCtx), context.Canceled)
}

// Not parallel: it counts goroutines.
func TestStream_UnsubscribedStreamsHoldNoGoroutine(t *testing.T) {
	before := runtime.NumGoroutine()

	streams := make([]*pausable.Stream[int], 0, 100)
	for i := range 100 {
		s, err := pausable.New[int](context.Background(), func() int { return 1 },
			pausable.WithInitiallyPaused(i%2 == 0))
		require.NoError(t, err)
		streams = append(streams, s)
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := pausable.New[int](ctx, func() int { return 1 })
	require.NoError(t, err)
	assert.LessOrEqual(t, runtime.NumGoroutine(), before)

	cancel()
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	assert.ErrorIs(t, s.Wait(waitCtx), context.Canceled)
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, time.Second, time.Millisecond)

	for _, s := range streams {
		assert.Equal(t, pausable.StateUnstarted, s.State())
	}
}

func TestStream_ClosedSharedLoopEndsStream(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	l := loop.New()
	var pulls atomic.Int32
	s, err := pausable.New[int](ctx, counter(t, 30, &pulls), pausable.WithLoop(l))
	require.NoError(t, err)

	rec := &recorder{}
	s.Subscribe(rec.observer(nil))
	require.True(t, l.Step())
	l.Close()

	err = s.Wait(ctx)
	assert.ErrorIs(t, err, loop.ErrClosed)
	assert.Equal(t, pausable.StateEnded, s.State())

	values, errs, complete := rec.snapshot()
	assert.Equal(t, []int{0}, values)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], loop.ErrClosed)
	assert.Equal(t, 0, complete)
	assert.Equal(t, int32(1), pulls.Load())
}

func TestStream_SharedLoopContextEndsPausedStream(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	loopCtx, stopLoop := context.WithCancel(ctx)
	l := loop.Start(loopCtx)

	var pulls atomic.Int32
	s, err := pausable.New[int](ctx, counter(t, 30, &pulls),
		pausable.WithLoop(l), pausable.WithInitiallyPaused(true))
	require.NoError(t, err)
	s.Subscribe(pausable.Observer[int]{})

	stopLoop()
	assert.ErrorIs(t, s.Wait(ctx), loop.ErrClosed)
	assert.Equal(t, int32(0), pulls.Load())

	late, err := pausable.New[int](ctx, counter(t, 30, &pulls), pausable.WithLoop(l))
	require.NoError(t, err)
	assert.ErrorIs(t, late.Wait(ctx), loop.ErrClosed)
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unstarted", pausable.StateUnstarted.String())
	assert.Equal(t, "running", pausable.StateRunning.String())
	assert.Equal(t, "paused", pausable.StatePaused.String())
	assert.Equal(t, "ended", pausable.StateEnded.String())
	assert.Equal(t, "unknown", pausable.State(42).String())
}

func first(r *recorder) []int {
	values, _, _ := r.snapshot()
	return values
}
