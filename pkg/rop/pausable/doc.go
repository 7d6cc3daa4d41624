// Package pausable turns a pull-style producer into a push stream whose
// production can be paused and resumed from outside.
//
// A paused stream does not buffer: the producer is simply not called. The
// pump pulls one event per task on a loop.Loop and re-posts itself after
// every event, so a Pause issued while an event is being delivered stops the
// very next pull and nothing already delivered is affected.
//
// Producers come in two kinds:
//
//   - callbacks: Callback[T], func() rop.Result[T], func() (T, error),
//     func() T, plus iter.Seq[T] pulled through iter.Pull;
//   - iterators: any Iterator[T].
//
// The End sentinel (rop.End, or rop.ErrEnd from func() (T, error)) ends the
// stream. An Iterator that reports done ends it after delivering its final
// event. Each subscriber sees exactly one terminal event.
//
//	s, err := pausable.New[int](ctx, func() (int, error) { ... })
//	if err != nil {
//		return err
//	}
//	s.Subscribe(pausable.Observer[int]{
//		OnNext: func(v int) {
//			if v == 7 {
//				s.Pause()
//			}
//		},
//	})
//
// Streams derived from Results with the lite stages carry no Pause or
// Resume; keep the *Stream to control production.
package pausable
