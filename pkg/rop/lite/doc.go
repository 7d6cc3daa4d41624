// Package lite provides lightweight channel-lifted helpers that wrap solo
// primitives for concurrent pipelines. Stages consume any
// <-chan rop.Result[T], including pausable.Stream.Results.
//
// Common usage:
// - Run: execute an engine over an input channel with a fixed number of lines
// - Validate/Try/Switch/Map/Tee: lift solo operations over channels
// - Turnout: compose stages with configurable parallelism
// - Finally: map Result[In] to Out until the End sentinel
//
// A derived channel carries values only. Pausing production stays with the
// stream handle that feeds the first stage.
package lite
