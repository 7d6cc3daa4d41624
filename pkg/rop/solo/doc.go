// Package solo contains single-value, synchronous ROP primitives that operate
// on Result[T]. These functions form the core building blocks for the
// channel stages in lite and never touch channels themselves.
//
// Highlights:
// - Succeed/Fail/Cancel/End: construct Result[T]
// - Validate/AndValidate: apply validation producing failure on invalid input
// - Switch/Map/Try: move from Result[In] to Result[Out]
// - Tee: side-effect on success
// - Finally: reduce to a concrete value via success/error/cancel handlers
//
// Non-success Results pass through every combinator untouched, so the End
// sentinel keeps its identity across element types.
package solo
