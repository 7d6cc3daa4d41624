// Package rop defines Result[T], the envelope every stream in this module
// carries. A Result is a success value, a failure, a cancellation, the empty
// (absent) value, or the End sentinel that terminates a stream.
package rop
