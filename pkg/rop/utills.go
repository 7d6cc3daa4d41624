package rop

import (
	"context"
	"errors"
	"reflect"
)

func IsNil(i interface{}) bool {
	if i == nil {
		return true
	}
	v := reflect.ValueOf(i)
	switch v.Kind() {
	case reflect.Ptr, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func GetErrors(err error) []error {
	if IsNil(err) {
		return []error{}
	}

	e, ok := err.(interface{ Unwrap() []error })
	if ok {
		return e.Unwrap()
	}

	return []error{err}
}

func IsCancellationError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func IsEndError(err error) bool {
	return errors.Is(err, ErrEnd)
}

// FromError turns a producer-style error into an envelope: nil is a success
// of value, ErrEnd is the sentinel, context errors are cancellations and
// anything else is a failure.
func FromError[T any](value T, err error) Result[T] {
	switch {
	case err == nil:
		return Success(value)
	case IsEndError(err):
		return End[T]()
	case IsCancellationError(err):
		return Cancel[T](err)
	default:
		return Fail[T](err)
	}
}
