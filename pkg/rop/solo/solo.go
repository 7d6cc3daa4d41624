package solo

import (
	"context"
	"errors"

	"github.com/ib-77/ropause/pkg/rop"
)

func Succeed[T any](input T) rop.Result[T] {
	return rop.Success(input)
}

func Fail[T any](err error) rop.Result[T] {
	return rop.Fail[T](err)
}

func Cancel[T any](err error) rop.Result[T] {
	return rop.Cancel[T](err)
}

func End[T any]() rop.Result[T] {
	return rop.End[T]()
}

// pass carries a non-success Result over to another element type.
func pass[In, Out any](input rop.Result[In]) rop.Result[Out] {
	switch {
	case input.IsEnd():
		return rop.EndFrom[In, Out](input)
	case input.IsCancel():
		return rop.Cancel[Out](input.Err())
	case input.IsFailure():
		return rop.Fail[Out](input.Err())
	default:
		return rop.Result[Out]{}
	}
}

func Validate[T any](ctx context.Context, input T,
	validate func(ctx context.Context, in T) (isValid bool, errMsg string)) rop.Result[T] {
	return AndValidate(ctx, Succeed(input), validate)
}

func AndValidate[T any](ctx context.Context, input rop.Result[T],
	validate func(ctx context.Context, in T) (valid bool, errMsg string)) rop.Result[T] {

	if input.IsSuccess() {
		if isValid, errMsg := validate(ctx, input.Result()); !isValid {
			return rop.Fail[T](errors.New(errMsg))
		}
	}
	return input
}

func Switch[In any, Out any](ctx context.Context,
	input rop.Result[In],
	onSuccess func(ctx context.Context, r In) rop.Result[Out]) rop.Result[Out] {

	if input.IsSuccess() {
		return onSuccess(ctx, input.Result())
	}
	return pass[In, Out](input)
}

func Map[In any, Out any](ctx context.Context,
	input rop.Result[In],
	onSuccess func(ctx context.Context, r In) Out) rop.Result[Out] {

	if input.IsSuccess() {
		return rop.Success(onSuccess(ctx, input.Result()))
	}
	return pass[In, Out](input)
}

func Tee[T any](ctx context.Context,
	input rop.Result[T],
	onSuccess func(ctx context.Context, r rop.Result[T])) rop.Result[T] {

	if input.IsSuccess() {
		onSuccess(ctx, input)
	}

	return input
}

func Try[In any, Out any](ctx context.Context, input rop.Result[In],
	onTryExecute func(ctx context.Context, r In) (Out, error)) rop.Result[Out] {

	if input.IsSuccess() {
		out, err := onTryExecute(ctx, input.Result())
		if err != nil {
			return rop.Fail[Out](err)
		}
		return rop.Success(out)
	}
	return pass[In, Out](input)
}

// Finally reduces input to Out. The End sentinel and the empty value carry no
// data, so they are reported through ok=false instead of a handler.
func Finally[In, Out any](ctx context.Context, input rop.Result[In],
	onSuccess func(ctx context.Context, r In) Out,
	onError func(ctx context.Context, err error) Out,
	onCancel func(ctx context.Context, err error) Out) (out Out, ok bool) {

	switch {
	case input.IsSuccess():
		return onSuccess(ctx, input.Result()), true
	case input.IsCancel():
		return onCancel(ctx, input.Err()), true
	case input.IsFailure():
		return onError(ctx, input.Err()), true
	default:
		return out, false
	}
}
