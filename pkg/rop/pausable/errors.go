package pausable

import (
	"errors"
	"fmt"
)

// Sentinel errors for stream construction and production failures.
var (
	// ErrInvalidProducerKind indicates the value passed as a producer is
	// neither a supported callback nor an Iterator. No stream is created.
	ErrInvalidProducerKind = errors.New("invalid producer kind")

	// ErrProducerThrew indicates a pull failed. The stream ends and reports
	// a *ProducerError on its error channel.
	ErrProducerThrew = errors.New("producer threw")
)

// ProducerError carries the cause of a failed pull: the error the producer
// reported, or the value it panicked with.
type ProducerError struct {
	Err   error
	Panic any
}

func (e *ProducerError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("%s: panic: %v", ErrProducerThrew, e.Panic)
	}
	return fmt.Sprintf("%s: %v", ErrProducerThrew, e.Err)
}

func (e *ProducerError) Unwrap() error {
	return e.Err
}

func (e *ProducerError) Is(target error) bool {
	return target == ErrProducerThrew
}

func invalidKind(want string, producer any) error {
	return fmt.Errorf("%w: want %s, got %T", ErrInvalidProducerKind, want, producer)
}
