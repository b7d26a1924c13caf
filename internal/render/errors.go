package render

import (
	"errors"
	"fmt"
)

var (
	// ErrScope is returned for operations issued in the wrong batch scope.
	ErrScope = errors.New("batch scope violation")
	// ErrStackEmpty is returned when popping with only the base frame left.
	ErrStackEmpty = errors.New("render target stack holds only the base frame")

	// ErrCapacityExceeded is reported by the accumulator when a reservation
	// does not fit the open batch. The renderer handles it by flushing.
	ErrCapacityExceeded = errors.New("batch capacity exceeded")
	// ErrBatchTooLarge is returned for a single draw that can never fit.
	ErrBatchTooLarge = errors.New("draw larger than batch capacity")

	ErrUnknownResource  = errors.New("unknown resource")
	ErrUnknownParameter = errors.New("unknown effect parameter")

	ErrInvalidArgument = errors.New("invalid argument")
	// ErrTargetInUse is returned when a texture is used while it is an
	// output on the render target stack.
	ErrTargetInUse = fmt.Errorf("%w: texture is bound as a render target", ErrInvalidArgument)
)

// DeviceError wraps a failure reported by the graphics device.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string { return "device " + e.Op + ": " + e.Err.Error() }
func (e *DeviceError) Unwrap() error { return e.Err }

func deviceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DeviceError{Op: op, Err: err}
}

// Kind classifies the errors returned by the renderer.
type Kind int

const (
	KindNone Kind = iota
	KindScope
	KindCapacity
	KindUnknownResource
	KindInvalidArgument
	KindDevice
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindScope:
		return "scope"
	case KindCapacity:
		return "capacity"
	case KindUnknownResource:
		return "unknown-resource"
	case KindInvalidArgument:
		return "invalid-argument"
	case KindDevice:
		return "device"
	}
	return "other"
}

// Classify reports which kind of failure err is.
func Classify(err error) Kind {
	var devErr *DeviceError
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &devErr):
		return KindDevice
	case errors.Is(err, ErrScope), errors.Is(err, ErrStackEmpty):
		return KindScope
	case errors.Is(err, ErrCapacityExceeded), errors.Is(err, ErrBatchTooLarge):
		return KindCapacity
	case errors.Is(err, ErrUnknownResource), errors.Is(err, ErrUnknownParameter):
		return KindUnknownResource
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	}
	return KindOther
}

func scopeError(op string, open bool) error {
	if open {
		return fmt.Errorf("%w: %s inside an open batch", ErrScope, op)
	}
	return fmt.Errorf("%w: %s outside Begin/End", ErrScope, op)
}
