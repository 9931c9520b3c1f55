package fqsim

import "errors"

var (
	// ErrInvalidArgument is returned for out-of-range qubit targets,
	// negative sample counts and non-positive register sizes.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrResourceExhausted is returned when a state vector would not fit.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrPoolClosed is returned when work is scheduled on a closed pool.
	ErrPoolClosed = errors.New("pool closed")
)
