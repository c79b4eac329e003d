package traj

import "errors"

// Domain errors for trajectory construction and consumption.
var (
	// ErrShapeMismatch indicates per-step channels that disagree on (n, k).
	ErrShapeMismatch = errors.New("traj: channel shape mismatch")

	// ErrBadTimestep indicates a non-positive dt.
	ErrBadTimestep = errors.New("traj: dt must be positive")

	// ErrEmptyBatch indicates a batch or step count of zero.
	ErrEmptyBatch = errors.New("traj: batch and step counts must be positive")

	// ErrInvalidValue indicates a NaN or Inf sample where finite values are required.
	ErrInvalidValue = errors.New("traj: invalid value (NaN or Inf detected)")
)
