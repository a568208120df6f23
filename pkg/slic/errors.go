package slic

import "errors"

// Sentinel errors for the taxonomy of §7. Use errors.Is to test for these;
// every returned error wraps one of them with context via fmt.Errorf's %w.
var (
	// ErrConfiguration covers invalid configuration such as a zero
	// super-grid size along some axis.
	ErrConfiguration = errors.New("slic: configuration error")

	// ErrCapacity is returned when the number of clusters exceeds the
	// representable range of the configured label width.
	ErrCapacity = errors.New("slic: capacity error")

	// ErrDimension is returned when the input has zero pixels or an axis
	// smaller than the corresponding super-grid size.
	ErrDimension = errors.New("slic: dimension error")

	// ErrCancelled is returned when a caller-provided abort signal trips
	// between iterations.
	ErrCancelled = errors.New("slic: run canceled")

	// ErrInvariant is returned when an internal invariant is violated,
	// such as the connectivity enforcer failing to relabel a small
	// component after two passes. No partial output is returned.
	ErrInvariant = errors.New("slic: internal invariant violation")
)
