// Package herr defines the closed set of sentinel errors shared across the
// engine's host-facing boundary, in the style of lvlath's
// ErrVertexNotFound sentinels: components wrap one of these with
// fmt.Errorf("...: %w", ErrX) so callers can errors.Is against a stable
// identity instead of string-matching.
package herr

import "errors"

var (
	// ErrUnsupported indicates a required GPU capability is absent at init.
	ErrUnsupported = errors.New("heroine: required GPU capability unsupported")

	// ErrInitFailure indicates the device, adapter, or surface could not be acquired.
	ErrInitFailure = errors.New("heroine: GPU init failure")

	// ErrShaderCompile indicates pipeline creation failed.
	ErrShaderCompile = errors.New("heroine: shader compile failure")

	// ErrShapeMismatch indicates a bulk array's length does not match the expected stride.
	ErrShapeMismatch = errors.New("heroine: shape mismatch")

	// ErrCapacityExceeded indicates a request exceeds a buffer's recorded capacity and growth was not legal at this boundary.
	ErrCapacityExceeded = errors.New("heroine: capacity exceeded")

	// ErrSortCapacityExceeded indicates the radix sort's required workgroup count exceeds the scan's supported maximum.
	ErrSortCapacityExceeded = errors.New("heroine: sort capacity exceeded")

	// ErrUnknownKey indicates a lookup by name found nothing (an unknown algorithm id, colour scale or value stream).
	// There is no strict mode: edge insertion never returns it, and edges that reference a missing node key are dropped instead.
	ErrUnknownKey = errors.New("heroine: unknown node key")

	// ErrSimulationDiverged indicates NaN was detected in node positions.
	ErrSimulationDiverged = errors.New("heroine: simulation diverged")

	// ErrNotReady indicates a call was made on an engine whose construction in New did not finish.
	// New marks the engine ready and nothing clears the mark, so calls after Quit do not return it.
	ErrNotReady = errors.New("heroine: engine not ready")

	// ErrNotInitialized indicates tick() was called with no device attached.
	ErrNotInitialized = errors.New("heroine: not initialized")
)
