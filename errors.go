package marc

import "errors"

// Error kinds reported by the pipeline. All are fatal: the pipeline never
// continues in a degraded mode past the point of detection. Use errors.Is to
// classify wrapped errors.
var (
	// ErrInputMismatch indicates ensemble members with differing atom counts
	// or atom identities, or an unparseable ensemble file.
	ErrInputMismatch = errors.New("input mismatch")

	// ErrMissingEnergy indicates an energy-dependent operation was requested
	// but one or more conformers carry no energy.
	ErrMissingEnergy = errors.New("missing energy")

	// ErrDegenerateMetric indicates a dissimilarity matrix whose maximum is
	// zero: every conformer is identical under that metric.
	ErrDegenerateMetric = errors.New("degenerate metric")

	// ErrMalformedMatrix indicates a dissimilarity matrix that is not square,
	// not symmetric within tolerance, or has a nonzero diagonal.
	ErrMalformedMatrix = errors.New("malformed matrix")

	// ErrInsufficientData indicates an ensemble too small to cluster, or a
	// resolved cluster count that is not below the ensemble size.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidSelection indicates an unknown clustering algorithm or metric
	// key. Detected at configuration time, never mid-pipeline.
	ErrInvalidSelection = errors.New("invalid selection")
)
