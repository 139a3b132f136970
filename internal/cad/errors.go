package cad

import "errors"

var (
	// ErrNoReference is returned when no usable entity sits on the reference layer.
	ErrNoReference = errors.New("no reference entity on layer")

	// ErrDegenerateReference is returned when the reference entity's first
	// two points coincide.
	ErrDegenerateReference = errors.New("reference axis has zero length")
)
