package opm

import "errors"

var (
	// ErrInvalidDescriptor is returned when a metadata file lacks a package name or version.
	ErrInvalidDescriptor = errors.New("invalid package descriptor")

	// ErrNotFound is returned when no artifact exists for a package identifier.
	ErrNotFound = errors.New("not found")
)
