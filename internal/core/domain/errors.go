package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrResourceDoesNotExist indicates no cache entry exists for a resource hash.
	ErrResourceDoesNotExist = errors.New("resource does not exist")

	// ErrResourceCreationInProgress indicates the resource is reserved by a
	// creator that has not yet stored a result.
	ErrResourceCreationInProgress = errors.New("resource creation in progress")

	// ErrResourceExists indicates a completed result is already stored.
	ErrResourceExists = errors.New("resource already exists")

	// ErrUnsupportedResource indicates a parameter type with no registry entry.
	ErrUnsupportedResource = errors.New("unsupported resource type")

	// ErrClusteringFailed indicates the density clustering could not run,
	// almost always because too few articles were supplied.
	ErrClusteringFailed = errors.New("clustering failed, likely due to too few articles; try again with additional articles")

	// ErrDependencyTimeout indicates a dependency stayed in progress for
	// longer than the configured number of polling attempts.
	ErrDependencyTimeout = errors.New("timed out waiting for dependency")

	// ErrJobNotFound indicates a job id has no stored record.
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
