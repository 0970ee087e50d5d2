package config

import "errors"

// Errors for definition loading and building.
var (
	// ErrConfigNotFound indicates the definition file was not found.
	ErrConfigNotFound = errors.New("definition file not found")

	// ErrInvalidFormat indicates the definition format is invalid.
	ErrInvalidFormat = errors.New("invalid definition format")

	// ErrUnsupportedFormat indicates the file format is not supported.
	ErrUnsupportedFormat = errors.New("unsupported definition format")

	// ErrValidationFailed indicates definition validation failed.
	ErrValidationFailed = errors.New("definition validation failed")

	// ErrMissingEnvVar indicates a required environment variable is not set.
	ErrMissingEnvVar = errors.New("required environment variable not set")

	// ErrBuildFailed indicates building a thinker from a definition failed.
	ErrBuildFailed = errors.New("failed to build thinker from definition")

	// ErrUnknownKind indicates a scorer or action kind is not recognized.
	ErrUnknownKind = errors.New("unknown kind")

	// ErrUnregisteredName indicates a leaf name has no registry entry.
	ErrUnregisteredName = errors.New("name not registered")
)
