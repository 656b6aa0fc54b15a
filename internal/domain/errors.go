package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUploadNotFound is returned when a referenced upload does not exist
	ErrUploadNotFound = errors.New("uploaded image not found")

	// ErrFileTooLarge is returned when an uploaded payload exceeds the size ceiling
	ErrFileTooLarge = errors.New("uploaded file exceeds size limit")

	// ErrUnsupportedImageType is returned when an upload is not an image content type
	ErrUnsupportedImageType = errors.New("unsupported image content type")

	// ErrProviderUnavailable is returned when a vision provider is unreachable or
	// not configured (missing credentials, connection error, timeout)
	ErrProviderUnavailable = errors.New("vision provider unavailable")

	// ErrProviderFailure is returned when a vision provider call fails mid-flight
	// (non-2xx response, malformed body)
	ErrProviderFailure = errors.New("vision provider request failed")

	// ErrProductAPIFailure is returned when an Open Food Facts request fails
	ErrProductAPIFailure = errors.New("Open Food Facts request failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
