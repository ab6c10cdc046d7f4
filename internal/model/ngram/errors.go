package ngram

import "errors"

// Sentinel errors shared by counting, smoothing, persistence and the service layer
var (
	// ErrInvalidConfiguration is returned when an n-gram order below 2 is requested
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrResourceUnavailable is returned when a corpus or model file cannot be opened
	ErrResourceUnavailable = errors.New("resource unavailable")
	// ErrMalformedRecord marks a persisted record with a bad field count or value
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidState marks a record whose frequency tables are inconsistent
	ErrInvalidState = errors.New("invalid state")
	// ErrModelNotFound is returned when no stored model matches a name
	ErrModelNotFound = errors.New("model not found")
)
