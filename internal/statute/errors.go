package statute

import "errors"

var (
	// ErrNotLoaded indicates a read was attempted before a successful Load
	ErrNotLoaded = errors.New("statute not loaded")

	// ErrNotFound indicates a keyed lookup miss. Callers treat it as an expected outcome.
	ErrNotFound = errors.New("not found")

	// ErrMalformedSource indicates the source text is empty or has no recognizable section boundaries
	ErrMalformedSource = errors.New("malformed statute source")
)
