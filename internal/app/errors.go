package app

import "errors"

var (
	// ErrProviderRequired is returned when a document provider is not provided.
	ErrProviderRequired = errors.New("document provider required")

	// ErrNotBuilt is returned by operations that need an index before BuildIndex ran.
	ErrNotBuilt = errors.New("index not built")
)
