package ports

import "errors"

// ErrNotFound indicates a document does not exist or is excluded.
var ErrNotFound = errors.New("document not found")
