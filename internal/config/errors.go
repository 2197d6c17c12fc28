package config

import "errors"

// ErrInvalidConfig is returned by Validate and Load for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")
