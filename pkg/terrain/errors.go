package terrain

import (
	"errors"

	"terragen/pkg/assets"
)

var (
	// ErrInvalidParameter reports an out-of-domain generation parameter
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidInput reports a structurally malformed field or mesh
	ErrInvalidInput = errors.New("invalid input")
	// ErrAssetUnavailable reports a template mesh that could not be loaded
	ErrAssetUnavailable = assets.ErrAssetUnavailable
)
