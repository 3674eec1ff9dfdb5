package providers

import "errors"

// Static error variables for configuration and lookup failures. All of
// these surface at registry-build time or on lookup, never mid-stage.
var (
	ErrUnknownCategory         = errors.New("unknown provider category")
	ErrUnsupportedProviderType = errors.New("unsupported provider type")
	ErrMissingAuthorization    = errors.New("provider has no pipelines authorization list")
	ErrDuplicateProvider       = errors.New("provider name already registered in category")
	ErrScopeOverlap            = errors.New("overlapping managed files between data providers")
	ErrProviderNotFound        = errors.New("provider not found")
)
