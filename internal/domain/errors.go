package domain

import "errors"

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrCatalogUnavailable  = errors.New("catalog unavailable")
	ErrMissingSelection    = errors.New("missing selection")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrMockupFailed        = errors.New("mockup generation failed")
	ErrPaymentResolution   = errors.New("payment resolution failed")
	ErrTimedOut            = errors.New("timed out")
)
