package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAccessDenied  = errors.New("access denied")
	ErrInvalidURL    = errors.New("place id could not be extracted from url")
	ErrProviderFetch = errors.New("provider fetch failed")
)
