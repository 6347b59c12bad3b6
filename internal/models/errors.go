package models

import "errors"

// ErrMalformedOffer marks a raw offer that cannot be normalized. Batch callers
// skip such offers instead of failing the search.
var ErrMalformedOffer = errors.New("malformed offer")
