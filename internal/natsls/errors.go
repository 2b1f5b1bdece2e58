package natsls

import "errors"

var (
	// ErrInvalidKey is returned for directory keys that cannot be mapped to
	// a NATS KV key.
	ErrInvalidKey = errors.New("invalid directory key")

	// ErrListingNotFound is returned by Store.GetListing when no listing is
	// stored for the key.
	ErrListingNotFound = errors.New("listing not found")

	// ErrNilListing is returned by Store.PutListing for a nil directory.
	// Use DeleteListing to remove a listing.
	ErrNilListing = errors.New("nil listing")
)
