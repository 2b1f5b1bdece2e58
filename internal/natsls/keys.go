package natsls

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/lswatch/pkg/listing"
)

// DefaultPrefix is the KV key prefix for directory listings.
const DefaultPrefix = "meta/ls/"

// kvKeyRe matches the characters NATS KV accepts in a literal key.
var kvKeyRe = regexp.MustCompile(`\A[-/_=.a-zA-Z0-9]+\z`)

// kvKey maps a directory key to its KV key under prefix.
func kvKey(prefix, key string) (string, error) {
	if key != listing.RootKey {
		if !strings.HasSuffix(key, listing.Separator) {
			return "", fmt.Errorf("%w: %q does not end with %q", ErrInvalidKey, key, listing.Separator)
		}
		if err := listing.ValidatePath(strings.TrimSuffix(key, listing.Separator)); err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrInvalidKey, key, err)
		}
	}

	full := prefix + key
	if !kvKeyRe.MatchString(full) || strings.HasPrefix(full, ".") || strings.HasSuffix(full, ".") {
		return "", fmt.Errorf("%w: %q is not a valid NATS KV key", ErrInvalidKey, full)
	}
	return full, nil
}

// directoryKey is the inverse of kvKey. It reports false for KV keys
// outside prefix.
func directoryKey(prefix, full string) (string, bool) {
	if !strings.HasPrefix(full, prefix) {
		return "", false
	}
	return strings.TrimPrefix(full, prefix), true
}
