package natsls

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fyrsmithlabs/lswatch/pkg/listing"
)

var jsonNull = []byte("null")

// EncodeDirectory returns the wire form of dir.
func EncodeDirectory(dir listing.Directory) ([]byte, error) {
	if dir == nil {
		return nil, ErrNilListing
	}
	data, err := json.Marshal(dir)
	if err != nil {
		return nil, fmt.Errorf("encode listing: %w", err)
	}
	return data, nil
}

// DecodeDirectory parses a stored listing. JSON null decodes to a nil
// Directory; an empty object decodes to an empty, non-nil one.
func DecodeDirectory(data []byte) (listing.Directory, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, jsonNull) {
		return nil, nil
	}

	var dir listing.Directory
	if err := json.Unmarshal(trimmed, &dir); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	if dir == nil {
		dir = listing.Directory{}
	}
	return dir, nil
}
