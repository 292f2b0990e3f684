// Package encoding converts editor text to and from the data URL form kept in the store.
//
// A blob looks like "data:text/javascript;base64,Y29uc29sZS5sb2coMSk=". Only the
// payload after the first comma carries content, so commas, semicolons and even
// nested "data:" prefixes inside the text survive the round trip.
package encoding

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// DefaultMediaType is used when no media type is given
const DefaultMediaType = "text/plain;charset=utf-8"

// ErrMalformedBlob is returned when a non-empty blob is not a base64 data URL
var ErrMalformedBlob = errors.New("malformed data url")

// EncodedBlob is the storage-safe representation of a file's content
type EncodedBlob string

// Encode produces a data URL using the default media type
func Encode(content string) EncodedBlob {
	return EncodeAs(content, DefaultMediaType)
}

// EncodeAs produces a data URL with the given media type
func EncodeAs(content, mediaType string) EncodedBlob {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		mediaType = DefaultMediaType
	}
	payload := base64.StdEncoding.EncodeToString([]byte(content))
	return EncodedBlob("data:" + mediaType + ";base64," + payload)
}

// Decode is the inverse of Encode. An empty blob decodes to "".
func Decode(blob EncodedBlob) (string, error) {
	if blob == "" {
		return "", nil
	}

	header, payload, found := strings.Cut(string(blob), ",")
	if !found || !strings.HasPrefix(header, "data:") {
		return "", ErrMalformedBlob
	}

	if !strings.HasSuffix(header, ";base64") {
		return "", fmt.Errorf("%w: missing base64 marker", ErrMalformedBlob)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedBlob, err)
	}

	return string(raw), nil
}

// MediaType returns the media type recorded in the blob header
func (b EncodedBlob) MediaType() string {
	header, _, found := strings.Cut(string(b), ",")
	if !found {
		return ""
	}
	header = strings.TrimPrefix(header, "data:")
	return strings.TrimSuffix(header, ";base64")
}
