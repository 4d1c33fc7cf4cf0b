package lazyimage

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"

	// Decoders for the formats beets serves as cover art.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ErrInvalidDataURI is returned when a string is not a base64 data URI.
var ErrInvalidDataURI = errors.New("lazyimage: invalid data URI")

// DataURI wraps a base64 payload in a data URI. The media type is sniffed
// from the decoded bytes.
func DataURI(b64 string) string {
	b64 = strings.TrimSpace(b64)
	mime := "application/octet-stream"
	if raw, err := decodeBase64(b64); err == nil {
		mime = http.DetectContentType(raw)
	}
	return "data:" + mime + ";base64," + b64
}

// DecodeDataURI decodes a base64 data URI into an image.
func DecodeDataURI(uri string) (image.Image, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrInvalidDataURI
	}

	raw, err := decodeBase64(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func decodeBase64(s string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return raw, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
