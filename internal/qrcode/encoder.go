// internal/qrcode/encoder.go
package qrcode

import (
	"errors"
	"fmt"

	qr "github.com/skip2/go-qrcode"
)

// ErrEncodingFailed is returned when a payload cannot be rendered at
// the configured error-correction level.
var ErrEncodingFailed = errors.New("qr encoding failed")

// ImageSize is the rendered width/height in pixels.
const ImageSize = 500

// Encode renders url into a PNG byte stream at the Highest
// error-correction level (~30% damage tolerance). Same input always
// yields the same bytes; the standard quiet-zone border is included.
func Encode(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrEncodingFailed)
	}

	png, err := qr.Encode(url, qr.Highest, ImageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodingFailed, err)
	}

	return png, nil
}
