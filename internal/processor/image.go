package processor

import (
	"bytes"
	"errors"
	"image"
	"image/png"

	ocrerrors "github.com/adverant/nexus/ocr-engine/internal/errors"
)

var errNilImage = errors.New("image is nil")

// encodePNG serializes img losslessly so both backends receive exactly the
// caller's pixels.
func encodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, ocrerrors.NewImageEncodeError(errNilImage)
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, ocrerrors.NewImageEncodeError(err)
	}
	return buf.Bytes(), nil
}
