package selfie

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

// ErrInvalidImage is returned when the upload is not a decodable image.
var ErrInvalidImage = errors.New("selfie: invalid image")

// NormalizeOptions controls preprocessing before detection.
type NormalizeOptions struct {
	Mirror       bool // Flip horizontally (front camera previews are mirrored)
	MaxDimension int  // Longest side after resize, 0 keeps the original size
	Quality      int  // JPEG quality of the output
}

// Normalized is a corrected JPEG ready for the detector.
type Normalized struct {
	JPEG   []byte
	Width  int
	Height int
}

// Normalize applies EXIF orientation, optional mirroring and downscaling,
// then re-encodes as JPEG.
func Normalize(data []byte, opts NormalizeOptions) (*Normalized, error) {
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if opts.Mirror {
		img = imaging.FlipH(img)
	}
	if opts.MaxDimension > 0 {
		img = imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	b := img.Bounds()
	return &Normalized{JPEG: buf.Bytes(), Width: b.Dx(), Height: b.Dy()}, nil
}
