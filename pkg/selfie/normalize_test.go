package selfie

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// splitJPEG returns a w x h JPEG with a red left half and a blue right half.
func splitJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.Set(x, y, color.RGBA{255, 0, 0, 255})
			} else {
				img.Set(x, y, color.RGBA{0, 0, 255, 255})
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func isRed(c color.Color) bool {
	r, _, b, _ := c.RGBA()
	return r > b
}

func TestNormalizeResizes(t *testing.T) {
	out, err := Normalize(splitJPEG(t, 400, 200), NormalizeOptions{MaxDimension: 100, Quality: 80})
	require.NoError(t, err)

	assert.Equal(t, 100, out.Width)
	assert.Equal(t, 50, out.Height)
	b := decode(t, out.JPEG).Bounds()
	assert.Equal(t, 100, b.Dx())
	assert.Equal(t, 50, b.Dy())
}

func TestNormalizeDoesNotUpscale(t *testing.T) {
	out, err := Normalize(splitJPEG(t, 64, 48), NormalizeOptions{MaxDimension: 1024})
	require.NoError(t, err)
	assert.Equal(t, 64, out.Width)
	assert.Equal(t, 48, out.Height)
}

func TestNormalizeMirror(t *testing.T) {
	src := splitJPEG(t, 80, 40)

	plain, err := Normalize(src, NormalizeOptions{})
	require.NoError(t, err)
	assert.True(t, isRed(decode(t, plain.JPEG).At(5, 20)), "left side should stay red")

	mirrored, err := Normalize(src, NormalizeOptions{Mirror: true})
	require.NoError(t, err)
	assert.False(t, isRed(decode(t, mirrored.JPEG).At(5, 20)), "left side should be blue after mirroring")
}

func TestNormalizeInvalid(t *testing.T) {
	_, err := Normalize(nil, NormalizeOptions{})
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = Normalize([]byte("not a jpeg"), NormalizeOptions{})
	assert.ErrorIs(t, err, ErrInvalidImage)
}
