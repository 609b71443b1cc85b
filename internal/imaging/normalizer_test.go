package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matreshka-feed/internal/domain"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// transparentPNG builds a fully transparent red image so a white
// flatten is easy to detect.
func transparentPNG(t *testing.T, w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 0})
		}
	}
	return encodePNG(t, img)
}

func opaquePNG(t *testing.T, w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 30, G: 60, B: 90, A: 255})
		}
	}
	return encodePNG(t, img)
}

func newTestNormalizer() *Normalizer {
	return New(1920, 1080, 400, 85, 16*1024*1024)
}

func TestNormalizer_BoundsAndAspect(t *testing.T) {
	n := newTestNormalizer()

	result, err := n.Normalize(opaquePNG(t, 3000, 2000))
	require.NoError(t, err)

	assert.LessOrEqual(t, result.Width, 1920)
	assert.LessOrEqual(t, result.Height, 1080)
	assert.Equal(t, 3000, result.OriginalWidth)
	assert.Equal(t, 2000, result.OriginalHeight)

	// Aspect ratio preserved within rounding.
	srcRatio := 3000.0 / 2000.0
	dstRatio := float64(result.Width) / float64(result.Height)
	assert.InDelta(t, srcRatio, dstRatio, 0.01)

	decoded, err := jpeg.Decode(bytes.NewReader(result.Primary))
	require.NoError(t, err)
	assert.Equal(t, result.Width, decoded.Bounds().Dx())
	assert.Equal(t, result.Height, decoded.Bounds().Dy())
}

func TestNormalizer_NoUpscale(t *testing.T) {
	n := newTestNormalizer()

	result, err := n.Normalize(opaquePNG(t, 640, 480))
	require.NoError(t, err)

	assert.Equal(t, 640, result.Width)
	assert.Equal(t, 480, result.Height)
}

func TestNormalizer_AlphaFlattenedToWhite(t *testing.T) {
	n := newTestNormalizer()

	result, err := n.Normalize(transparentPNG(t, 100, 100))
	require.NoError(t, err)

	decoded, err := jpeg.Decode(bytes.NewReader(result.Primary))
	require.NoError(t, err)

	r, g, b, _ := decoded.At(50, 50).RGBA()
	// JPEG is lossy; near-white is the point.
	assert.Greater(t, r>>8, uint32(245))
	assert.Greater(t, g>>8, uint32(245))
	assert.Greater(t, b>>8, uint32(245))
}

func TestNormalizer_ThumbnailBounds(t *testing.T) {
	n := newTestNormalizer()

	result, err := n.Normalize(opaquePNG(t, 3000, 2000))
	require.NoError(t, err)

	thumb, err := jpeg.Decode(bytes.NewReader(result.Thumbnail))
	require.NoError(t, err)
	assert.LessOrEqual(t, thumb.Bounds().Dx(), 400)
	assert.LessOrEqual(t, thumb.Bounds().Dy(), 400)
}

func TestNormalizer_CorruptData(t *testing.T) {
	n := newTestNormalizer()

	_, err := n.Normalize([]byte("definitely not an image"))
	assert.True(t, domain.IsValidation(err))
}

func TestNormalizer_OversizedRejectedBeforeDecode(t *testing.T) {
	n := New(1920, 1080, 400, 85, 10)

	// Payload over the ceiling is rejected on length alone; the bytes
	// are not even valid image data.
	_, err := n.Normalize(bytes.Repeat([]byte{0xff}, 11))
	assert.True(t, domain.IsValidation(err))
}

func TestNormalizer_EmptyInput(t *testing.T) {
	n := newTestNormalizer()

	_, err := n.Normalize(nil)
	assert.True(t, domain.IsValidation(err))
}

func TestAllowedFile(t *testing.T) {
	assert.True(t, AllowedFile("photo.jpg"))
	assert.True(t, AllowedFile("photo.JPEG"))
	assert.True(t, AllowedFile("photo.png"))
	assert.True(t, AllowedFile("photo.webp"))
	assert.True(t, AllowedFile("photo.gif"))

	assert.False(t, AllowedFile("photo.bmp"))
	assert.False(t, AllowedFile("photo.tiff"))
	assert.False(t, AllowedFile("photo"))
	assert.False(t, AllowedFile("script.sh"))
}
