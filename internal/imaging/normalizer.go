// Package imaging normalizes uploaded photos: bounded downscale,
// white-flatten of transparency, JPEG re-encode, plus a square-bounded
// thumbnail. The transform is pure; callers decide where the bytes go.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"matreshka-feed/internal/domain"
)

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
}

// AllowedFile reports whether the file name carries an accepted image
// extension. Checked before any decode work.
func AllowedFile(name string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Normalizer holds the fixed transform policy. Zero values are not
// usable; construct with New.
type Normalizer struct {
	maxWidth  int
	maxHeight int
	thumbSize int
	quality   int
	maxBytes  int64
}

// Result is the pair of encoded JPEGs plus the dimensions reported to
// the caller.
type Result struct {
	Primary        []byte
	Thumbnail      []byte
	Width          int
	Height         int
	OriginalWidth  int
	OriginalHeight int
}

func New(maxWidth, maxHeight, thumbSize, quality int, maxBytes int64) *Normalizer {
	return &Normalizer{
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
		thumbSize: thumbSize,
		quality:   quality,
		maxBytes:  maxBytes,
	}
}

// Normalize decodes raw image bytes and produces the primary image and
// thumbnail. The byte ceiling is enforced before decoding; decode
// failures surface as validation errors because they mean the client
// sent corrupt data, not that the server broke.
func (n *Normalizer) Normalize(data []byte) (*Result, error) {
	if int64(len(data)) > n.maxBytes {
		return nil, domain.Validationf("file too large: %d bytes (max %d)", len(data), n.maxBytes)
	}
	if len(data) == 0 {
		return nil, domain.Validationf("empty file")
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.Validationf("cannot decode image: %v", err)
	}

	bounds := src.Bounds()
	origW, origH := bounds.Dx(), bounds.Dy()

	flat := flatten(src)

	primary := flat
	if origW > n.maxWidth || origH > n.maxHeight {
		primary = imaging.Fit(flat, n.maxWidth, n.maxHeight, imaging.Lanczos)
	}

	thumb := flat
	if origW > n.thumbSize || origH > n.thumbSize {
		thumb = imaging.Fit(flat, n.thumbSize, n.thumbSize, imaging.Lanczos)
	}

	primaryBytes, err := n.encodeJPEG(primary)
	if err != nil {
		return nil, fmt.Errorf("encode primary: %w", err)
	}
	thumbBytes, err := n.encodeJPEG(thumb)
	if err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	pb := primary.Bounds()
	return &Result{
		Primary:        primaryBytes,
		Thumbnail:      thumbBytes,
		Width:          pb.Dx(),
		Height:         pb.Dy(),
		OriginalWidth:  origW,
		OriginalHeight: origH,
	}, nil
}

func (n *Normalizer) encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(n.quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// flatten composites images that may carry transparency onto an opaque
// white background. Sources that cannot have alpha (JPEG's YCbCr,
// grayscale, CMYK) pass through untouched.
func flatten(src image.Image) image.Image {
	switch src.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return src
	}

	b := src.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.Overlay(bg, src, image.Pt(0, 0), 1.0)
}
