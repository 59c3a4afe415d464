// Package testutil synthesizes fixtures for tests: image files and signed tokens.
package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// ImageSpec describes a synthetic image.
type ImageSpec struct {
	Width  int
	Height int
	// Format is "jpeg" (default) or "png".
	Format string
	// ForceSize pads the encoded file with zero bytes up to this many bytes.
	ForceSize int
	// Orientation, when 1 through 8, is written as an EXIF orientation tag.
	// Only JPEG output carries it.
	Orientation int
}

// MakeImage encodes a solid-color image matching spec.
func MakeImage(spec ImageSpec) ([]byte, error) {
	if spec.Width <= 0 {
		spec.Width = 320
	}
	if spec.Height <= 0 {
		spec.Height = 240
	}
	img := image.NewRGBA(image.Rect(0, 0, spec.Width, spec.Height))
	fill := color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff}
	for y := 0; y < spec.Height; y++ {
		for x := 0; x < spec.Width; x++ {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	switch spec.Format {
	case "", "jpeg", "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 75}); err != nil {
			return nil, err
		}
		if spec.Orientation >= 1 && spec.Orientation <= 8 {
			tagged := withOrientation(buf.Bytes(), spec.Orientation)
			buf.Reset()
			buf.Write(tagged)
		}
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported image format %q", spec.Format)
	}

	if spec.ForceSize > 0 {
		if buf.Len() > spec.ForceSize {
			return nil, fmt.Errorf("encoded image is %d bytes, larger than forced size %d", buf.Len(), spec.ForceSize)
		}
		buf.Write(make([]byte, spec.ForceSize-buf.Len()))
	}
	return buf.Bytes(), nil
}

// withOrientation inserts an APP1 EXIF segment holding a single big-endian
// orientation entry right after the JPEG SOI marker.
func withOrientation(jpg []byte, orientation int) []byte {
	tiff := []byte{
		'M', 'M', 0x00, 0x2a, 0x00, 0x00, 0x00, 0x08, // header, IFD0 at offset 8
		0x00, 0x01, // one entry
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, // Orientation, SHORT, count 1
		0x00, byte(orientation), 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	size := len(payload) + 2

	out := make([]byte, 0, len(jpg)+size+2)
	out = append(out, jpg[:2]...)
	out = append(out, 0xff, 0xe1, byte(size>>8), byte(size))
	out = append(out, payload...)
	return append(out, jpg[2:]...)
}

// ExifOrientation returns the orientation tag written by withOrientation, or 0.
func ExifOrientation(jpg []byte) int {
	marker := []byte("Exif\x00\x00MM")
	i := bytes.Index(jpg, marker)
	if i < 0 || len(jpg) < i+6+22 {
		return 0
	}
	entry := jpg[i+6+10:]
	if entry[0] != 0x01 || entry[1] != 0x12 {
		return 0
	}
	return int(entry[9])
}

// MustMakeImage is MakeImage that fails the test on error.
func MustMakeImage(t testing.TB, spec ImageSpec) []byte {
	t.Helper()
	b, err := MakeImage(spec)
	if err != nil {
		t.Fatalf("make image: %v", err)
	}
	return b
}

// MakeImageFile writes a synthetic image into a temp dir and returns its path.
func MakeImageFile(t testing.TB, spec ImageSpec) string {
	t.Helper()
	ext := spec.Format
	if ext == "" {
		ext = "jpeg"
	}
	p := filepath.Join(t.TempDir(), "image."+ext)
	if err := os.WriteFile(p, MustMakeImage(t, spec), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return p
}

// BannerSpec is a valid banner: a 1440x900 JPEG.
var BannerSpec = ImageSpec{Width: 1440, Height: 900, Format: "jpeg"}

// MakeBannerImage returns a valid banner image.
func MakeBannerImage(t testing.TB) []byte {
	t.Helper()
	return MustMakeImage(t, BannerSpec)
}
