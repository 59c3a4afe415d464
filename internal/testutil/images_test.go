package testutil

import (
	"bytes"
	"image"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeImage(t *testing.T) {
	cases := []struct {
		spec        ImageSpec
		contentType string
		w, h        int
	}{
		{ImageSpec{}, "image/jpeg", 320, 240},
		{ImageSpec{Width: 10, Height: 20, Format: "png"}, "image/png", 10, 20},
		{BannerSpec, "image/jpeg", 1440, 900},
	}
	for _, tc := range cases {
		b, err := MakeImage(tc.spec)
		require.NoError(t, err)
		assert.Equal(t, tc.contentType, http.DetectContentType(b))
		cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
		require.NoError(t, err)
		assert.Equal(t, tc.w, cfg.Width)
		assert.Equal(t, tc.h, cfg.Height)
	}
}

func TestMakeImageForceSize(t *testing.T) {
	b, err := MakeImage(ImageSpec{Width: 8, Height: 8, ForceSize: 4096})
	require.NoError(t, err)
	assert.Len(t, b, 4096)
	_, _, err = image.DecodeConfig(bytes.NewReader(b))
	assert.NoError(t, err, "padding must not break decoding")

	_, err = MakeImage(ImageSpec{Width: 64, Height: 64, ForceSize: 10})
	assert.Error(t, err)

	_, err = MakeImage(ImageSpec{Format: "gif"})
	assert.Error(t, err)
}

func TestMakeImageFile(t *testing.T) {
	p := MakeImageFile(t, ImageSpec{Width: 4, Height: 4, Format: "png"})
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "image/png", http.DetectContentType(b))
}

func TestMakeImageOrientation(t *testing.T) {
	b, err := MakeImage(ImageSpec{Width: 40, Height: 20, Orientation: 6})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", http.DetectContentType(b))
	assert.Equal(t, 6, ExifOrientation(b))

	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width, "dimensions are stored unrotated")
	assert.Equal(t, 20, cfg.Height)

	for _, o := range []int{0, 9} {
		b, err := MakeImage(ImageSpec{Orientation: o})
		require.NoError(t, err)
		assert.Zero(t, ExifOrientation(b), o)
	}

	b, err = MakeImage(ImageSpec{Format: "png", Orientation: 3})
	require.NoError(t, err)
	assert.Zero(t, ExifOrientation(b))
}
