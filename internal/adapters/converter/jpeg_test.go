package converter

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 0xff})
		}
	}
	return img
}

func TestNewJPEGConverter(t *testing.T) {
	tests := []struct {
		name         string
		maxDimension int
		quality      int
		wantQuality  int
		wantErr      bool
	}{
		{name: "defaults quality", maxDimension: 0, quality: 0, wantQuality: DefaultQuality},
		{name: "custom", maxDimension: 1024, quality: 75, wantQuality: 75},
		{name: "negative dimension", maxDimension: -1, quality: 75, wantErr: true},
		{name: "quality too high", maxDimension: 0, quality: 101, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewJPEGConverter(tt.maxDimension, tt.quality)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuality, c.quality)
		})
	}
}

func TestJPEGConverter_Encode(t *testing.T) {
	tests := []struct {
		name         string
		maxDimension int
		width        int
		height       int
		wantWidth    int
		wantHeight   int
	}{
		{name: "small image untouched", maxDimension: 64, width: 32, height: 16, wantWidth: 32, wantHeight: 16},
		{name: "scaling disabled", maxDimension: 0, width: 200, height: 100, wantWidth: 200, wantHeight: 100},
		{name: "landscape scaled", maxDimension: 50, width: 200, height: 100, wantWidth: 50, wantHeight: 25},
		{name: "portrait scaled", maxDimension: 50, width: 100, height: 200, wantWidth: 25, wantHeight: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewJPEGConverter(tt.maxDimension, 80)
			require.NoError(t, err)

			out, err := c.Encode(solid(tt.width, tt.height))
			require.NoError(t, err)

			decoded, err := jpeg.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, tt.wantWidth, decoded.Bounds().Dx())
			assert.Equal(t, tt.wantHeight, decoded.Bounds().Dy())
		})
	}
}

func TestJPEGConverter_EncodeNil(t *testing.T) {
	c, err := NewJPEGConverter(0, 0)
	require.NoError(t, err)

	_, err = c.Encode(nil)
	assert.Error(t, err)
}
