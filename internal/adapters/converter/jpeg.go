package converter

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

const DefaultQuality = 90

// JPEGConverter re-encodes annotated images for upload, scaling them down when they are larger than the configured
// maximum dimension.
type JPEGConverter struct {
	maxDimension int
	quality      int
}

func NewJPEGConverter(maxDimension, quality int) (*JPEGConverter, error) {
	if maxDimension < 0 {
		return nil, errors.New("max dimension must not be negative")
	}

	if quality == 0 {
		quality = DefaultQuality
	}
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("jpeg quality must be between 1 and 100, got %d", quality)
	}

	return &JPEGConverter{maxDimension: maxDimension, quality: quality}, nil
}

func (c *JPEGConverter) Encode(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New("no image to encode")
	}

	img = c.fit(img)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("error encoding jpeg: %w", err)
	}

	log.Debug().Int("bytes", buf.Len()).Msg("encoded jpeg")

	return buf.Bytes(), nil
}

// fit scales img so that its longest side does not exceed maxDimension, keeping the aspect ratio.
func (c *JPEGConverter) fit(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	if c.maxDimension == 0 || (w <= c.maxDimension && h <= c.maxDimension) {
		return img
	}

	var nw, nh int
	if w >= h {
		nw = c.maxDimension
		nh = max(1, h*c.maxDimension/w)
	} else {
		nh = c.maxDimension
		nw = max(1, w*c.maxDimension/h)
	}

	log.Debug().Int("width", w).Int("height", h).Int("newWidth", nw).Int("newHeight", nh).Msg("scaling image")

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	return dst
}
