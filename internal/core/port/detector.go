package port

import (
	"context"
	"detectbot/internal/core/domain"
	"image"
)

type Detector interface {
	// Detect downloads the photo at photoURL, runs it through the detection service and returns the annotated image
	// together with the detected objects.
	Detect(ctx context.Context, photoURL string) (image.Image, []domain.Detection, error)
}

type ImageEncoder interface {
	// Encode compresses an image for upload.
	Encode(img image.Image) ([]byte, error)
}
