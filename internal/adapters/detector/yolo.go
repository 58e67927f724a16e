package detector

import (
	"bytes"
	"context"
	"detectbot/internal/adapters/file"
	"detectbot/internal/core/domain"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"path"

	"github.com/rs/zerolog/log"
)

const (
	bytesPerPixel = 3
	// MaxSide bounds each reported image dimension.
	MaxSide = 1 << 14
)

// YOLO is a client for an object detection service that accepts an image and answers with the annotated image as a
// raw RGB buffer and the list of detected boxes.
type YOLO struct {
	predictEndpoint string
	client          *http.Client
}

func NewYOLO(predictEndpoint string, client *http.Client) *YOLO {
	if client == nil {
		client = &http.Client{}
	}

	return &YOLO{predictEndpoint: predictEndpoint, client: client}
}

type predictResponse struct {
	Data  *string            `json:"data"`
	Size  []int              `json:"size"`
	Boxes *[]json.RawMessage `json:"boxes"`
}

func (y *YOLO) Detect(ctx context.Context, photoURL string) (image.Image, []domain.Detection, error) {
	photo, err := file.Download(ctx, y.client, photoURL)
	if err != nil {
		return nil, nil, err
	}

	body, err := y.postPredictRequest(ctx, filename(photoURL), photo)
	if err != nil {
		return nil, nil, err
	}

	log.Debug().Int("bytes", len(body)).Msg("detection response")

	var result predictResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, nil, fmt.Errorf("%w: error unmarshalling response: %w", domain.ErrDetectionService, err)
	}

	switch {
	case result.Data == nil:
		return nil, nil, fmt.Errorf("%w: missing field data", domain.ErrDetectionService)
	case result.Size == nil:
		return nil, nil, fmt.Errorf("%w: missing field size", domain.ErrDetectionService)
	case result.Boxes == nil:
		return nil, nil, fmt.Errorf("%w: missing field boxes", domain.ErrDetectionService)
	}

	img, err := decodeRaw(*result.Data, result.Size)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrDetectionService, err)
	}

	detections := make([]domain.Detection, 0, len(*result.Boxes))
	for i, raw := range *result.Boxes {
		d, err := parseBox(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: box %d: %w", domain.ErrDetectionService, i, err)
		}
		detections = append(detections, d)
	}

	log.Debug().Interface("detections", detections).Msg("detection result")

	return img, detections, nil
}

func (y *YOLO) postPredictRequest(ctx context.Context, name string, photo []byte) ([]byte, error) {
	payloadBuf := new(bytes.Buffer)
	w := multipart.NewWriter(payloadBuf)

	part, err := w.CreateFormFile("image", name)
	if err != nil {
		return nil, fmt.Errorf("%w: error creating multipart body: %w", domain.ErrDetectionService, err)
	}
	if _, err := part.Write(photo); err != nil {
		return nil, fmt.Errorf("%w: error writing multipart body: %w", domain.ErrDetectionService, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: error closing multipart body: %w", domain.ErrDetectionService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.predictEndpoint, payloadBuf)
	if err != nil {
		log.Error().Err(err).Msg("error creating POST request for detection service")
		return nil, fmt.Errorf("%w: %w", domain.ErrDetectionService, err)
	}

	req.Header.Add("Content-Type", w.FormDataContentType())

	res, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: error executing request: %w", domain.ErrDetectionService, err)
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: error reading response: %w", domain.ErrDetectionService, err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status code %d", domain.ErrDetectionService, res.StatusCode)
	}

	return body, nil
}

// decodeRaw rebuilds an image from a base64 encoded buffer of packed RGB pixels.
func decodeRaw(data string, size []int) (image.Image, error) {
	if len(size) != 2 || size[0] <= 0 || size[1] <= 0 {
		return nil, fmt.Errorf("invalid size %v", size)
	}
	if size[0] > MaxSide || size[1] > MaxSide {
		return nil, fmt.Errorf("size %v exceeds %d pixels per side", size, MaxSide)
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("error decoding image data: %w", err)
	}

	width, height := size[0], size[1]
	if len(raw) != width*height*bytesPerPixel {
		return nil, fmt.Errorf("image data has %d bytes, want %d for %dx%d", len(raw),
			width*height*bytesPerPixel, width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i, j := 0, 0; i < len(raw); i, j = i+bytesPerPixel, j+4 {
		img.Pix[j] = raw[i]
		img.Pix[j+1] = raw[i+1]
		img.Pix[j+2] = raw[i+2]
		img.Pix[j+3] = 0xff
	}

	return img, nil
}

// parseBox reads a [label, confidence, x0, x1, y0, y1] tuple. Everything after the label is optional.
func parseBox(raw json.RawMessage) (domain.Detection, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return domain.Detection{}, err
	}

	if len(elems) == 0 {
		return domain.Detection{}, errors.New("empty box")
	}

	var d domain.Detection
	if err := json.Unmarshal(elems[0], &d.Label); err != nil {
		return domain.Detection{}, fmt.Errorf("invalid label: %w", err)
	}

	if len(elems) > 1 {
		if err := json.Unmarshal(elems[1], &d.Confidence); err != nil {
			return domain.Detection{}, fmt.Errorf("invalid confidence: %w", err)
		}
	}

	for i := 0; i < len(d.Box) && i+2 < len(elems); i++ {
		if err := json.Unmarshal(elems[i+2], &d.Box[i]); err != nil {
			return domain.Detection{}, fmt.Errorf("invalid coordinate %d: %w", i, err)
		}
	}

	return d, nil
}

func filename(photoURL string) string {
	name := path.Base(photoURL)
	if name == "." || name == "/" || name == "" {
		return "image"
	}
	return name
}
