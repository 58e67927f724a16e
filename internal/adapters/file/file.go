package file

import (
	"context"
	"detectbot/internal/core/domain"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// MaxPhotoBytes caps the size of a downloaded photo.
const MaxPhotoBytes = 20 << 20

// Download returns the byte content of a file on a provided URL. Any failure wraps domain.ErrFetch.
func Download(ctx context.Context, client *http.Client, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		err = fmt.Errorf("%w: error creating request: %w", domain.ErrFetch, err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	res, err := client.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: error executing request: %w", domain.ErrFetch, err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		err = fmt.Errorf("%w: unexpected status code on download: %d", domain.ErrFetch, res.StatusCode)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, MaxPhotoBytes+1))
	if err != nil {
		err = fmt.Errorf("%w: error reading response: %w", domain.ErrFetch, err)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	if len(buf) > MaxPhotoBytes {
		err = fmt.Errorf("%w: photo exceeds %d bytes", domain.ErrFetch, MaxPhotoBytes)
		log.Error().Err(err).Str("path", path).Send()
		return nil, err
	}

	log.Debug().Int("bytes", len(buf)).Str("path", path).Msg("downloaded file")

	return buf, nil
}
