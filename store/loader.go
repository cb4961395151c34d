package store

import (
	"call-blocks/errors"
	"call-blocks/models"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// HTTPClient is used to fetch datasets served over http(s).
var HTTPClient = http.DefaultClient

// LoadDefault imports the dataset at source for sdr. Source is a file path or
// an http(s) URL. When the dataset cannot be fetched the error wraps
// errors.ErrDatasetUnavailable and the store is left unchanged.
func (s *Store) LoadDefault(ctx context.Context, source string, sdr models.SDRID) error {
	logger := s.logger.With().Str("source", source).Str("sdr", string(sdr)).Logger()

	body, err := open(ctx, source)
	if err != nil {
		logger.Warn().Err(err).Msg("default dataset unavailable")
		return fmt.Errorf("%w: %w", errors.ErrDatasetUnavailable, err)
	}
	defer body.Close()

	blocks, err := s.Import(sdr, body)
	if err != nil {
		return fmt.Errorf("load default dataset %s: %w", source, err)
	}

	logger.Info().Int("blocks", len(blocks)).Msg("default dataset loaded")
	return nil
}

func open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.Open(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}
