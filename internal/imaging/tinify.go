package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	tinifyEndpoint = "https://api.tinify.com/shrink"
	tinifyTimeout  = 15 * time.Second
)

// TinifyCompressor sends images to the TinyPNG API.
type TinifyCompressor struct {
	APIKey   string
	Endpoint string
	Client   *http.Client
}

// NewTinifyCompressor returns nil when apiKey is empty, which disables
// external compression.
func NewTinifyCompressor(apiKey string) *TinifyCompressor {
	if apiKey == "" {
		return nil
	}
	return &TinifyCompressor{
		APIKey:   apiKey,
		Endpoint: tinifyEndpoint,
		Client:   &http.Client{Timeout: tinifyTimeout},
	}
}

// Compress uploads data and downloads the compressed result referenced by
// the Location header of the shrink response.
func (c *TinifyCompressor) Compress(ctx context.Context, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create shrink request: %w", err)
	}
	req.SetBasicAuth("api", c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shrink request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("shrink status %d: %s", resp.StatusCode, string(body))
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return nil, errors.New("shrink response has no Location header")
	}

	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	getReq.SetBasicAuth("api", c.APIKey)

	out, err := c.Client.Do(getReq)
	if err != nil {
		return nil, fmt.Errorf("download compressed image: %w", err)
	}
	defer out.Body.Close()

	if out.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download status %d", out.StatusCode)
	}
	return io.ReadAll(out.Body)
}
