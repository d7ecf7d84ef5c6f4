// Package recognition calls the external plate recognition service.
// The service is an opaque collaborator: it receives one JPEG frame and
// answers with zero or more candidate plate strings, best candidate first.
package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/your-org/gatekeeper/internal/config"
	"github.com/your-org/gatekeeper/internal/observability"
)

// ErrUnavailable means the service was unreachable or answered non-2xx.
// The current decision cycle aborts; no retries are issued.
var ErrUnavailable = errors.New("recognition service unavailable")

// Result holds the candidate texts in service priority order (index 0 is
// the primary candidate) plus optional cropped plate previews as data URLs.
// An empty Texts slice is a normal response, not an error.
type Result struct {
	Texts       []string `json:"text"`
	PlateImages []string `json:"plate_images,omitempty"`
}

type recognizeRequest struct {
	Image string `json:"image"`
}

type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(cfg config.RecognitionConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

// Recognize submits one frame and parses the candidates.
func (c *Client) Recognize(ctx context.Context, jpegFrame []byte) (*Result, error) {
	payload, err := json.Marshal(recognizeRequest{
		Image: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegFrame),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal recognize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build recognize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	observability.RecognitionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.RecognitionFailures.Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observability.RecognitionFailures.Inc()
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.RecognitionFailures.Inc()
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	result := &Result{}
	if err := json.Unmarshal(body, result); err != nil {
		observability.RecognitionFailures.Inc()
		return nil, fmt.Errorf("%w: parse response: %v", ErrUnavailable, err)
	}

	return result, nil
}
