package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// HTTPClassifier posts keyword sets to a remote classification endpoint.
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClassifier creates a classifier for endpoint. A nil client means http.DefaultClient;
// deadlines come from the context passed to Classify.
func NewHTTPClassifier(endpoint string, client *http.Client) *HTTPClassifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClassifier{endpoint: endpoint, client: client}
}

func (c *HTTPClassifier) Name() string { return "http" }

// Endpoint returns the configured classification URL.
func (c *HTTPClassifier) Endpoint() string { return c.endpoint }

// Classify performs a single POST exchange. It never retries.
func (c *HTTPClassifier) Classify(ctx context.Context, keywords []string) (Result, error) {
	if len(keywords) == 0 {
		return Result{}, ErrNoKeywords
	}

	payload, err := json.Marshal(Request{Keywords: keywords})
	if err != nil {
		return Result{}, fmt.Errorf("%w: encode request: %w", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("%w: build request: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused; the body is not interpreted.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		log.WithFields(log.Fields{"endpoint": c.endpoint, "status": resp.StatusCode}).Warn("classifier returned non-success status")
		return Result{}, fmt.Errorf("%w: status %d %s", ErrRequestFailed, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, fmt.Errorf("%w: read response: %w", ErrRequestFailed, err)
	}
	return DecodeResult(body)
}

var _ Classifier = (*HTTPClassifier)(nil)
