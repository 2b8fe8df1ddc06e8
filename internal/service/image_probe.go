package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var ErrNotAnImage = errors.New("url does not point to an image")

// ImageProber checks that an image URL is reachable and serves an image.
type ImageProber interface {
	Probe(ctx context.Context, url string) error
}

type httpImageProber struct {
	client *http.Client
}

// NewHTTPImageProber returns a prober that issues a HEAD request and checks
// the response content type. A nil client gets a five second timeout.
func NewHTTPImageProber(client *http.Client) ImageProber {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &httpImageProber{client: client}
}

func (p *httpImageProber) Probe(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: status %d", ErrNotAnImage, resp.StatusCode)
	}

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(strings.ToLower(ct), "image/") {
		return fmt.Errorf("%w: content type %q", ErrNotAnImage, ct)
	}
	return nil
}
