package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// StreamURL returns the absolute URL of the status push stream.
func (c *MotionClient) StreamURL() (string, error) {
	return c.absolute(c.Config.StreamPath)
}

func (c *MotionClient) absolute(path string) (string, error) {
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path, nil
	}
	if c.Config.BaseURL == "" {
		return "", fmt.Errorf("no base URL configured for %s", path)
	}
	base, err := url.Parse(c.Config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.Config.BaseURL, err)
	}
	switch base.Scheme {
	case "http", "https":
	default:
		return "", fmt.Errorf("unsupported scheme: %s", base.Scheme)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.Config.BaseURL + path, nil
}

// StreamRequest builds the GET request for the status push stream.
// lastEventID is sent as Last-Event-ID when resuming. Cancelling ctx ends
// the stream.
func (c *MotionClient) StreamRequest(ctx context.Context, lastEventID string) (*http.Request, error) {
	target, err := c.StreamURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}
	return req, nil
}

// StreamClient returns an http.Client on the same transport as the REST
// calls but without their timeout, which would cut the stream.
func (c *MotionClient) StreamClient() *http.Client {
	hc := *c.HTTP.GetClient()
	hc.Timeout = 0
	return &hc
}
