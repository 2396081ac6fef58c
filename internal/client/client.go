package client

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"motionberry-cli/pkg/models"
)

const (
	DefaultStreamPath  = "/api/status_stream"
	DefaultOpenAPIPath = "/openapi.json"
	RequestIDHeader    = "X-Request-ID"
)

type MotionClient struct {
	HTTP   *resty.Client
	Config ClientConfig
}

type ClientConfig struct {
	BaseURL     string
	StreamPath  string        // defaults to DefaultStreamPath
	OpenAPIPath string        // defaults to DefaultOpenAPIPath
	Timeout     time.Duration // zero means no timeout; captures can be large
	Insecure    bool          // skip TLS verification for self-signed Pi setups
}

func New(cfg ClientConfig) *MotionClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.StreamPath == "" {
		cfg.StreamPath = DefaultStreamPath
	}
	if cfg.OpenAPIPath == "" {
		cfg.OpenAPIPath = DefaultOpenAPIPath
	}

	r := resty.New()
	r.SetBaseURL(cfg.BaseURL)
	r.SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		r.SetTimeout(cfg.Timeout)
	}
	if cfg.Insecure {
		r.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	// Every request gets an id so server logs can be matched to console logs.
	r.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if req.Header.Get(RequestIDHeader) == "" {
			req.SetHeader(RequestIDHeader, uuid.NewString())
		}
		return nil
	})

	return &MotionClient{
		HTTP:   r,
		Config: cfg,
	}
}

// Health calls GET /api/status and returns the reported status string.
func (c *MotionClient) Health() (string, error) {
	var respData models.HealthResponse

	resp, err := c.HTTP.R().
		SetResult(&respData).
		Get("/api/status")

	if err != nil {
		return "", err
	}

	if resp.IsError() {
		return "", fmt.Errorf("failed to get health: %s", resp.String())
	}

	if respData.Status == "" {
		return strings.TrimSpace(resp.String()), nil
	}
	return respData.Status, nil
}
