package client

import (
	"context"
	"encoding/json"
	"fmt"

	"motionberry-cli/pkg/models"
)

// GetOpenAPI fetches and decodes the server's OpenAPI document. An empty
// path uses the configured OpenAPIPath.
func (c *MotionClient) GetOpenAPI(ctx context.Context, path string) (*models.OpenAPIDoc, error) {
	if path == "" {
		path = c.Config.OpenAPIPath
	}

	resp, err := c.HTTP.R().
		SetContext(ctx).
		Get(path)

	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, fmt.Errorf("HTTP error! status: %d", resp.StatusCode())
	}

	var doc models.OpenAPIDoc
	if err := json.Unmarshal(resp.Body(), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse API document: %w", err)
	}
	if doc.Version() == "" {
		return nil, fmt.Errorf("document at %s is not an OpenAPI/Swagger document", path)
	}

	return &doc, nil
}
