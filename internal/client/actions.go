package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"motionberry-cli/pkg/models"
)

// Trigger POSTs to an action endpoint. body is sent verbatim as JSON when
// non-empty; otherwise the request carries no body and no Content-Type.
//
// The response is decoded even for error statuses because the server reports
// failures as {"error": "..."}. A body that is not JSON yields an error.
func (c *MotionClient) Trigger(ctx context.Context, target, body string) (*models.TriggerResponse, error) {
	req := c.HTTP.R().SetContext(ctx)

	if strings.TrimSpace(body) != "" {
		if !json.Valid([]byte(body)) {
			return nil, fmt.Errorf("action body for %s is not valid JSON", target)
		}
		req.SetHeader("Content-Type", "application/json").
			SetBody([]byte(body))
	}

	resp, err := req.Post(target)
	if err != nil {
		return nil, err
	}

	var out models.TriggerResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("failed to parse response from %s (%s): %w", target, resp.Status(), err)
	}

	if resp.IsError() {
		msg := out.Error
		if msg == "" {
			msg = resp.String()
		}
		return &out, fmt.Errorf("action %s failed: %s", target, msg)
	}

	return &out, nil
}
