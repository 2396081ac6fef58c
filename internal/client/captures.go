package client

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"motionberry-cli/pkg/models"
)

// CapturePath builds the retrieval path for a capture. The whole filename is
// escaped as one segment, so a server-side path like "/data/clip1.mp4" is
// sent as %2Fdata%2Fclip1.mp4 and resolved by the server.
func CapturePath(filename string) string {
	return "/api/captures/" + url.PathEscape(filename)
}

// ListCaptures returns the file names in the server's capture directory.
func (c *MotionClient) ListCaptures(ctx context.Context) ([]string, error) {
	var respData models.CaptureListResponse

	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetResult(&respData).
		SetError(&respData).
		Get("/api/captures")

	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		if respData.Error != "" {
			return nil, fmt.Errorf("failed to list captures: %s", respData.Error)
		}
		return nil, fmt.Errorf("failed to list captures: %s", resp.String())
	}

	return respData.Captures, nil
}

// FetchCapture streams the capture named filename into w and returns the
// number of bytes written.
func (c *MotionClient) FetchCapture(ctx context.Context, filename string, w io.Writer) (int64, error) {
	if strings.TrimSpace(filename) == "" {
		return 0, fmt.Errorf("capture filename is empty")
	}

	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		SetDoNotParseResponse(true).
		Get(CapturePath(filename))

	if err != nil {
		return 0, err
	}

	body := resp.RawBody()
	if body == nil {
		return 0, fmt.Errorf("failed to get capture %s: empty response", filename)
	}
	defer body.Close()

	if resp.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(body, 4096))
		return 0, fmt.Errorf("failed to get capture %s: %s %s", filename, resp.Status(), strings.TrimSpace(string(msg)))
	}

	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("failed to read capture %s: %w", filename, err)
	}
	return n, nil
}
