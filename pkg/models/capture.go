package models

// CaptureListResponse wraps GET /api/captures
type CaptureListResponse struct {
	Captures []string `json:"captures"`
	Error    string   `json:"error,omitempty"`
}
