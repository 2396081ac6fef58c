package models

// Status is one message from GET /api/status_stream.
// Fields are pointers so a field missing from the payload leaves the
// matching indicator untouched instead of switching it off.
type Status struct {
	IsCameraRunning   *bool `json:"is_camera_running,omitempty"`
	IsRecording       *bool `json:"is_recording,omitempty"`
	IsMotionDetecting *bool `json:"is_motion_detecting,omitempty"`
}

// HealthResponse is the body of GET /api/status
type HealthResponse struct {
	Status string `json:"status"`
}

// Bool is a small helper for building Status values in code.
func Bool(v bool) *bool {
	return &v
}
