package models

// TriggerResponse is the loose JSON shape returned by the action endpoints.
// Snapshot and record answer with a filename, detection toggles with a status.
type TriggerResponse struct {
	Message  string `json:"message,omitempty"`
	Status   string `json:"status,omitempty"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RecordPayload is the body for POST /api/record
type RecordPayload struct {
	Duration int `json:"duration"`
}
