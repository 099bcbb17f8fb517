package scanapi

import (
	"encoding/json"
	"net/http"
)

// Response is the envelope of every JSON body the service writes.
type Response struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes a failed request. Details carries machine-readable
// context such as the state and position of a scan failure.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ScanResult is the data of a successful scan response.
type ScanResult struct {
	ScanID  string `json:"scan_id,omitempty"`
	Machine string `json:"machine"`
	Found   bool   `json:"found"`
	Exited  bool   `json:"exited"`
	Value   any    `json:"value"`
	Pos     int    `json:"pos"`
	Steps   int    `json:"steps"`
}

// MachineInfo describes one machine of the loaded library.
type MachineInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Initial     string   `json:"initial"`
	States      []string `json:"states"`
	MaxSteps    int      `json:"max_steps,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body Response) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
