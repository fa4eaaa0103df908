package model

// PipelineStats is the derived, monotonically-accumulating view of one
// claim's verification run. It is never mutated independently: replaying
// the same event sequence must reproduce it exactly.
type PipelineStats struct {
	Steps     int      `json:"steps"`              // Distinct completed steps
	APICalls  int      `json:"api_calls"`          // External API calls reported by the backend
	Services  []string `json:"services,omitempty"` // Distinct services touched, sorted
	Sources   int      `json:"sources"`            // Evidence items plus explicitly reported source counts
	ElapsedMs int64    `json:"elapsed_ms"`         // From event timestamps, or the backend's terminal figure
}

// HasService reports whether the given service is in the set
func (s PipelineStats) HasService(name string) bool {
	for _, svc := range s.Services {
		if svc == name {
			return true
		}
	}
	return false
}
