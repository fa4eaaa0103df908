package model

// ClaimStatus tracks the verification lifecycle of a claim
type ClaimStatus string

const (
	ClaimPending   ClaimStatus = "pending"   // Registered, not yet verified
	ClaimVerifying ClaimStatus = "verifying" // Verification run in progress
	ClaimDone      ClaimStatus = "done"      // Overall verdict received
	ClaimError     ClaimStatus = "error"     // Backend reported an error; partial state retained
)

// Claim represents an atomic, independently-verifiable financial assertion
// extracted from ingested content
type Claim struct {
	ID         string      `json:"id"`                   // Stable claim identifier (assigned at extraction)
	Text       string      `json:"text"`                 // Original claim text
	Normalized string      `json:"normalized,omitempty"` // Normalized wording, if the backend provided one
	Category   string      `json:"category,omitempty"`   // Coarse claim category (e.g., "revenue", "guidance")
	Status     ClaimStatus `json:"status"`               // Lifecycle status
}
