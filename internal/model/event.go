package model

import (
	"encoding/json"
	"time"
)

// EventKind discriminates the typed events streamed by the verification backend
type EventKind string

const (
	EventStepStart        EventKind = "step-start"
	EventStepComplete     EventKind = "step-complete"
	EventReasoningMessage EventKind = "reasoning-message"
	EventSubClaim         EventKind = "sub-claim"
	EventEvidence         EventKind = "evidence"
	EventContradiction    EventKind = "contradiction"
	EventConsistencyIssue EventKind = "consistency-issue"
	EventPlausibility     EventKind = "plausibility"
	EventMateriality      EventKind = "materiality"
	EventRiskSignals      EventKind = "risk-signals"
	EventReconciliation   EventKind = "reconciliation"
	EventCorrectedClaim   EventKind = "corrected-claim"
	EventProvenanceNode   EventKind = "provenance-node"
	EventProvenanceEdge   EventKind = "provenance-edge"
	EventProofNode        EventKind = "proof-node"
	EventRuleFiring       EventKind = "rule-firing"
	EventPredicate        EventKind = "predicate"
	EventOverallVerdict   EventKind = "overall-verdict"
	EventError            EventKind = "error"
)

// Event is one message on the backend's ordered-per-claim stream.
// Events for one claim must be applied in delivery order; events across
// claims are independent.
type Event struct {
	ClaimID   string          `json:"claim_id"`
	Step      string          `json:"step,omitempty"` // Pipeline step identifier (empty for non-step events)
	Kind      EventKind       `json:"kind"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// StepInfo is the payload attached to step-start/step-complete events.
// All fields are optional; counts are additive.
type StepInfo struct {
	APICalls    int      `json:"api_calls,omitempty"`    // External API calls made during the step
	SourceCount int      `json:"source_count,omitempty"` // Externally reported source count
	Services    []string `json:"services,omitempty"`     // Explicit service names touched
	Message     string   `json:"message,omitempty"`
}

// ErrorInfo is the payload of an error event
type ErrorInfo struct {
	Message string `json:"message"`
	Step    string `json:"step,omitempty"` // Step that failed, if known
}
