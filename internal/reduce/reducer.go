// Package reduce implements the verification state reducer: a total merge
// function that folds one backend event into a claim's accumulated state.
package reduce

import (
	"encoding/json"

	"github.com/ppiankov/veristream/internal/agentmap"
	"github.com/ppiankov/veristream/internal/model"
)

// Outcome reports lifecycle-relevant effects of applying one event.
// The registry uses it to transition claim status; the reducer itself
// never touches the Claim.
type Outcome struct {
	Errored   bool   // An error event arrived; partial state is retained
	Completed bool   // The overall verdict arrived
	ErrorMsg  string // Backend-reported failure message, when Errored
}

// Reducer applies events to VerificationState and the chip roster.
// It holds only the injected step map and a diagnostic sink; all state
// lives in the arguments, so Apply is safe to call from any single writer.
type Reducer struct {
	steps *agentmap.Map
	logf  model.Logf
}

// New creates a reducer over the given pipeline-agent map
func New(steps *agentmap.Map, logf model.Logf) *Reducer {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Reducer{steps: steps, logf: logf}
}

// Apply folds one event into the state and roster, in delivery order.
// Step-set membership is idempotent: re-applying a step-complete is a
// no-op on completedSteps. Singular result fields are last-write-wins.
// Unknown event kinds and malformed payloads are logged and ignored;
// they never corrupt accumulated state.
func (r *Reducer) Apply(st *model.VerificationState, chips model.ChipRoster, ev model.Event) Outcome {
	switch ev.Kind {
	case model.EventStepStart:
		st.CurrentStep = ev.Step
		for _, id := range r.steps.ChipsActivatedBy(ev.Step) {
			chips.Activate(id)
		}

	case model.EventStepComplete:
		st.CompletedSteps[ev.Step] = true
		for _, id := range r.steps.ChipsCompletedBy(ev.Step) {
			chips.Complete(id)
		}
		if st.CurrentStep == ev.Step {
			st.CurrentStep = ""
		}

	case model.EventReasoningMessage:
		var msg model.ReasoningMessage
		if !r.decode(ev, &msg) {
			break
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = ev.Timestamp
		}
		st.Reasoning = append(st.Reasoning, msg)

	case model.EventSubClaim:
		var sc model.SubClaim
		if r.decode(ev, &sc) {
			st.SubClaims = append(st.SubClaims, sc)
		}

	case model.EventEvidence:
		// Evidence referencing an unknown sub-claim is retained in the
		// permanent unassigned bucket, never dropped.
		var item model.EvidenceItem
		if r.decode(ev, &item) {
			st.Evidence = append(st.Evidence, item)
		}

	case model.EventContradiction:
		var c model.ContradictionItem
		if r.decode(ev, &c) {
			st.Contradictions = append(st.Contradictions, c)
		}

	case model.EventConsistencyIssue:
		var issue model.ConsistencyIssue
		if r.decode(ev, &issue) {
			st.ConsistencyIssues = append(st.ConsistencyIssues, issue)
		}

	case model.EventPlausibility:
		var p model.PlausibilityAssessment
		if r.decode(ev, &p) {
			if st.Plausibility != nil {
				r.logf("claim %s: duplicate plausibility payload, keeping latest", ev.ClaimID)
			}
			st.Plausibility = &p
		}

	case model.EventMateriality:
		var m model.MaterialityAssessment
		if r.decode(ev, &m) {
			if st.Materiality != nil {
				r.logf("claim %s: duplicate materiality payload, keeping latest", ev.ClaimID)
			}
			st.Materiality = &m
		}

	case model.EventRiskSignals:
		var rs model.RiskSignals
		if r.decode(ev, &rs) {
			if st.RiskSignals != nil {
				r.logf("claim %s: duplicate risk-signals payload, keeping latest", ev.ClaimID)
			}
			st.RiskSignals = &rs
		}

	case model.EventReconciliation:
		var rec model.Reconciliation
		if r.decode(ev, &rec) {
			if st.Reconciliation != nil {
				r.logf("claim %s: duplicate reconciliation payload, keeping latest", ev.ClaimID)
			}
			st.Reconciliation = &rec
		}

	case model.EventCorrectedClaim:
		var cc model.CorrectedClaim
		if r.decode(ev, &cc) {
			if st.CorrectedClaim != nil {
				r.logf("claim %s: duplicate corrected-claim payload, keeping latest", ev.ClaimID)
			}
			st.CorrectedClaim = &cc
		}

	case model.EventProvenanceNode:
		var node model.ProvenanceNode
		if r.decode(ev, &node) {
			st.Provenance = append(st.Provenance, node)
		}

	case model.EventProvenanceEdge:
		var edge model.ProvenanceEdge
		if r.decode(ev, &edge) {
			st.ProvenanceEdges = append(st.ProvenanceEdges, edge)
		}

	case model.EventProofNode, model.EventRuleFiring, model.EventPredicate:
		// Proof events are consumed by the proof tree builder; the reducer
		// only keeps the step bookkeeping consistent.

	case model.EventOverallVerdict:
		var v model.OverallVerdict
		if !r.decode(ev, &v) {
			break
		}
		if st.OverallVerdict != nil {
			r.logf("claim %s: duplicate overall-verdict payload, keeping latest", ev.ClaimID)
		}
		st.OverallVerdict = &v
		if v.TotalDurationMs > 0 {
			st.TotalDurationMs = v.TotalDurationMs
		}
		if v.TotalSources > 0 {
			st.TotalSources = v.TotalSources
		}
		return Outcome{Completed: true}

	case model.EventError:
		var info model.ErrorInfo
		_ = json.Unmarshal(ev.Payload, &info) // Best effort; the transition happens regardless
		return Outcome{Errored: true, ErrorMsg: info.Message}

	default:
		r.logf("claim %s: unknown event kind %q ignored", ev.ClaimID, ev.Kind)
	}

	return Outcome{}
}

// decode unmarshals an event payload, logging and dropping malformed data
func (r *Reducer) decode(ev model.Event, dst interface{}) bool {
	if len(ev.Payload) == 0 {
		r.logf("claim %s: %s event without payload ignored", ev.ClaimID, ev.Kind)
		return false
	}
	if err := json.Unmarshal(ev.Payload, dst); err != nil {
		r.logf("claim %s: malformed %s payload ignored: %v", ev.ClaimID, ev.Kind, err)
		return false
	}
	return true
}
