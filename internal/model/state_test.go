package model

import "testing"

func TestCloneIsDeep(t *testing.T) {
	st := NewVerificationState()
	st.SubClaims = []SubClaim{{ID: "sc1", Text: "original"}}
	st.Evidence = []EvidenceItem{{ID: "e1", Service: "edgar"}}
	st.CompletedSteps["decomposition"] = true
	st.Plausibility = &PlausibilityAssessment{Rating: "plausible"}
	st.CorrectedClaim = &CorrectedClaim{Text: "v1", Changes: []string{"a"}}
	st.RiskSignals = &RiskSignals{Signals: []RiskSignal{{Type: "x", Description: "y"}}}

	c := st.Clone()
	c.SubClaims[0].Text = "mutated"
	c.CompletedSteps["evaluation"] = true
	c.Plausibility.Rating = "implausible"
	c.CorrectedClaim.Changes[0] = "mutated"
	c.RiskSignals.Signals[0].Type = "mutated"

	if st.SubClaims[0].Text != "original" {
		t.Error("sub-claim mutation leaked into original")
	}
	if st.CompletedSteps["evaluation"] {
		t.Error("completed-steps mutation leaked into original")
	}
	if st.Plausibility.Rating != "plausible" {
		t.Error("plausibility mutation leaked into original")
	}
	if st.CorrectedClaim.Changes[0] != "a" {
		t.Error("corrected-claim changes mutation leaked into original")
	}
	if st.RiskSignals.Signals[0].Type != "x" {
		t.Error("risk-signals mutation leaked into original")
	}

	var nilState *VerificationState
	if nilState.Clone() != nil {
		t.Error("clone of nil state should be nil")
	}
}

func TestChipTransitions(t *testing.T) {
	roster := ChipRoster{
		{ID: ChipDecompose, Status: ChipPending},
		{ID: ChipEvaluate, Status: ChipPending},
	}

	if !roster.Activate(ChipDecompose) {
		t.Fatal("activate known chip returned false")
	}
	if roster.Chip(ChipDecompose).Status != ChipActive {
		t.Errorf("status = %q, want active", roster.Chip(ChipDecompose).Status)
	}

	roster.Complete(ChipDecompose)
	// Activate after done must not regress
	roster.Activate(ChipDecompose)
	if roster.Chip(ChipDecompose).Status != ChipDone {
		t.Errorf("status = %q, want done (no regression)", roster.Chip(ChipDecompose).Status)
	}

	if roster.Activate(ChipID("ghost")) {
		t.Error("activate unknown chip returned true")
	}
	if roster.Complete(ChipID("ghost")) {
		t.Error("complete unknown chip returned true")
	}
	if roster.Chip(ChipID("ghost")) != nil {
		t.Error("lookup of unknown chip returned a chip")
	}
}

func TestUnassignedEvidence(t *testing.T) {
	st := NewVerificationState()
	st.SubClaims = []SubClaim{{ID: "sc1"}}
	st.Evidence = []EvidenceItem{
		{ID: "e1", SubClaimID: "sc1"}, // Assigned
		{ID: "e2", SubClaimID: "sc9"}, // Dangling reference
		{ID: "e3"},                    // No reference at all
	}

	got := st.UnassignedEvidence()
	if len(got) != 1 || got[0].ID != "e2" {
		t.Errorf("unassigned = %+v, want only the dangling reference", got)
	}
}
