package agentmap

import (
	"testing"

	"github.com/ppiankov/veristream/internal/model"
)

func TestChipsCompletedBy(t *testing.T) {
	m := New()

	tests := []struct {
		step string
		want []model.ChipID
	}{
		{StepDecomposition, []model.ChipID{model.ChipDecompose}},
		{StepEntityResolution, []model.ChipID{model.ChipDecompose}},
		{StepNormalization, []model.ChipID{model.ChipDecompose}},
		{StepEvidenceRetrieval, []model.ChipID{model.ChipEdgar, model.ChipSonarWeb}},
		{StepContradictions, []model.ChipID{model.ChipSonarCounter}},
		{StepConsistency, []model.ChipID{model.ChipSonarCounter}},
		{StepCorrection, []model.ChipID{model.ChipCorrect}},
		{StepReconciliation, []model.ChipID{model.ChipCorrect}},
		{StepSymbolicReasoning, []model.ChipID{model.ChipSymbolic}},
	}

	for _, tt := range tests {
		got := m.ChipsCompletedBy(tt.step)
		if len(got) != len(tt.want) {
			t.Errorf("ChipsCompletedBy(%q) = %v, want %v", tt.step, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ChipsCompletedBy(%q)[%d] = %q, want %q", tt.step, i, got[i], tt.want[i])
			}
		}
	}
}

func TestUnknownStep(t *testing.T) {
	m := New()

	if m.KnownStep("made_up_step") {
		t.Error("KnownStep should be false for an unknown step")
	}
	if chips := m.ChipsActivatedBy("made_up_step"); chips != nil {
		t.Errorf("ChipsActivatedBy(unknown) = %v, want nil", chips)
	}
	if chips := m.ChipsCompletedBy("made_up_step"); chips != nil {
		t.Errorf("ChipsCompletedBy(unknown) = %v, want nil", chips)
	}
	if badge := m.BadgeFor("made_up_step"); badge != "" {
		t.Errorf("BadgeFor(unknown) = %q, want empty", badge)
	}
}

func TestReturnedSlicesAreCopies(t *testing.T) {
	m := New()

	chips := m.ChipsCompletedBy(StepEvidenceRetrieval)
	if len(chips) == 0 {
		t.Fatal("expected chips for evidence_retrieval")
	}
	chips[0] = model.ChipID("mutated")

	again := m.ChipsCompletedBy(StepEvidenceRetrieval)
	if again[0] == model.ChipID("mutated") {
		t.Error("mutating a returned slice leaked into the map")
	}
}

func TestRosterFreshAndOrdered(t *testing.T) {
	m := New()

	r1 := m.Roster()
	r2 := m.Roster()
	if len(r1) != 14 {
		t.Fatalf("roster size = %d, want 14", len(r1))
	}
	if r1[0].ID != model.ChipExtract {
		t.Errorf("first chip = %q, want extract", r1[0].ID)
	}
	for _, c := range r1 {
		if c.Status != model.ChipPending {
			t.Errorf("chip %s status = %q, want pending", c.ID, c.Status)
		}
		if c.Label == "" || c.Color == "" || c.Service == "" {
			t.Errorf("chip %s missing display identity: %+v", c.ID, c)
		}
	}

	// Rosters are independent instances
	r1.Complete(model.ChipDecompose)
	if r2.Chip(model.ChipDecompose).Status != model.ChipPending {
		t.Error("completing a chip on one roster leaked into another")
	}
}

func TestServiceFor(t *testing.T) {
	m := New()

	if got := m.ServiceFor(model.ChipEdgar); got != "edgar" {
		t.Errorf("ServiceFor(edgar) = %q, want %q", got, "edgar")
	}
	if got := m.ServiceFor(model.ChipID("nope")); got != "" {
		t.Errorf("ServiceFor(unknown) = %q, want empty", got)
	}
}

func TestEveryStepHasBadge(t *testing.T) {
	m := New()
	steps := []string{
		StepDecomposition, StepEntityResolution, StepNormalization,
		StepNumericalGrounding, StepEvidenceRetrieval, StepTemporalXBRL,
		StepStaleness, StepCitationVerification, StepEvaluation,
		StepContradictions, StepConsistency, StepPlausibility,
		StepSynthesis, StepProvenance, StepCorrection, StepReconciliation,
		StepRiskSignals, StepSymbolicReasoning,
	}
	if len(steps) != 18 {
		t.Fatalf("step enumeration size = %d, want 18", len(steps))
	}
	for _, step := range steps {
		if !m.KnownStep(step) {
			t.Errorf("step %q not in map", step)
		}
		if m.BadgeFor(step) == "" {
			t.Errorf("step %q has no badge", step)
		}
		if len(m.ChipsActivatedBy(step)) == 0 {
			t.Errorf("step %q activates no chips", step)
		}
	}
}
