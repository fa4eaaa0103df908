// Package agentmap translates abstract pipeline step identifiers into the
// agent chips they activate and complete. The map is immutable, built once
// at startup, and injected wherever step semantics are needed; it is never
// referenced as ambient global state.
package agentmap

import "github.com/ppiankov/veristream/internal/model"

// Step identifiers emitted by the verification backend
const (
	StepDecomposition        = "decomposition"
	StepEntityResolution     = "entity_resolution"
	StepNormalization        = "normalization"
	StepNumericalGrounding   = "numerical_grounding"
	StepEvidenceRetrieval    = "evidence_retrieval"
	StepTemporalXBRL         = "temporal_xbrl"
	StepStaleness            = "staleness"
	StepCitationVerification = "citation_verification"
	StepEvaluation           = "evaluation"
	StepContradictions       = "contradictions"
	StepConsistency          = "consistency"
	StepPlausibility         = "plausibility"
	StepSynthesis            = "synthesis"
	StepProvenance           = "provenance"
	StepCorrection           = "correction"
	StepReconciliation       = "reconciliation"
	StepRiskSignals          = "risk_signals"
	StepSymbolicReasoning    = "symbolic_reasoning"
)

// Badge categories for display grouping
const (
	BadgeDecompose  = "decompose"
	BadgeGround     = "ground"
	BadgeRetrieve   = "retrieve"
	BadgeVerify     = "verify"
	BadgeAnalyze    = "analyze"
	BadgeSynthesize = "synthesize"
	BadgeTrace      = "trace"
	BadgeSymbolic   = "symbolic"
)

// chipSpec describes one roster entry
type chipSpec struct {
	id      model.ChipID
	service string
	label   string
	color   string
}

// roster is the fixed ordered chip roster seeded per claim. The extract
// chip has no pipeline step: extraction happens before verification, so
// the registry seeds it as done when a run starts.
var roster = []chipSpec{
	{model.ChipExtract, "extractor", "Extract", "#8b5cf6"},
	{model.ChipDecompose, "decomposer", "Decompose", "#6366f1"},
	{model.ChipNumGround, "numground", "Numerical Grounding", "#0ea5e9"},
	{model.ChipEdgar, "edgar", "EDGAR Filings", "#0284c7"},
	{model.ChipSonarWeb, "sonar_web", "Sonar Web Search", "#06b6d4"},
	{model.ChipTemporal, "temporal", "Temporal / XBRL", "#14b8a6"},
	{model.ChipStaleness, "staleness", "Staleness Check", "#f59e0b"},
	{model.ChipCitations, "citations", "Citation Check", "#f97316"},
	{model.ChipSonarCounter, "sonar_counter", "Counter-Evidence", "#ef4444"},
	{model.ChipEvaluate, "evaluator", "Evaluate", "#ec4899"},
	{model.ChipSynthesize, "synthesizer", "Synthesize", "#a855f7"},
	{model.ChipProvenance, "provenance", "Provenance", "#84cc16"},
	{model.ChipCorrect, "corrector", "Correct", "#22c55e"},
	{model.ChipSymbolic, "symbolic", "Symbolic Proof", "#64748b"},
}

// stepSpec wires one step to its chips and badge
type stepSpec struct {
	activates []model.ChipID
	completes []model.ChipID
	badge     string
}

// Map is the immutable bidirectional step<->chip lookup
type Map struct {
	steps    map[string]stepSpec
	services map[model.ChipID]string
}

// New builds the pipeline-agent map
func New() *Map {
	m := &Map{
		steps:    make(map[string]stepSpec),
		services: make(map[model.ChipID]string, len(roster)),
	}
	for _, c := range roster {
		m.services[c.id] = c.service
	}

	// The three decomposition-phase steps all drive the one decompose chip;
	// evidence retrieval fans out to two independently-badged data services.
	m.steps[StepDecomposition] = stepSpec{
		activates: []model.ChipID{model.ChipDecompose},
		completes: []model.ChipID{model.ChipDecompose},
		badge:     BadgeDecompose,
	}
	m.steps[StepEntityResolution] = stepSpec{
		activates: []model.ChipID{model.ChipDecompose},
		completes: []model.ChipID{model.ChipDecompose},
		badge:     BadgeDecompose,
	}
	m.steps[StepNormalization] = stepSpec{
		activates: []model.ChipID{model.ChipDecompose},
		completes: []model.ChipID{model.ChipDecompose},
		badge:     BadgeDecompose,
	}
	m.steps[StepNumericalGrounding] = stepSpec{
		activates: []model.ChipID{model.ChipNumGround},
		completes: []model.ChipID{model.ChipNumGround},
		badge:     BadgeGround,
	}
	m.steps[StepEvidenceRetrieval] = stepSpec{
		activates: []model.ChipID{model.ChipEdgar, model.ChipSonarWeb},
		completes: []model.ChipID{model.ChipEdgar, model.ChipSonarWeb},
		badge:     BadgeRetrieve,
	}
	m.steps[StepTemporalXBRL] = stepSpec{
		activates: []model.ChipID{model.ChipTemporal},
		completes: []model.ChipID{model.ChipTemporal},
		badge:     BadgeVerify,
	}
	m.steps[StepStaleness] = stepSpec{
		activates: []model.ChipID{model.ChipStaleness},
		completes: []model.ChipID{model.ChipStaleness},
		badge:     BadgeVerify,
	}
	m.steps[StepCitationVerification] = stepSpec{
		activates: []model.ChipID{model.ChipCitations},
		completes: []model.ChipID{model.ChipCitations},
		badge:     BadgeVerify,
	}
	m.steps[StepEvaluation] = stepSpec{
		activates: []model.ChipID{model.ChipEvaluate},
		completes: []model.ChipID{model.ChipEvaluate},
		badge:     BadgeAnalyze,
	}
	// Contradiction and consistency analysis share the counter-evidence chip
	m.steps[StepContradictions] = stepSpec{
		activates: []model.ChipID{model.ChipSonarCounter},
		completes: []model.ChipID{model.ChipSonarCounter},
		badge:     BadgeAnalyze,
	}
	m.steps[StepConsistency] = stepSpec{
		activates: []model.ChipID{model.ChipSonarCounter},
		completes: []model.ChipID{model.ChipSonarCounter},
		badge:     BadgeAnalyze,
	}
	m.steps[StepPlausibility] = stepSpec{
		activates: []model.ChipID{model.ChipEvaluate},
		completes: []model.ChipID{model.ChipEvaluate},
		badge:     BadgeAnalyze,
	}
	m.steps[StepSynthesis] = stepSpec{
		activates: []model.ChipID{model.ChipSynthesize},
		completes: []model.ChipID{model.ChipSynthesize},
		badge:     BadgeSynthesize,
	}
	m.steps[StepProvenance] = stepSpec{
		activates: []model.ChipID{model.ChipProvenance},
		completes: []model.ChipID{model.ChipProvenance},
		badge:     BadgeTrace,
	}
	// Correction and reconciliation both finish the correct chip
	m.steps[StepCorrection] = stepSpec{
		activates: []model.ChipID{model.ChipCorrect},
		completes: []model.ChipID{model.ChipCorrect},
		badge:     BadgeSynthesize,
	}
	m.steps[StepReconciliation] = stepSpec{
		activates: []model.ChipID{model.ChipCorrect},
		completes: []model.ChipID{model.ChipCorrect},
		badge:     BadgeSynthesize,
	}
	m.steps[StepRiskSignals] = stepSpec{
		activates: []model.ChipID{model.ChipEvaluate},
		completes: []model.ChipID{model.ChipEvaluate},
		badge:     BadgeAnalyze,
	}
	m.steps[StepSymbolicReasoning] = stepSpec{
		activates: []model.ChipID{model.ChipSymbolic},
		completes: []model.ChipID{model.ChipSymbolic},
		badge:     BadgeSymbolic,
	}

	return m
}

// ChipsActivatedBy returns the chips a step starts work on.
// Unknown steps return an empty set; they must never corrupt state.
func (m *Map) ChipsActivatedBy(step string) []model.ChipID {
	spec, ok := m.steps[step]
	if !ok {
		return nil
	}
	return append([]model.ChipID(nil), spec.activates...)
}

// ChipsCompletedBy returns the chips a step finishes.
// Unknown steps return an empty set.
func (m *Map) ChipsCompletedBy(step string) []model.ChipID {
	spec, ok := m.steps[step]
	if !ok {
		return nil
	}
	return append([]model.ChipID(nil), spec.completes...)
}

// BadgeFor returns the display category for a step, or "" when unknown
func (m *Map) BadgeFor(step string) string {
	return m.steps[step].badge
}

// ServiceFor returns the backing service name for a chip, or "" when unknown
func (m *Map) ServiceFor(chip model.ChipID) string {
	return m.services[chip]
}

// KnownStep reports whether the step identifier is in the fixed enumeration
func (m *Map) KnownStep(step string) bool {
	_, ok := m.steps[step]
	return ok
}

// Roster returns a fresh chip roster with every chip pending, in the fixed
// display order
func (m *Map) Roster() model.ChipRoster {
	out := make(model.ChipRoster, len(roster))
	for i, c := range roster {
		out[i] = &model.AgentChip{
			ID:      c.id,
			Service: c.service,
			Label:   c.label,
			Color:   c.color,
			Status:  model.ChipPending,
		}
	}
	return out
}
