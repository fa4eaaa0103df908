package registry

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/veristream/internal/agentmap"
	"github.com/ppiankov/veristream/internal/model"
)

func newRegistry() *Registry {
	return New(agentmap.New(), nil)
}

func register(t *testing.T, r *Registry, id string) {
	t.Helper()
	if err := r.Register(model.Claim{ID: id, Text: "claim " + id}); err != nil {
		t.Fatalf("register %s: %v", id, err)
	}
}

func ev(claimID string, kind model.EventKind, step, raw string) model.Event {
	e := model.Event{ClaimID: claimID, Kind: kind, Step: step, Timestamp: time.Now().UTC()}
	if raw != "" {
		e.Payload = json.RawMessage(raw)
	}
	return e
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := newRegistry()
	register(t, r, "c1")

	if err := r.Register(model.Claim{ID: "c1", Text: "again"}); err == nil {
		t.Error("duplicate registration accepted")
	}
	if err := r.Register(model.Claim{Text: "no id"}); err == nil {
		t.Error("empty-id registration accepted")
	}
	if r.Len() != 1 {
		t.Errorf("len = %d, want 1", r.Len())
	}
}

func TestStartVerificationSeedsRoster(t *testing.T) {
	r := newRegistry()
	register(t, r, "c1")

	if !r.StartVerification("c1") {
		t.Fatal("start returned false")
	}
	rec, ok := r.Snapshot("c1")
	if !ok {
		t.Fatal("snapshot missing")
	}
	if rec.Claim.Status != model.ClaimVerifying {
		t.Errorf("status = %q, want verifying", rec.Claim.Status)
	}

	// Extraction happened before the pipeline: its chip starts done
	for _, chip := range rec.Chips {
		want := model.ChipPending
		if chip.ID == model.ChipExtract {
			want = model.ChipDone
		}
		if chip.Status != want {
			t.Errorf("chip %s = %q, want %q", chip.ID, chip.Status, want)
		}
	}
}

func TestDuplicateStartIsNoOp(t *testing.T) {
	r := newRegistry()
	register(t, r, "c1")
	r.StartVerification("c1")

	if err := r.Apply(ev("c1", model.EventSubClaim, "", `{"id":"sc1","text":"x"}`)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if r.StartVerification("c1") {
		t.Error("second start while verifying returned true")
	}
	rec, _ := r.Snapshot("c1")
	if len(rec.State.SubClaims) != 1 {
		t.Error("duplicate start discarded accumulated state")
	}
}

func TestApplyLifecycle(t *testing.T) {
	r := newRegistry()
	register(t, r, "c1")
	r.StartVerification("c1")

	if err := r.Apply(ev("c1", model.EventStepComplete, agentmap.StepDecomposition, "")); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := r.Apply(ev("c1", model.EventOverallVerdict, "", `{"verdict":"supported","confidence":0.9}`)); err != nil {
		t.Fatalf("apply: %v", err)
	}

	rec, _ := r.Snapshot("c1")
	if rec.Claim.Status != model.ClaimDone {
		t.Errorf("status = %q, want done", rec.Claim.Status)
	}
	if rec.State.OverallVerdict == nil {
		t.Error("verdict missing from snapshot")
	}
	if rec.Proof.Root == "" {
		t.Error("proof tree has no root after verdict")
	}

	// Late delivery after the run ended is a safe no-op
	if err := r.Apply(ev("c1", model.EventSubClaim, "", `{"id":"late","text":"x"}`)); err != nil {
		t.Fatalf("late apply: %v", err)
	}
	rec, _ = r.Snapshot("c1")
	if len(rec.State.SubClaims) != 0 {
		t.Error("late event mutated finished run")
	}
}

func TestApplyUnknownClaim(t *testing.T) {
	r := newRegistry()
	if err := r.Apply(ev("ghost", model.EventStepStart, agentmap.StepDecomposition, "")); err == nil {
		t.Error("apply for unknown claim returned nil error")
	}
}

func TestErrorThenRetry(t *testing.T) {
	r := newRegistry()
	register(t, r, "c1")
	r.StartVerification("c1")

	_ = r.Apply(ev("c1", model.EventStepComplete, agentmap.StepDecomposition, ""))
	_ = r.Apply(ev("c1", model.EventStepComplete, agentmap.StepNumericalGrounding, ""))
	_ = r.Apply(ev("c1", model.EventSubClaim, "", `{"id":"sc1","text":"partial"}`))
	_ = r.Apply(ev("c1", model.EventError, "", `{"message":"edgar timeout"}`))

	rec, _ := r.Snapshot("c1")
	if rec.Claim.Status != model.ClaimError {
		t.Fatalf("status = %q, want error", rec.Claim.Status)
	}
	if len(rec.State.SubClaims) != 1 || len(rec.State.CompletedSteps) != 2 {
		t.Error("error discarded partial state")
	}
	if got := r.LastError("c1"); got != "edgar timeout" {
		t.Errorf("last error = %q, want backend message", got)
	}

	// Retry discards the failed run's state, keeps claim metadata
	if !r.Retry("c1") {
		t.Fatal("retry returned false")
	}
	rec, _ = r.Snapshot("c1")
	if rec.Claim.Status != model.ClaimVerifying {
		t.Errorf("status after retry = %q, want verifying", rec.Claim.Status)
	}
	if len(rec.State.SubClaims) != 0 {
		t.Error("retry kept failed run's state")
	}
	if rec.Claim.Text != "claim c1" {
		t.Error("retry lost claim metadata")
	}

	// Retry only applies to claims in error
	if r.Retry("c1") {
		t.Error("retry on verifying claim returned true")
	}
}

func TestMarkStalled(t *testing.T) {
	r := newRegistry()
	register(t, r, "c1")
	r.StartVerification("c1")

	if !r.MarkStalled("c1") {
		t.Fatal("mark stalled returned false for verifying claim")
	}
	rec, _ := r.Snapshot("c1")
	if rec.Claim.Status != model.ClaimError {
		t.Errorf("status = %q, want error", rec.Claim.Status)
	}
	if r.MarkStalled("c1") {
		t.Error("mark stalled on already-errored claim returned true")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	r := newRegistry()
	register(t, r, "c1")
	r.StartVerification("c1")
	_ = r.Apply(ev("c1", model.EventSubClaim, "", `{"id":"sc1","text":"x"}`))

	rec, _ := r.Snapshot("c1")
	rec.State.SubClaims[0].Text = "mutated"
	rec.Chips[0].Status = model.ChipActive

	again, _ := r.Snapshot("c1")
	if again.State.SubClaims[0].Text != "x" {
		t.Error("mutating a snapshot leaked into live state")
	}
	if again.Chips[0].ID == rec.Chips[0].ID && again.Chips[0].Status != model.ChipDone {
		t.Error("mutating a snapshot chip leaked into live roster")
	}
}

func TestSnapshotsRegistrationOrder(t *testing.T) {
	r := newRegistry()
	for _, id := range []string{"c3", "c1", "c2"} {
		register(t, r, id)
	}
	recs := r.Snapshots()
	if len(recs) != 3 {
		t.Fatalf("snapshots = %d, want 3", len(recs))
	}
	want := []string{"c3", "c1", "c2"}
	for i, rec := range recs {
		if rec.Claim.ID != want[i] {
			t.Errorf("snapshot[%d] = %s, want %s", i, rec.Claim.ID, want[i])
		}
	}
}

func TestReset(t *testing.T) {
	r := newRegistry()
	register(t, r, "c1")
	r.Reset()
	if r.Len() != 0 {
		t.Errorf("len after reset = %d, want 0", r.Len())
	}
	if err := r.Register(model.Claim{ID: "c1", Text: "fresh"}); err != nil {
		t.Errorf("re-register after reset: %v", err)
	}
}

// Concurrent appliers on different claims must not interfere; each claim's
// entry has exactly one writer here, the registry just routes.
func TestConcurrentClaims(t *testing.T) {
	r := newRegistry()
	const claims, perClaim = 8, 50

	for i := 0; i < claims; i++ {
		register(t, r, fmt.Sprintf("c%d", i))
		r.StartVerification(fmt.Sprintf("c%d", i))
	}

	var wg sync.WaitGroup
	for i := 0; i < claims; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < perClaim; j++ {
				_ = r.Apply(ev(id, model.EventEvidence, "", fmt.Sprintf(`{"id":"e%d","service":"edgar"}`, j)))
			}
			_ = r.Apply(ev(id, model.EventOverallVerdict, "", `{"verdict":"supported"}`))
		}(fmt.Sprintf("c%d", i))
	}
	wg.Wait()

	for _, rec := range r.Snapshots() {
		if rec.Claim.Status != model.ClaimDone {
			t.Errorf("claim %s status = %q, want done", rec.Claim.ID, rec.Claim.Status)
		}
		if len(rec.State.Evidence) != perClaim {
			t.Errorf("claim %s evidence = %d, want %d", rec.Claim.ID, len(rec.State.Evidence), perClaim)
		}
	}
}
