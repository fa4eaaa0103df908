// Package registry owns the map from claim id to claim, verification state,
// and chip roster. Each entry is written by exactly one applier at a time;
// rendering consumers read copy-on-read snapshots and tolerate the live
// state moving between reads.
package registry

import (
	"fmt"
	"sync"

	"github.com/ppiankov/veristream/internal/agentmap"
	"github.com/ppiankov/veristream/internal/model"
	"github.com/ppiankov/veristream/internal/proof"
	"github.com/ppiankov/veristream/internal/reduce"
	"github.com/ppiankov/veristream/internal/stats"
)

// entry holds everything the registry tracks for one claim.
// entry.mu is the single-writer guard: Apply holds it for the whole
// reduce+stats+proof update so a snapshot never sees a half-applied event.
type entry struct {
	mu    sync.Mutex
	claim model.Claim
	state *model.VerificationState
	chips model.ChipRoster
	agg   *stats.Aggregator
	proof *proof.Builder
	err   string // Last backend error message, when status is error
}

// Registry is the shared store of per-claim verification records
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string // Claim ids in registration order
	steps   *agentmap.Map
	reducer *reduce.Reducer
	logf    model.Logf
}

// New creates an empty registry over the given pipeline-agent map
func New(steps *agentmap.Map, logf model.Logf) *Registry {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Registry{
		entries: make(map[string]*entry),
		steps:   steps,
		reducer: reduce.New(steps, logf),
		logf:    logf,
	}
}

// Register creates a pending entry for the claim. Re-registering an
// existing id is rejected; claims are never replaced within a session.
func (r *Registry) Register(claim model.Claim) error {
	if claim.ID == "" {
		return fmt.Errorf("register claim: empty id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[claim.ID]; exists {
		return fmt.Errorf("register claim: id %q already registered", claim.ID)
	}
	claim.Status = model.ClaimPending
	r.entries[claim.ID] = &entry{claim: claim}
	r.order = append(r.order, claim.ID)
	return nil
}

// StartVerification transitions a claim to verifying and seeds a fresh chip
// roster and empty state, discarding any prior run's accumulation. Starting
// a claim that is already verifying is a no-op (returns false) so duplicate
// starts cannot race a reset. The extract chip is seeded done: extraction
// happened before the pipeline run.
func (r *Registry) StartVerification(id string) bool {
	e := r.lookup(id)
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.claim.Status == model.ClaimVerifying {
		return false
	}
	e.claim.Status = model.ClaimVerifying
	e.state = model.NewVerificationState()
	e.chips = r.steps.Roster()
	e.chips.Complete(model.ChipExtract)
	e.agg = stats.New(r.steps)
	e.proof = proof.New(r.logf)
	e.err = ""
	return true
}

// Retry re-enters pending -> verifying for a claim in error, discarding the
// failed run's verification state. Claim metadata persists.
func (r *Registry) Retry(id string) bool {
	e := r.lookup(id)
	if e == nil {
		return false
	}
	e.mu.Lock()
	if e.claim.Status != model.ClaimError {
		e.mu.Unlock()
		return false
	}
	e.claim.Status = model.ClaimPending
	e.mu.Unlock()
	return r.StartVerification(id)
}

// Apply folds one event into the owning claim's record. Events for unknown
// claims, or claims not currently verifying, are safe no-ops: late
// deliveries for abandoned runs land here.
func (r *Registry) Apply(ev model.Event) error {
	e := r.lookup(ev.ClaimID)
	if e == nil {
		return fmt.Errorf("apply event: unknown claim %q", ev.ClaimID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.claim.Status != model.ClaimVerifying {
		r.logf("claim %s: event %s after run ended, ignored", ev.ClaimID, ev.Kind)
		return nil
	}

	outcome := r.reducer.Apply(e.state, e.chips, ev)
	e.agg.Observe(ev)
	e.proof.Apply(ev)

	switch {
	case outcome.Errored:
		e.claim.Status = model.ClaimError
		e.err = outcome.ErrorMsg
	case outcome.Completed:
		e.claim.Status = model.ClaimDone
	}
	return nil
}

// MarkStalled transitions a verifying claim to error with its partial state
// retained. Used by the ingress idle-timeout; a claim that already finished
// is left alone.
func (r *Registry) MarkStalled(id string) bool {
	e := r.lookup(id)
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.claim.Status != model.ClaimVerifying {
		return false
	}
	e.claim.Status = model.ClaimError
	e.err = "pipeline stalled: no events before idle timeout"
	return true
}

// Snapshot returns a deep copy of one claim's record
func (r *Registry) Snapshot(id string) (model.ClaimRecord, bool) {
	e := r.lookup(id)
	if e == nil {
		return model.ClaimRecord{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return r.recordLocked(e), true
}

// Snapshots returns deep copies of all records in registration order
func (r *Registry) Snapshots() []model.ClaimRecord {
	r.mu.RLock()
	ids := append([]string(nil), r.order...)
	r.mu.RUnlock()

	out := make([]model.ClaimRecord, 0, len(ids))
	for _, id := range ids {
		if rec, ok := r.Snapshot(id); ok {
			out = append(out, rec)
		}
	}
	return out
}

// LastError returns the backend error message for a claim in error status
func (r *Registry) LastError(id string) string {
	e := r.lookup(id)
	if e == nil {
		return ""
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Reset clears the whole registry (the "new analysis" action)
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*entry)
	r.order = nil
}

// Len returns the number of registered claims
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) lookup(id string) *entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[id]
}

// recordLocked snapshots an entry; caller holds e.mu
func (r *Registry) recordLocked(e *entry) model.ClaimRecord {
	rec := model.ClaimRecord{Claim: e.claim}
	if e.state != nil {
		rec.State = *e.state.Clone()
	}
	if e.chips != nil {
		clones := e.chips.Clone()
		rec.Chips = make([]model.AgentChip, len(clones))
		for i, c := range clones {
			rec.Chips[i] = *c
		}
	}
	if e.agg != nil {
		rec.Stats = e.agg.Stats()
	}
	if e.proof != nil {
		rec.Proof = e.proof.Tree()
	}
	return rec
}
