// Package stats derives pipeline statistics from a claim's event stream.
// The stats are strictly derived: replaying the same event sequence from an
// empty aggregator reproduces them exactly, so all timing comes from event
// timestamps, never the local clock.
package stats

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/ppiankov/veristream/internal/agentmap"
	"github.com/ppiankov/veristream/internal/model"
)

// Aggregator accumulates PipelineStats for one claim, one event at a time
type Aggregator struct {
	steps *agentmap.Map

	completed  map[string]bool
	services   map[string]bool
	apiCalls   int
	evidence   int
	reported   int // Explicitly reported external source counts
	firstEvent time.Time
	lastEvent  time.Time
	explicitMs int64 // Authoritative backend duration, wins over measured elapsed
}

// New creates an empty aggregator over the given pipeline-agent map
func New(steps *agentmap.Map) *Aggregator {
	return &Aggregator{
		steps:     steps,
		completed: make(map[string]bool),
		services:  make(map[string]bool),
	}
}

// payloadCounts picks the additive counters any event payload may carry
type payloadCounts struct {
	APICalls    int      `json:"api_calls"`
	SourceCount int      `json:"source_count"`
	Services    []string `json:"services"`
}

// Observe folds one event into the accumulator
func (a *Aggregator) Observe(ev model.Event) {
	if !ev.Timestamp.IsZero() {
		if a.firstEvent.IsZero() {
			a.firstEvent = ev.Timestamp
		}
		if ev.Timestamp.After(a.lastEvent) {
			a.lastEvent = ev.Timestamp
		}
	}

	// Additive counters may ride on any event kind
	if len(ev.Payload) > 0 {
		var counts payloadCounts
		if err := json.Unmarshal(ev.Payload, &counts); err == nil {
			a.apiCalls += counts.APICalls
			a.reported += counts.SourceCount
			for _, svc := range counts.Services {
				a.services[svc] = true
			}
		}
	}

	switch ev.Kind {
	case model.EventStepComplete:
		if !a.completed[ev.Step] {
			a.completed[ev.Step] = true
			// Union the services behind the chips this step finished
			for _, chip := range a.steps.ChipsCompletedBy(ev.Step) {
				if svc := a.steps.ServiceFor(chip); svc != "" {
					a.services[svc] = true
				}
			}
		}

	case model.EventEvidence:
		a.evidence++
		var item model.EvidenceItem
		if err := json.Unmarshal(ev.Payload, &item); err == nil && item.Service != "" {
			a.services[item.Service] = true
		}

	case model.EventOverallVerdict:
		var v model.OverallVerdict
		if err := json.Unmarshal(ev.Payload, &v); err == nil && v.TotalDurationMs > 0 {
			a.explicitMs = v.TotalDurationMs
		}
	}
}

// Stats renders the current accumulated statistics. The service set is
// sorted so identical event sequences yield byte-identical output.
func (a *Aggregator) Stats() model.PipelineStats {
	services := make([]string, 0, len(a.services))
	for svc := range a.services {
		services = append(services, svc)
	}
	sort.Strings(services)

	elapsed := a.explicitMs
	if elapsed == 0 && !a.firstEvent.IsZero() {
		elapsed = a.lastEvent.Sub(a.firstEvent).Milliseconds()
	}

	return model.PipelineStats{
		Steps:     len(a.completed),
		APICalls:  a.apiCalls,
		Services:  services,
		Sources:   a.evidence + a.reported,
		ElapsedMs: elapsed,
	}
}
