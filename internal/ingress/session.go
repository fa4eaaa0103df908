// Package ingress consumes the backend's event stream and dispatches each
// event to the reducer for the owning claim. Claims are logically
// independent state machines: every claim gets its own ordered lane and
// consumer goroutine, so cross-claim interleaving never reorders a single
// claim's events.
package ingress

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/veristream/internal/model"
	"github.com/ppiankov/veristream/internal/registry"
)

// maxEventLine bounds one serialized event on the stream
const maxEventLine = 1 << 20

// lane is one claim's ordered delivery channel. done is closed when the
// consumer exits (normally or on stall) so senders never block forever.
type lane struct {
	ch   chan model.Event
	done chan struct{}
}

// Session demultiplexes one backend event stream session into per-claim
// consumer loops feeding the shared registry.
type Session struct {
	id   string
	reg  *registry.Registry
	idle time.Duration
	buf  int
	logf model.Logf
	quit chan struct{} // Closed by Close; consumers drain and exit

	mu     sync.Mutex
	lanes  map[string]*lane
	closed bool
	wg     sync.WaitGroup
}

// NewSession creates a session over the registry. cfg.IdleTimeout of zero
// disables the stalled-pipeline cutoff.
func NewSession(reg *registry.Registry, cfg model.IngestConfig, logf model.Logf) *Session {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	buf := cfg.LaneBuffer
	if buf <= 0 {
		buf = 64
	}
	return &Session{
		id:    "sess-" + uuid.New().String(),
		reg:   reg,
		idle:  cfg.IdleTimeout,
		buf:   buf,
		logf:  logf,
		quit:  make(chan struct{}),
		lanes: make(map[string]*lane),
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Dispatch routes one event to its claim's lane, creating the lane and its
// consumer on first sight. Events after Close, or for a lane whose consumer
// already gave up on a stalled run, are dropped as safe no-ops.
func (s *Session) Dispatch(ev model.Event) {
	if ev.ClaimID == "" {
		s.logf("session %s: event without claim id dropped", s.id)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logf("session %s: event for claim %s after close dropped", s.id, ev.ClaimID)
		return
	}
	l, ok := s.lanes[ev.ClaimID]
	if !ok {
		l = &lane{
			ch:   make(chan model.Event, s.buf),
			done: make(chan struct{}),
		}
		s.lanes[ev.ClaimID] = l
		s.wg.Add(1)
		go s.consume(ev.ClaimID, l)
	}
	s.mu.Unlock()

	select {
	case l.ch <- ev:
	case <-l.done:
		s.logf("session %s: claim %s consumer gone, event %s dropped", s.id, ev.ClaimID, ev.Kind)
	}
}

// consume applies one claim's events strictly in arrival order. The lane
// channel is never closed; shutdown is signalled through s.quit so a late
// Dispatch can never hit a closed channel.
func (s *Session) consume(claimID string, l *lane) {
	defer s.wg.Done()
	defer close(l.done)

	var timer *time.Timer
	var timeout <-chan time.Time // nil when the idle cutoff is disabled
	if s.idle > 0 {
		timer = time.NewTimer(s.idle)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		select {
		case ev := <-l.ch:
			s.apply(ev)
			if timer != nil {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(s.idle)
			}
		case <-timeout:
			if s.reg.MarkStalled(claimID) {
				s.logf("session %s: claim %s stalled, marked error after %v idle", s.id, claimID, s.idle)
			}
			return
		case <-s.quit:
			s.drain(l)
			return
		}
	}
}

// drain applies whatever is already buffered on the lane, then gives up
func (s *Session) drain(l *lane) {
	for {
		select {
		case ev := <-l.ch:
			s.apply(ev)
		default:
			return
		}
	}
}

func (s *Session) apply(ev model.Event) {
	if err := s.reg.Apply(ev); err != nil {
		s.logf("session %s: %v", s.id, err)
	}
}

// Replay feeds a recorded NDJSON event stream through Dispatch, one JSON
// event per line. Blank lines and #-comments are skipped; malformed lines
// are logged and skipped, never fatal.
func (s *Session) Replay(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventLine)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var ev model.Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			s.logf("session %s: malformed event line skipped: %v", s.id, err)
			continue
		}
		s.Dispatch(ev)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return nil
}

// Close stops accepting events, lets every consumer drain its buffered
// events, and waits for all consumers to finish. Events racing Close are
// dropped, never panicked on.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.quit)
	s.mu.Unlock()
	s.wg.Wait()
}
