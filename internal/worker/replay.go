package worker

import (
	"context"
	"fmt"
	"os"

	"github.com/ppiankov/veristream/internal/ingress"
)

// ReplayJob replays one recorded event-stream file into the shared session.
// Streams must carry disjoint claim sets: the per-claim ordering guarantee
// holds within a stream, not across streams.
type ReplayJob struct {
	Path    string
	Session *ingress.Session
}

// Execute opens the stream file and replays it
func (j *ReplayJob) Execute(ctx context.Context) Result {
	f, err := os.Open(j.Path)
	if err != nil {
		return &ReplayResult{Path: j.Path, Error: fmt.Errorf("open stream: %w", err)}
	}
	defer func() { _ = f.Close() }()

	if err := j.Session.Replay(ctx, f); err != nil {
		return &ReplayResult{Path: j.Path, Error: fmt.Errorf("replay %s: %w", j.Path, err)}
	}
	return &ReplayResult{Path: j.Path}
}

// ReplayResult reports the outcome of one stream replay
type ReplayResult struct {
	Path  string
	Error error
}

// GetError returns the replay error, if any
func (r *ReplayResult) GetError() error {
	return r.Error
}

// ReplayStreams replays multiple stream files concurrently through the pool
func ReplayStreams(ctx context.Context, session *ingress.Session, paths []string, concurrency int) []*ReplayResult {
	if len(paths) == 0 {
		return nil
	}

	pool := NewPool(concurrency)
	pool.Start()
	for _, path := range paths {
		pool.Submit(&ReplayJob{Path: path, Session: session})
	}
	results := pool.Wait()

	out := make([]*ReplayResult, len(results))
	for i, r := range results {
		out[i] = r.(*ReplayResult)
	}
	return out
}
