package orchestrator

import (
	"context"
	"sync"

	"github.com/commitcast/commitcast/model"
)

// Job is a generation running in the background. The render loop polls
// it between frames instead of blocking on the pipeline; chunks land in
// the shared store as they finish, so playback can begin mid-job.
type Job struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	chunks []model.DiffChunk
}

// Start launches Generate on its own goroutine and returns immediately.
func (g *Generator) Start(ctx context.Context, commit Commit) *Job {
	ctx, cancel := context.WithCancel(ctx)
	job := &Job{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(job.done)
		chunks := g.Generate(ctx, commit)
		job.mu.Lock()
		job.chunks = chunks
		job.mu.Unlock()
	}()
	return job
}

// Poll reports whether the job has finished and, once it has, returns
// its chunks. Before completion it returns (nil, false) without
// blocking.
func (j *Job) Poll() ([]model.DiffChunk, bool) {
	select {
	case <-j.done:
		j.mu.Lock()
		defer j.mu.Unlock()
		return j.chunks, true
	default:
		return nil, false
	}
}

// Wait blocks until the job finishes and returns its chunks.
func (j *Job) Wait() []model.DiffChunk {
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.chunks
}

// Cancel stops the pipeline at its next pacing point. Chunks produced
// before cancellation stay in the store and remain playable.
func (j *Job) Cancel() {
	j.cancel()
}
