package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corbel-cad/corbel/pkg/assembly"
)

// DefaultTTL is how long a terminal run stays retrievable.
const DefaultTTL = 24 * time.Hour

type runEntry struct {
	result *assembly.Result
	doneAt time.Time // zero while processing
}

// Runner executes pipeline runs asynchronously and keeps their results
// retrievable by ID until the retention window lapses. All methods are
// safe for concurrent use.
type Runner struct {
	pipe *Pipeline
	ttl  time.Duration
	log  *zap.SugaredLogger

	mu   sync.RWMutex
	runs map[string]*runEntry
	wg   sync.WaitGroup
}

// NewRunner returns a runner over pipe. ttl <= 0 selects DefaultTTL.
func NewRunner(pipe *Pipeline, ttl time.Duration, log *zap.SugaredLogger) *Runner {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{pipe: pipe, ttl: ttl, log: log, runs: make(map[string]*runEntry)}
}

// Submit registers a new run, starts processing in the background, and
// returns a snapshot of the processing-state result immediately. The
// returned result never transitions; poll Get for the terminal state.
func (r *Runner) Submit(req Request) *assembly.Result {
	id := uuid.NewString()
	initial := &assembly.Result{
		ID:                id,
		Status:            assembly.StatusProcessing,
		ParsedConstraints: append([]assembly.Constraint(nil), req.Constraints...),
		CreatedAt:         time.Now(),
	}

	r.mu.Lock()
	r.pruneLocked(time.Now())
	r.runs[id] = &runEntry{result: initial}
	r.mu.Unlock()

	r.log.Infow("assembly run submitted", "run", id, "constraints", len(req.Constraints))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		res := r.pipe.Execute(context.Background(), id, req)
		r.mu.Lock()
		if e, ok := r.runs[id]; ok {
			e.result = res
			e.doneAt = time.Now()
		}
		r.mu.Unlock()
	}()

	return initial.Clone()
}

// Get returns a deep copy of the run's current result, or false if the
// ID is unknown or expired.
func (r *Runner) Get(id string) (*assembly.Result, bool) {
	r.mu.RLock()
	e, ok := r.runs[id]
	var res *assembly.Result
	var doneAt time.Time
	if ok {
		res, doneAt = e.result, e.doneAt
	}
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !doneAt.IsZero() && time.Since(doneAt) > r.ttl {
		r.mu.Lock()
		delete(r.runs, id)
		r.mu.Unlock()
		return nil, false
	}
	return res.Clone(), true
}

// Wait blocks until all in-flight runs reach a terminal state. Intended
// for shutdown and tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// pruneLocked drops terminal runs older than the retention window.
// Caller holds mu.
func (r *Runner) pruneLocked(now time.Time) {
	for id, e := range r.runs {
		if !e.doneAt.IsZero() && now.Sub(e.doneAt) > r.ttl {
			delete(r.runs, id)
		}
	}
}
