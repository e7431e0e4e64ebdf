// Package pipeline drives one assembly run through its five stages
// (strategy, sizing, solving, collision checking, assembly) and owns
// the asynchronous run contract. Stages execute sequentially under a
// strict data dependency; cancellation is cooperative at stage
// boundaries so working state stays consistent. Every run is fully
// isolated: inputs are immutable and working state is never shared
// across runs.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/corbel-cad/corbel/pkg/assembly"
	"github.com/corbel-cad/corbel/pkg/collision"
	"github.com/corbel-cad/corbel/pkg/parse"
	"github.com/corbel-cad/corbel/pkg/sizing"
	"github.com/corbel-cad/corbel/pkg/solver"
	"github.com/corbel-cad/corbel/pkg/strategy"
)

// DefaultTimeout is the per-run processing budget.
const DefaultTimeout = 30 * time.Second

// Request is one assembly request: two analyzed parts and the parsed
// constraint set.
type Request struct {
	Part1       *assembly.PartAnalysis
	Part2       *assembly.PartAnalysis
	Constraints []assembly.Constraint
}

// Analyzer is the external geometry-analysis collaborator: it turns a
// raw CAD source into a part analysis. The pipeline never parses CAD
// formats itself.
type Analyzer interface {
	Analyze(ctx context.Context, source string) (*assembly.PartAnalysis, error)
}

// ConstraintParser is the external language-parsing collaborator. Both
// the free-text parser and the script engine satisfy it.
type ConstraintParser interface {
	Parse(ctx context.Context, text string) (*parse.Result, error)
}

// Exporter is the external geometry-export collaborator: it renders a
// sized connector under a placement into downloadable artifacts and
// returns opaque handles.
type Exporter interface {
	Export(ctx context.Context, spec *assembly.ConnectorSpec, placement *assembly.Placement, baseName string, formats []string) ([]assembly.ArtifactRef, error)
}

// Pipeline executes assembly runs.
type Pipeline struct {
	exporter Exporter
	formats  []string
	timeout  time.Duration
	log      *zap.SugaredLogger
}

// New returns a pipeline. exporter may be nil to skip artifact
// generation; timeout <= 0 selects DefaultTimeout.
func New(exporter Exporter, formats []string, timeout time.Duration, log *zap.SugaredLogger) *Pipeline {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pipeline{exporter: exporter, formats: formats, timeout: timeout, log: log}
}

// Timeout returns the per-run processing budget.
func (p *Pipeline) Timeout() time.Duration {
	return p.timeout
}

// Execute runs one assembly request to a terminal result. It never
// returns an error: every stage failure, including timeout, is
// converted into a failed result whose Error names the failing stage
// and reason. The result embeds deep copies of the inputs so it never
// aliases caller state.
func (p *Pipeline) Execute(ctx context.Context, id string, req Request) *assembly.Result {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res := &assembly.Result{
		ID:                id,
		Status:            assembly.StatusProcessing,
		ParsedConstraints: append([]assembly.Constraint(nil), req.Constraints...),
		CreatedAt:         start,
	}
	if req.Part1 != nil {
		res.Part1 = req.Part1.Clone()
	}
	if req.Part2 != nil {
		res.Part2 = req.Part2.Clone()
	}

	finish := func(err error) *assembly.Result {
		res.ProcessingTime = time.Since(start).Seconds()
		if err != nil {
			res.Status = assembly.StatusFailed
			res.Error = err.Error()
			p.log.Warnw("assembly run failed", "run", id, "error", err)
		} else {
			res.Status = assembly.StatusCompleted
			p.log.Infow("assembly run completed", "run", id,
				"archetype", res.Connector.Archetype, "seconds", res.ProcessingTime)
		}
		return res
	}

	// stageGate converts a context expiry between stages into the
	// pipeline's timeout error kind.
	stageGate := func() error {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return &assembly.TimeoutError{Budget: p.timeout}
			}
			return err
		}
		return nil
	}

	if err := validateInputs(req); err != nil {
		return finish(err)
	}

	// Stage 1: archetype selection.
	sel, err := strategy.Select(req.Part1, req.Part2, req.Constraints)
	if err != nil {
		return finish(err)
	}
	p.log.Debugw("archetype selected", "run", id,
		"archetype", sel.Archetype, "distance_mm", sel.TargetDistance)
	if err := stageGate(); err != nil {
		return finish(err)
	}

	// Stage 2: connector sizing.
	spec, err := sizing.Size(sel, req.Part1, req.Part2)
	if err != nil {
		return finish(err)
	}
	if err := stageGate(); err != nil {
		return finish(err)
	}

	// Stage 3: constraint solving.
	placement, err := solver.Solve(req.Part1, req.Part2, spec, req.Constraints, sel)
	if err != nil {
		return finish(err)
	}
	if err := stageGate(); err != nil {
		return finish(err)
	}

	// Stage 4: collision check with exactly one resolution pass.
	report := collision.Check(placement, req.Part1, req.Part2, spec)
	if report.Collides {
		resolved, ok := collision.Resolve(placement, req.Part1, req.Part2, spec, report)
		if ok {
			placement = resolved
			report = collision.Check(placement, req.Part1, req.Part2, spec)
		}
		if report.Collides {
			return finish(&assembly.CollisionError{Pairs: report.PairNames()})
		}
		p.log.Debugw("collision resolved", "run", id)
	}
	if err := stageGate(); err != nil {
		return finish(err)
	}

	// Stage 5: assemble and export.
	record := &assembly.Record{Placement: *placement}
	if p.exporter != nil && len(p.formats) > 0 {
		artifacts, err := p.exporter.Export(ctx, spec, placement, id, p.formats)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return finish(&assembly.TimeoutError{Budget: p.timeout})
			}
			return finish(err)
		}
		record.Artifacts = artifacts
	}

	res.Connector = spec
	res.Assembly = record
	return finish(nil)
}

// validateInputs rejects structurally invalid analyses before any stage
// runs.
func validateInputs(req Request) error {
	if req.Part1 == nil || req.Part2 == nil {
		return &assembly.GeometryError{Stage: "input", Reason: "both part analyses are required"}
	}
	if err := req.Part1.Validate(); err != nil {
		return &assembly.GeometryError{Stage: "input", Reason: err.Error()}
	}
	if err := req.Part2.Validate(); err != nil {
		return &assembly.GeometryError{Stage: "input", Reason: err.Error()}
	}
	return nil
}
