package review

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/refract/internal/checks"
	"github.com/dshills/refract/internal/comments"
	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/rules"
	"github.com/dshills/refract/internal/semantic"
)

// Tool is the name reported in every Report.
const Tool = "refract"

// DefaultConcurrency bounds how many files RunFiles reviews at once.
const DefaultConcurrency = 4

// Engine runs the static and semantic stages over source files.
type Engine struct {
	Registry checks.Registry
	Rules    rules.Source
	// Semantic is nil when the semantic stage is off.
	Semantic *semantic.Reviewer
	// SemanticErr is set when the semantic stage was requested but its
	// provider could not be built. It becomes a run-level warning.
	SemanticErr error
	Logger      *zap.SugaredLogger
	Concurrency int
	Version     string
}

// ruleSet is the rule list loaded once per run.
type ruleSet struct {
	list []rules.Rule
	idx  rules.Index
}

// run accumulates state shared by every file in one run.
type run struct {
	rules ruleSet

	mu       sync.Mutex
	warnings []Warning

	staticNs   atomic.Int64
	semanticNs atomic.Int64
}

func (r *run) warn(w Warning) {
	r.mu.Lock()
	r.warnings = append(r.warnings, w)
	r.mu.Unlock()
}

func (e *Engine) logger() *zap.SugaredLogger {
	if e.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return e.Logger
}

func (e *Engine) registry() checks.Registry {
	if e.Registry == nil {
		return checks.Default(checks.Options{})
	}
	return e.Registry
}

// begin loads the rule set and records run-level warnings.
func (e *Engine) begin(ctx context.Context) *run {
	r := &run{}

	src := e.Rules
	if src == nil {
		src = rules.Builtin{}
	}
	_, span := startStageSpan(ctx, StageRules)
	rs, err := src.Load()
	endSpan(span, err)
	if err != nil {
		e.degrade(ctx, r, Warning{Stage: StageRules, Err: err})
	} else {
		rs = rules.Dedupe(rs)
		r.rules = ruleSet{list: rs, idx: rules.NewIndex(rs)}
	}

	if e.Semantic == nil && e.SemanticErr != nil {
		e.degrade(ctx, r, Warning{Stage: StageProvider, Err: e.SemanticErr})
	}
	return r
}

func (e *Engine) degrade(ctx context.Context, r *run, w Warning) {
	r.warn(w)
	recordStageFailure(ctx, w.Stage)
	e.logger().Warnw("stage degraded", "stage", w.Stage, "file", w.File, "error", w.Err)
}

// ReviewFile reviews a single file. The returned list is never empty: a
// clean file yields exactly one NO_ISSUES sentinel. Stage failures are
// returned as warnings, never as an error.
func (e *Engine) ReviewFile(ctx context.Context, in FileInput) ([]finding.Finding, []Warning) {
	r := e.begin(ctx)
	out := e.reviewFile(ctx, r, in)
	return out, r.warnings
}

func (e *Engine) reviewFile(ctx context.Context, r *run, in FileInput) []finding.Finding {
	start := time.Now()
	ctx, span := startFileSpan(ctx, in.Path)
	defer span.End()

	var all []finding.Finding

	if len(r.rules.list) > 0 {
		_, sspan := startStageSpan(ctx, StageStatic)
		t := time.Now()
		all = append(all, e.registry().Run(in.Path, in.Text, r.rules.list)...)
		r.staticNs.Add(int64(time.Since(t)))
		sspan.End()
	}

	if e.Semantic != nil {
		sctx, sspan := startStageSpan(ctx, StageSemantic)
		t := time.Now()
		found, err := e.Semantic.Review(sctx, in.Path, in.Text, r.rules.idx)
		elapsed := time.Since(t)
		r.semanticNs.Add(int64(elapsed))
		recordSemanticLatency(ctx, elapsed, err == nil)
		endSpan(sspan, err)
		if err != nil {
			e.degrade(ctx, r, Warning{Stage: StageSemantic, File: in.Path, Err: err})
		} else {
			all = append(all, found...)
		}
	}

	all = comments.Filter(all, comments.Scan(in.Text))
	if in.ChangedLines != nil {
		all = onChangedLines(all, in.ChangedLines)
	}
	if len(all) == 0 {
		all = []finding.Finding{finding.NoIssues(in.Path)}
	}

	recordFileMetrics(ctx, time.Since(start), all)
	e.logger().Debugw("reviewed file", "file", in.Path, "findings", len(all))
	return all
}

// onChangedLines keeps file-level findings and findings on changed lines.
func onChangedLines(fs []finding.Finding, changed map[int]bool) []finding.Finding {
	out := make([]finding.Finding, 0, len(fs))
	for _, f := range fs {
		if f.Line == 0 || changed[f.Line] {
			out = append(out, f)
		}
	}
	return out
}

// RunFiles reviews inputs concurrently and returns a report whose files
// are in input order. It only fails when ctx is cancelled.
func (e *Engine) RunFiles(ctx context.Context, inputs []FileInput) (*Report, error) {
	start := time.Now()
	r := e.begin(ctx)

	results := make([]FileResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	limit := e.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g.SetLimit(limit)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = FileResult{Path: in.Path, Findings: e.reviewFile(gctx, r, in)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reviewing files: %w", err)
	}

	var all []finding.Finding
	for _, res := range results {
		all = append(all, res.Findings...)
	}

	report := &Report{
		Tool:     Tool,
		Version:  e.Version,
		RunID:    uuid.NewString(),
		Summary:  finding.Summarize(all),
		Files:    results,
		Warnings: r.warnings,
		Timing: Timing{
			StaticMs:   time.Duration(r.staticNs.Load()).Milliseconds(),
			SemanticMs: time.Duration(r.semanticNs.Load()).Milliseconds(),
			TotalMs:    time.Since(start).Milliseconds(),
		},
	}
	if e.Semantic != nil {
		report.Inputs.Provider = e.Semantic.Provider()
	}
	return report, nil
}

// ReadWarning builds the warning recorded when a file cannot be read.
func ReadWarning(path string, err error) Warning {
	return Warning{Stage: StageRead, File: path, Err: err}
}
