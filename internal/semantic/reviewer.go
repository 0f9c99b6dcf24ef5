package semantic

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dshills/refract/internal/cache"
	"github.com/dshills/refract/internal/finding"
	"github.com/dshills/refract/internal/providers"
	"github.com/dshills/refract/internal/redact"
	"github.com/dshills/refract/internal/rules"
	"github.com/dshills/refract/internal/source"
)

const (
	DefaultMaxLines  = 300
	DefaultTimeout   = 30 * time.Second
	DefaultMaxTokens = 1000
)

// Options configure a Reviewer. Zero values select the defaults.
type Options struct {
	Model         string
	MaxLines      int
	Timeout       time.Duration
	MaxTokens     int
	Temperature   float64
	RedactSecrets bool
	RedactPaths   []string
	Cache         *cache.Cache
	Limiter       *rate.Limiter
	Logger        *zap.SugaredLogger
}

// Reviewer runs the semantic stage for one file at a time. It is safe for
// concurrent use when its Generator is.
type Reviewer struct {
	gen  providers.Generator
	opts Options
}

// New creates a Reviewer backed by gen.
func New(gen providers.Generator, opts Options) *Reviewer {
	if opts.MaxLines <= 0 {
		opts.MaxLines = DefaultMaxLines
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	return &Reviewer{gen: gen, opts: opts}
}

// Provider returns the name of the backing generator.
func (r *Reviewer) Provider() string { return r.gen.Name() }

// Eligible reports whether a file of lineCount lines at path is sent to
// the provider at all.
func (r *Reviewer) Eligible(path string, lineCount int) bool {
	if lineCount == 0 || lineCount > r.opts.MaxLines {
		return false
	}
	return !redact.Path(path, r.opts.RedactPaths)
}

// Review asks the provider about text and returns classified findings.
// Ineligible files yield no findings and no error. Any transport failure
// is returned so the caller can record it; no findings are produced then.
func (r *Reviewer) Review(ctx context.Context, path, text string, idx rules.Index) ([]finding.Finding, error) {
	lines := source.Lines(text)
	if !r.Eligible(path, len(lines)) {
		r.opts.Logger.Debugw("semantic stage skipped", "file", path, "lines", len(lines))
		return nil, nil
	}

	body := text
	if r.opts.RedactSecrets {
		var n int
		body, n = redact.Secrets(text)
		if n > 0 {
			r.opts.Logger.Debugw("redacted secrets", "file", path, "count", n)
		}
		lines = source.Lines(body)
	}

	req := providers.Request{
		Instruction: SystemInstruction(),
		Input:       NumberLines(lines),
		MaxTokens:   r.opts.MaxTokens,
		Temperature: r.opts.Temperature,
	}

	key := cache.Key(r.gen.Name(), r.opts.Model, req.Instruction, req.Input)
	if resp, ok := r.opts.Cache.Get(key); ok {
		r.opts.Logger.Debugw("semantic cache hit", "file", path)
		return Findings(path, resp, len(lines), idx), nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	if r.opts.Limiter != nil {
		if err := r.opts.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	resp, err := r.gen.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.gen.Name(), err)
	}
	if err := r.opts.Cache.Put(key, resp.Text); err != nil {
		r.opts.Logger.Warnw("caching semantic response", "file", path, "error", err)
	}
	return Findings(path, resp.Text, len(lines), idx), nil
}
