// Package suggest attaches human-actionable suggestions to validation issues.
package suggest

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/abdidvp/dataval/internal/domain"
)

// Engine evaluates an ordered rule list against issues. An optional hint
// generator is consulted only for issues no rule matched.
type Engine struct {
	rules        []Rule
	hints        domain.HintGenerator
	hintsEnabled bool
	log          *logrus.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules replaces the default rule list.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) { e.rules = rules }
}

// WithHints sets the supplementary hint generator. It is never called unless
// enabled is true.
func WithHints(gen domain.HintGenerator, enabled bool) Option {
	return func(e *Engine) {
		e.hints = gen
		e.hintsEnabled = enabled
	}
}

// WithLogger sets the logger used for hint generator failures.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an engine with DefaultRules unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{rules: DefaultRules()}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logrus.New()
		e.log.SetOutput(io.Discard)
	}
	return e
}

// Suggest returns the suggestion for issue without modifying it, or nil.
func (e *Engine) Suggest(ctx context.Context, issue domain.Issue) *domain.Suggestion {
	for _, r := range e.rules {
		if r.Match(issue) {
			s := r.Build(issue)
			return &s
		}
	}
	if !e.hintsEnabled || e.hints == nil {
		return nil
	}
	s, err := e.hints.Hint(ctx, issue)
	if err != nil {
		e.log.WithError(err).WithField("issue", issue.ID).Debug("hint generator failed")
		return nil
	}
	return s
}

// Apply attaches suggestions in place to issues that have none and returns
// how many were attached. Issues that already carry a suggestion are left
// untouched, so applying twice changes nothing.
func (e *Engine) Apply(ctx context.Context, issues []domain.Issue) int {
	n := 0
	for idx := range issues {
		if issues[idx].Suggestion != nil {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		if s := e.Suggest(ctx, issues[idx]); s != nil {
			issues[idx].Suggestion = s
			n++
		}
	}
	return n
}

// ApplyReport enriches a finalized report.
func (e *Engine) ApplyReport(ctx context.Context, r *domain.Report) int {
	if r == nil {
		return 0
	}
	return e.Apply(ctx, r.Issues)
}
