// Package hints implements supplementary suggestion generators consulted when
// no built-in rule matches an issue.
package hints

import (
	"context"
	"fmt"

	"github.com/abdidvp/dataval/internal/domain"
)

const excerptLen = 80

// Template produces a canned hint from the issue fields without any network
// access.
type Template struct{}

func NewTemplate() *Template { return &Template{} }

func (Template) Hint(_ context.Context, issue domain.Issue) (*domain.Suggestion, error) {
	return &domain.Suggestion{
		Message: fmt.Sprintf("AI hint for %s: check %s — %s…", issue.Type, issue.Path, excerpt(issue.Message, excerptLen)),
	}, nil
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// FromConfig picks the HTTP generator when an endpoint is configured and the
// template generator otherwise.
func FromConfig(cfg domain.HintsConfig) domain.HintGenerator {
	if cfg.Endpoint != "" {
		return NewHTTP(cfg.Endpoint, cfg.EffectiveTimeout())
	}
	return NewTemplate()
}
