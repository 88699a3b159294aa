// Package bootstrap wires the outbound adapters into the application services
// for the inbound adapters (CLI and MCP).
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/abdidvp/dataval/internal/adapters/outbound/config"
	"github.com/abdidvp/dataval/internal/adapters/outbound/detector"
	"github.com/abdidvp/dataval/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/dataval/internal/adapters/outbound/hints"
	"github.com/abdidvp/dataval/internal/adapters/outbound/history"
	"github.com/abdidvp/dataval/internal/adapters/outbound/scanner"
	"github.com/abdidvp/dataval/internal/adapters/outbound/schemacache"
	"github.com/abdidvp/dataval/internal/adapters/outbound/validators"
	"github.com/abdidvp/dataval/internal/application"
	"github.com/abdidvp/dataval/internal/domain"
	"github.com/abdidvp/dataval/internal/domain/suggest"
)

// ProjectDir is the directory a target's config and history live in: the
// target itself for directories, its parent for files.
func ProjectDir(target string) string {
	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		return filepath.Dir(target)
	}
	return target
}

// LoadConfig reads configPath, or .dataval.yaml in the target's project dir
// when configPath is empty, and overlays override on top.
func LoadConfig(target, configPath string, override domain.ProjectConfig) (domain.ProjectConfig, error) {
	loader := config.New()
	var (
		cfg domain.ProjectConfig
		err error
	)
	if configPath != "" {
		cfg, err = loader.LoadFile(configPath)
	} else {
		cfg, err = loader.Load(ProjectDir(target))
	}
	if err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("loading config: %w", err)
	}

	cfg = cfg.Merge(override)
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Runner is a ready-to-use validation service and the validators it owns.
type Runner struct {
	Config     domain.ProjectConfig
	Service    *application.ValidateService
	validators map[domain.Kind]domain.Validator
}

// Build resolves schemas and constructs every configured validator. The
// caller must Close the runner.
func Build(ctx context.Context, cfg domain.ProjectConfig, log *logrus.Logger) (*Runner, error) {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	if !cfg.HasValidators() {
		log.Warn("no schema configured; every file will be skipped")
	}

	store := schemacache.New(cfg.CacheDir,
		schemacache.WithTimeout(cfg.EffectiveFetchTimeout()),
		schemacache.WithLogger(log),
	)
	vs, err := application.BuildValidators(ctx, cfg.Schemas(), store, validators.NewFactory(log), log)
	if err != nil {
		return nil, err
	}

	opts := []application.ServiceOption{
		application.WithConcurrency(cfg.EffectiveConcurrency()),
		application.WithExcludes(cfg.ExcludePaths...),
		application.WithLogger(log),
	}
	if engine := newEngine(cfg, log); engine != nil {
		opts = append(opts, application.WithSuggestions(engine))
	}

	return &Runner{
		Config:     cfg,
		Service:    application.NewValidateService(scanner.New(scanner.WithLogger(log)), detector.New(), vs, opts...),
		validators: vs,
	}, nil
}

// newEngine returns nil when neither rules nor hints are enabled.
func newEngine(cfg domain.ProjectConfig, log *logrus.Logger) *suggest.Engine {
	if !cfg.SuggestionsEnabled() && !cfg.Hints.Enabled {
		return nil
	}
	opts := []suggest.Option{
		suggest.WithLogger(log),
		suggest.WithHints(hints.FromConfig(cfg.Hints), cfg.Hints.Enabled),
	}
	if !cfg.SuggestionsEnabled() {
		opts = append(opts, suggest.WithRules())
	}
	return suggest.New(opts...)
}

// Supports reports whether path would be validated by this runner.
func (r *Runner) Supports(path string) bool {
	_, ok := r.validators[detector.Detect(path)]
	return ok
}

// Kinds lists the configured kinds in a stable order.
func (r *Runner) Kinds() []domain.Kind {
	var kinds []domain.Kind
	for _, k := range domain.SupportedKinds {
		if _, ok := r.validators[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Close releases the validators.
func (r *Runner) Close() {
	application.CloseValidators(r.validators)
}

// NewHistoryService wires the file-backed history with git metadata.
func NewHistoryService() *application.HistoryService {
	return application.NewHistoryService(history.New(), gitinfo.New())
}
