package application

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/abdidvp/dataval/internal/domain"
	"github.com/abdidvp/dataval/internal/domain/suggest"
)

// ValidateService orchestrates a validation run:
// scan -> detect kind -> validate in a worker pool -> enrich with suggestions.
type ValidateService struct {
	scanner     domain.FileScanner
	detector    domain.KindDetector
	validators  map[domain.Kind]domain.Validator
	engine      *suggest.Engine
	concurrency int
	excludes    []string
	log         *logrus.Logger
}

// ServiceOption configures a ValidateService.
type ServiceOption func(*ValidateService)

// WithSuggestions enables enrichment with engine. A nil engine disables it.
func WithSuggestions(engine *suggest.Engine) ServiceOption {
	return func(s *ValidateService) { s.engine = engine }
}

// WithConcurrency bounds the number of files validated at once.
func WithConcurrency(n int) ServiceOption {
	return func(s *ValidateService) { s.concurrency = n }
}

// WithExcludes skips directories with these names while scanning.
func WithExcludes(names ...string) ServiceOption {
	return func(s *ValidateService) { s.excludes = names }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) ServiceOption {
	return func(s *ValidateService) { s.log = log }
}

func NewValidateService(
	scanner domain.FileScanner,
	detector domain.KindDetector,
	validators map[domain.Kind]domain.Validator,
	opts ...ServiceOption,
) *ValidateService {
	s := &ValidateService{
		scanner:     scanner,
		detector:    detector,
		validators:  validators,
		concurrency: domain.DefaultConfig().EffectiveConcurrency(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	if s.log == nil {
		s.log = discardLogger()
	}
	return s
}

// Run validates every supported file under target. The target must exist.
// Results follow the scanner's lexicographic order.
func (s *ValidateService) Run(ctx context.Context, target string) ([]domain.Result, error) {
	scan, err := s.scanner.Scan(target, s.excludes...)
	if err != nil {
		return nil, fmt.Errorf("scanning target: %w", err)
	}
	return s.RunFiles(ctx, scan.Files)
}

type job struct {
	file      string
	validator domain.Validator
}

// RunFiles validates the given files, skipping kinds without a validator.
// Per-file failures never abort the run; only cancellation of ctx does.
func (s *ValidateService) RunFiles(ctx context.Context, files []string) ([]domain.Result, error) {
	var jobs []job
	for _, f := range files {
		kind := s.detector.Detect(f)
		v, ok := s.validators[kind]
		if !ok {
			s.log.WithFields(logrus.Fields{"file": f, "kind": kind}).Debug("no validator, skipping")
			continue
		}
		jobs = append(jobs, job{file: f, validator: v})
	}
	if len(jobs) == 0 {
		return []domain.Result{}, nil
	}

	results := make([]domain.Result, len(jobs))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(min(len(jobs), s.concurrency))
	for i, j := range jobs {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = domain.Result{File: j.file, Report: s.validate(j)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	// Enrichment runs only once every report is final. gctx is already
	// canceled after Wait, so the caller's ctx is used here.
	if s.engine != nil {
		for _, r := range results {
			n := s.engine.ApplyReport(ctx, r.Report)
			s.log.WithFields(logrus.Fields{"file": r.File, "suggestions": n}).Debug("enriched report")
		}
	}
	return results, nil
}

// validate runs one validator, turning a panic into an io-error issue for
// that file alone.
func (s *ValidateService) validate(j job) (report *domain.Report) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("file", j.file).Errorf("validator panicked: %v", r)
			msg := fmt.Sprintf("validator failed: %v", r)
			report = domain.NewReport(j.file, []domain.Issue{
				domain.NewIssue(domain.IssueIO, j.validator.Kind().RootPath(), msg),
			})
		}
	}()
	issues := j.validator.Validate(j.file)
	s.log.WithFields(logrus.Fields{"file": j.file, "issues": len(issues)}).Debug("validated")
	return domain.NewReport(j.file, issues)
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
