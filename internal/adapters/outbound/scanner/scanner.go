package scanner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/abdidvp/dataval/internal/domain"
)

var skipDirs = map[string]bool{
	".git":         true,
	".dataval":     true,
	"node_modules": true,
}

// FileScanner implements domain.FileScanner by walking the filesystem.
type FileScanner struct {
	log *logrus.Logger
}

// Option configures a FileScanner.
type Option func(*FileScanner)

// WithLogger sets the logger used for entries that cannot be read.
func WithLogger(log *logrus.Logger) Option {
	return func(s *FileScanner) { s.log = log }
}

func New(opts ...Option) *FileScanner {
	s := &FileScanner{}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.New()
		s.log.SetOutput(io.Discard)
	}
	return s
}

// Scan returns the regular files beneath target, sorted lexicographically.
// A file target yields itself. Returned paths keep the target as prefix.
// Entries below target that cannot be read are logged and skipped.
func (s *FileScanner) Scan(target string, excludePaths ...string) (*domain.ScanResult, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", target, err)
	}
	absPath, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}

	result := &domain.ScanResult{RootPath: absPath}
	if !info.IsDir() {
		result.IsFile = true
		result.Files = []string{target}
		return result, nil
	}

	// Merge extra excludes with built-in skip dirs.
	extraSkip := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		extraSkip[strings.TrimSuffix(p, "/")] = true
	}

	err = filepath.WalkDir(target, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == target {
				return err
			}
			s.log.WithError(err).WithField("path", path).Warn("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != target && (skipDirs[d.Name()] || extraSkip[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			result.Files = append(result.Files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(result.Files)
	return result, nil
}
