package application

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abdidvp/dataval/internal/domain"
)

// HistoryService records validation runs and diffs each run against the
// previous one for the same target.
type HistoryService struct {
	store domain.RunHistory
	git   domain.GitInfo
	now   func() time.Time
	newID func() string
}

func NewHistoryService(store domain.RunHistory, git domain.GitInfo) *HistoryService {
	return &HistoryService{
		store: store,
		git:   git,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Record appends a run entry under projectPath and returns it together with
// the per-file changes since the last run of target.
func (s *HistoryService) Record(projectPath, target string, results []domain.Result) (domain.RunEntry, []domain.FileDiff, error) {
	entries, err := s.store.Load(projectPath)
	if err != nil {
		return domain.RunEntry{}, nil, fmt.Errorf("loading history: %w", err)
	}

	entry := domain.NewRunEntry(s.newID(), s.now().UTC().Format(time.RFC3339), target, results)
	if s.git != nil && s.git.IsGitRepo(projectPath) {
		if hash, err := s.git.CommitHash(projectPath); err == nil {
			entry.CommitHash = hash
		}
	}

	var diffs []domain.FileDiff
	if prev, ok := domain.LatestFor(entries, target); ok {
		diffs = domain.DiffRuns(prev, entry)
	}

	if err := s.store.Save(projectPath, entry); err != nil {
		return domain.RunEntry{}, nil, fmt.Errorf("saving history: %w", err)
	}
	return entry, diffs, nil
}

// List returns all recorded runs, oldest first.
func (s *HistoryService) List(projectPath string) ([]domain.RunEntry, error) {
	entries, err := s.store.Load(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return entries, nil
}
