package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdidvp/dataval/internal/domain"
)

const historyFile = ".dataval/history/runs.json"

// DefaultLimit is the number of runs kept per project.
const DefaultLimit = 200

// FileHistory implements domain.RunHistory using JSON file storage.
type FileHistory struct {
	limit int
}

func New() *FileHistory {
	return &FileHistory{limit: DefaultLimit}
}

// WithLimit returns a history keeping at most n entries (n <= 0 keeps all).
func (h *FileHistory) WithLimit(n int) *FileHistory {
	return &FileHistory{limit: n}
}

// Path returns the history file location for a project.
func Path(projectPath string) string {
	return filepath.Join(projectPath, historyFile)
}

func (h *FileHistory) Save(projectPath string, entry domain.RunEntry) error {
	entries, err := h.Load(projectPath)
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if h.limit > 0 && len(entries) > h.limit {
		entries = entries[len(entries)-h.limit:]
	}

	fp := Path(projectPath)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(fp, data, 0644)
}

func (h *FileHistory) Load(projectPath string) ([]domain.RunEntry, error) {
	data, err := os.ReadFile(Path(projectPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("reading run history: %w", err)
	}

	return entries, nil
}
