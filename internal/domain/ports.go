package domain

import (
	"context"
	"sort"
)

// Validator checks one file of its Kind and returns the issues found.
// Per-file failures (unreadable or malformed input) are reported as issues,
// never as errors; implementations are safe for concurrent use.
type Validator interface {
	Kind() Kind
	Validate(path string) []Issue
}

// FileScanner discovers the files beneath a validation target.
type FileScanner interface {
	Scan(target string, excludePaths ...string) (*ScanResult, error)
}

// ScanResult holds the regular files found for a target, sorted lexicographically.
type ScanResult struct {
	RootPath string   `json:"root_path"`
	IsFile   bool     `json:"is_file"`
	Files    []string `json:"files"`
}

// AddFile inserts path keeping Files sorted and free of duplicates.
func (s *ScanResult) AddFile(path string) {
	i := sort.SearchStrings(s.Files, path)
	if i < len(s.Files) && s.Files[i] == path {
		return
	}
	s.Files = append(s.Files, "")
	copy(s.Files[i+1:], s.Files[i:])
	s.Files[i] = path
}

// RemoveFile drops path from Files if present.
func (s *ScanResult) RemoveFile(path string) {
	i := sort.SearchStrings(s.Files, path)
	if i < len(s.Files) && s.Files[i] == path {
		s.Files = append(s.Files[:i], s.Files[i+1:]...)
	}
}

// KindDetector maps a file name to its format kind.
type KindDetector interface {
	Detect(path string) Kind
}

// SchemaResolver turns a schema reference (local path or http(s) URL) into a
// readable local file path.
type SchemaResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// HintGenerator may produce a supplementary suggestion for an issue.
type HintGenerator interface {
	Hint(ctx context.Context, issue Issue) (*Suggestion, error)
}

// ConfigLoader loads project configuration.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
	LoadFile(path string) (ProjectConfig, error)
}

// RunHistory persists validation runs for diffing.
type RunHistory interface {
	Save(projectPath string, entry RunEntry) error
	Load(projectPath string) ([]RunEntry, error)
}

// GitInfo provides version control metadata for a project.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
}

// SchemaSet names the schema resources for each validator. Empty fields
// leave that kind unconfigured.
type SchemaSet struct {
	XSD        string `json:"xsd,omitempty"`
	Schematron string `json:"schematron,omitempty"`
	JSONSchema string `json:"json_schema,omitempty"`
	CSVSchema  string `json:"csv_schema,omitempty"`
}

// ValidatorFactory constructs format validators from local schema files.
// Construction failures are configuration errors.
type ValidatorFactory interface {
	XML(xsdPath, schematronPath string) (Validator, error)
	JSON(schemaPath string) (Validator, error)
	CSV(specPath string) (Validator, error)
}
