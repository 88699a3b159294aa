package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abdidvp/dataval/internal/domain"
)

// FileName is the project configuration file looked up in the target directory.
const FileName = ".dataval.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .dataval.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .dataval.yaml from projectPath.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	path := filepath.Join(projectPath, FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return domain.DefaultConfig(), nil
	}
	return l.LoadFile(path)
}

// LoadFile reads an explicit config file. Relative schema paths inside it are
// resolved against the file's directory; URLs are kept as-is.
func (l *YAMLLoader) LoadFile(path string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ProjectConfig{}, err
	}

	var cfg domain.ProjectConfig
	if err := decodeStrict(data, &cfg); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	// Validate before resolving, catches typos in user's raw input.
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}

	base := filepath.Dir(path)
	cfg.XSD = resolveRef(base, cfg.XSD)
	cfg.Schematron = resolveRef(base, cfg.Schematron)
	cfg.JSONSchema = resolveRef(base, cfg.JSONSchema)
	cfg.CSVSchema = resolveRef(base, cfg.CSVSchema)
	if cfg.CacheDir != "" {
		cfg.CacheDir = resolveRef(base, cfg.CacheDir)
	}
	return cfg, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func resolveRef(base, ref string) string {
	if ref == "" || isURL(ref) || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(base, ref)
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
