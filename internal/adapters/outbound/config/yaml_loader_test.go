package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/abdidvp/dataval/internal/adapters/outbound/config"
	"github.com/abdidvp/dataval/internal/domain"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".dataval.yaml"), []byte(content), 0644))
}

func TestYAMLLoader_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	loader := appconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestYAMLLoader_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
xsd: schemas/label.xsd
schematron: https://example.org/rules.sch
json_schema: /abs/schema.json
concurrency: 4
suggestions: false
fetch_timeout: 5s
hints:
  enabled: true
  endpoint: http://localhost:8080/hint
  timeout: 2s
exclude_paths:
  - archive
`)
	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "schemas", "label.xsd"), cfg.XSD, "relative refs resolve against the config dir")
	assert.Equal(t, "https://example.org/rules.sch", cfg.Schematron)
	assert.Equal(t, "/abs/schema.json", cfg.JSONSchema)
	assert.Equal(t, 4, cfg.EffectiveConcurrency())
	assert.False(t, cfg.SuggestionsEnabled())
	assert.Equal(t, 5*time.Second, cfg.EffectiveFetchTimeout())
	assert.True(t, cfg.Hints.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Hints.EffectiveTimeout())
	assert.Equal(t, []string{"archive"}, cfg.ExcludePaths)
}

func TestYAMLLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{{{invalid yaml`)

	_, err := appconfig.New().Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing .dataval.yaml")
}

func TestYAMLLoader_UnknownKeyRejected(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `xsdd: label.xsd`)

	_, err := appconfig.New().Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "xsdd")
}

func TestYAMLLoader_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `schematron: rules.sch`)

	_, err := appconfig.New().Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid .dataval.yaml")
}

func TestYAMLLoader_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")

	cfg, err := appconfig.New().Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}
