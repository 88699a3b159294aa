package cli

import (
	"github.com/spf13/cobra"

	"github.com/abdidvp/dataval/internal/domain"
)

// runFlags are the configuration overrides shared by validate and watch.
type runFlags struct {
	configPath    string
	xsd           string
	schematron    string
	jsonSchema    string
	csvSchema     string
	cacheDir      string
	concurrency   int
	rules         bool
	noRules       bool
	hints         bool
	hintsEndpoint string
	excludes      []string
}

func (f *runFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "Config file (default: .dataval.yaml in the target directory)")
	fl.StringVar(&f.xsd, "xsd", "", "XSD for .xml files (path or http(s) URL)")
	fl.StringVar(&f.schematron, "schematron", "", "Schematron ruleset evaluated after the XSD")
	fl.StringVar(&f.jsonSchema, "json-schema", "", "JSON Schema for .json files (path or http(s) URL)")
	fl.StringVar(&f.csvSchema, "csv-schema", "", "YAML column rules for .csv files")
	fl.StringVar(&f.cacheDir, "cache-dir", "", "Directory for downloaded schemas")
	fl.IntVar(&f.concurrency, "concurrency", 0, "Files validated in parallel (default: number of CPUs)")
	fl.BoolVar(&f.rules, "rules", true, "Attach rule-based suggestions")
	fl.BoolVar(&f.noRules, "no-rules", false, "Do not attach rule-based suggestions")
	fl.BoolVar(&f.hints, "hints", false, "Consult the hint generator for issues no rule explains")
	fl.StringVar(&f.hintsEndpoint, "hints-endpoint", "", "HTTP endpoint of the hint generator")
	fl.StringSliceVar(&f.excludes, "exclude", nil, "Directory names to skip (repeatable)")
	cmd.MarkFlagsMutuallyExclusive("rules", "no-rules")
}

// override returns the flag values as a config overlay. Suggestions are only
// set when a rules flag was given explicitly.
func (f *runFlags) override(cmd *cobra.Command) domain.ProjectConfig {
	cfg := domain.ProjectConfig{
		XSD:          f.xsd,
		Schematron:   f.schematron,
		JSONSchema:   f.jsonSchema,
		CSVSchema:    f.csvSchema,
		CacheDir:     f.cacheDir,
		Concurrency:  f.concurrency,
		ExcludePaths: f.excludes,
		Hints: domain.HintsConfig{
			Enabled:  f.hints,
			Endpoint: f.hintsEndpoint,
		},
	}
	switch {
	case cmd.Flags().Changed("no-rules"):
		on := !f.noRules
		cfg.Suggestions = &on
	case cmd.Flags().Changed("rules"):
		on := f.rules
		cfg.Suggestions = &on
	}
	return cfg
}
