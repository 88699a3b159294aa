package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdidvp/dataval/internal/adapters/outbound/config"
)

func newInitCmd() *cobra.Command {
	var (
		xsd        string
		schematron string
		jsonSchema string
		csvSchema  string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .dataval.yaml configuration file",
		Long:  "Create a .dataval.yaml naming the schemas used for each file kind.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dest := filepath.Join(absPath, config.FileName)

			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
				}
			}
			if schematron != "" && xsd == "" {
				return fmt.Errorf("--schematron requires --xsd")
			}

			content := generateConfig(xsd, schematron, jsonSchema, csvSchema)
			if err := os.WriteFile(dest, []byte(content), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().StringVar(&xsd, "xsd", "", "XSD for .xml files")
	cmd.Flags().StringVar(&schematron, "schematron", "", "Schematron ruleset for .xml files")
	cmd.Flags().StringVar(&jsonSchema, "json-schema", "", "JSON Schema for .json files")
	cmd.Flags().StringVar(&csvSchema, "csv-schema", "", "YAML column rules for .csv files")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .dataval.yaml")

	return cmd
}

func generateConfig(xsd, schematron, jsonSchema, csvSchema string) string {
	var b strings.Builder
	b.WriteString("# dataval configuration\n")
	b.WriteString("# Schema paths are relative to this file; http(s) URLs are downloaded once and cached.\n\n")

	schemaLine(&b, "xsd", xsd, "schemas/product.xsd")
	schemaLine(&b, "schematron", schematron, "schemas/product.sch")
	schemaLine(&b, "json_schema", jsonSchema, "schemas/record.schema.json")
	schemaLine(&b, "csv_schema", csvSchema, "schemas/table.yaml")

	b.WriteString(`
suggestions: true

# concurrency: 4
# fetch_timeout: 30s
# cache_dir: .dataval/cache

# hints:
#   enabled: false
#   endpoint: https://hints.example.com/v1/suggest
#   timeout: 10s

# exclude_paths:
#   - vendor
#   - generated
`)
	return b.String()
}

func schemaLine(b *strings.Builder, key, value, example string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", key, quoteYAML(value))
		return
	}
	fmt.Fprintf(b, "# %s: %s\n", key, example)
}

// quoteYAML double-quotes values YAML might otherwise misread.
func quoteYAML(s string) string {
	if strings.ContainsAny(s, ":#{}[],&*?|<>=!%@`'\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
