package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abdidvp/dataval/internal/adapters/outbound/metrics"
	"github.com/abdidvp/dataval/internal/adapters/outbound/render"
	"github.com/abdidvp/dataval/internal/adapters/outbound/tui"
	"github.com/abdidvp/dataval/internal/bootstrap"
	"github.com/abdidvp/dataval/internal/domain"
)

const (
	formatMarkdown = "markdown"
	formatText     = "text"
	formatJSON     = "json"
)

func newValidateCmd(log *logrus.Logger) *cobra.Command {
	var (
		flags       runFlags
		format      string
		jsonOutput  bool
		outDir      string
		withHTML    bool
		record      bool
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a file or every supported file in a directory",
		Long: "Validate XML, JSON and CSV files against the configured schemas. Exits with status 2 " +
			"when any file has errors.",
		Example: "  dataval validate data/ --xsd schemas/product.xsd --json-schema schemas/record.schema.json --out reports --html",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			if _, err := os.Stat(target); err != nil {
				return &exitError{code: ExitFailed, msg: fmt.Sprintf("path not found: %s", target)}
			}
			if jsonOutput {
				format = formatJSON
			}
			switch format {
			case formatMarkdown, formatText, formatJSON:
			default:
				return fmt.Errorf("unknown --format %q (use markdown, text or json)", format)
			}

			cfg, err := bootstrap.LoadConfig(target, flags.configPath, flags.override(cmd))
			if err != nil {
				return err
			}
			runner, err := bootstrap.Build(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer runner.Close()

			start := time.Now()
			results, err := runner.Service.Run(cmd.Context(), target)
			if err != nil {
				return fmt.Errorf("validation run failed: %w", err)
			}
			elapsed := time.Since(start)
			log.WithField("files", len(results)).WithField("elapsed", elapsed).Info("run complete")

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No supported files found.")
				return nil
			}

			if outDir != "" {
				for _, r := range results {
					paths, err := render.Write(outDir, r.Report, withHTML)
					if err != nil {
						return err
					}
					for _, p := range paths {
						log.WithField("path", p).Debug("wrote report")
					}
				}
			}

			switch {
			case format == formatJSON:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			case format == formatText:
				fmt.Fprint(out, tui.RenderRun(results))
			case outDir != "":
				fmt.Fprintf(out, "Wrote %d report(s) to %s\n", len(results), outDir)
			default:
				for _, r := range results {
					md, err := render.Markdown(r.Report)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, md)
					fmt.Fprintln(out, "\n---")
				}
			}

			if record {
				recordRun(cmd, log, target, results)
			}
			if metricsFile != "" {
				rec := metrics.New()
				rec.Observe(results, elapsed)
				if err := rec.WriteTextfile(metricsFile); err != nil {
					return err
				}
			}

			if failed := domain.CountFailed(results); failed > 0 {
				return &exitError{
					code:   ExitFailed,
					msg:    fmt.Sprintf("%d of %d file(s) failed validation", failed, len(results)),
					silent: true,
				}
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", formatMarkdown, "Output format: markdown, text or json")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Shorthand for --format json")
	cmd.Flags().StringVar(&outDir, "out", "", "Write <name>_report.md files to this directory")
	cmd.Flags().BoolVar(&withHTML, "html", false, "With --out, also write <name>_report.html")
	cmd.Flags().BoolVar(&record, "record", false, "Record the run in .dataval/history and show changes since the last run")
	cmd.Flags().StringVar(&metricsFile, "metrics-textfile", "", "Write Prometheus metrics to this file")

	return cmd
}

// recordRun is best-effort: history failures are logged, never fatal.
func recordRun(cmd *cobra.Command, log *logrus.Logger, target string, results []domain.Result) {
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	_, diffs, err := bootstrap.NewHistoryService().Record(bootstrap.ProjectDir(abs), abs, results)
	if err != nil {
		log.WithError(err).Warn("could not record run")
		return
	}
	fmt.Fprint(cmd.ErrOrStderr(), tui.RenderDiffs(diffs))
}
