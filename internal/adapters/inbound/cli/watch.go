package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abdidvp/dataval/internal/adapters/outbound/scanner"
	"github.com/abdidvp/dataval/internal/adapters/outbound/tui"
	"github.com/abdidvp/dataval/internal/adapters/outbound/watcher"
	"github.com/abdidvp/dataval/internal/bootstrap"
	"github.com/abdidvp/dataval/internal/domain"
)

func newWatchCmd(log *logrus.Logger) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Re-validate files as they change",
		Long:  "Validate a file or directory, then re-validate each supported file when it is written. Stop with Ctrl-C.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			cfg, err := bootstrap.LoadConfig(target, flags.configPath, flags.override(cmd))
			if err != nil {
				return err
			}
			runner, err := bootstrap.Build(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer runner.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, cmd.OutOrStdout(), runner, target, log)
		},
	}

	flags.register(cmd)
	return cmd
}

// watch runs an initial validation and then re-validates changed files,
// keeping the tracked file set and the latest report per file.
func watch(ctx context.Context, out io.Writer, runner *bootstrap.Runner, target string, log *logrus.Logger) error {
	scan, err := scanner.New(scanner.WithLogger(log)).Scan(target, runner.Config.ExcludePaths...)
	if err != nil {
		return err
	}
	results, err := runner.Service.RunFiles(ctx, scan.Files)
	if err != nil {
		return err
	}
	fmt.Fprint(out, tui.RenderRun(results))

	latest := make(map[string]*domain.Report, len(results))
	for _, r := range results {
		latest[r.File] = r.Report
	}

	w, err := watcher.New(target,
		watcher.WithExcludes(runner.Config.ExcludePaths...),
		watcher.WithFilter(runner.Supports),
		watcher.WithLogger(log),
	)
	if err != nil {
		return err
	}

	return w.Run(ctx, func(b watcher.Batch) {
		for _, f := range b.Removed {
			scan.RemoveFile(f)
			delete(latest, f)
		}
		for _, f := range b.Changed {
			scan.AddFile(f)
		}
		changed, err := runner.Service.RunFiles(ctx, b.Changed)
		if err != nil {
			log.WithError(err).Warn("re-validation failed")
			return
		}
		for _, r := range changed {
			latest[r.File] = r.Report
		}
		if len(changed) > 0 {
			fmt.Fprint(out, tui.RenderRun(changed))
		}
		fmt.Fprintln(out, watchStatus(scan, latest))
	})
}

func watchStatus(scan *domain.ScanResult, latest map[string]*domain.Report) string {
	failing := 0
	for _, f := range scan.Files {
		if r, ok := latest[f]; ok && !r.Passed() {
			failing++
		}
	}
	return fmt.Sprintf("%d of %d validated file(s) failing", failing, len(latest))
}
