package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/parcelgen/internal/cli/config"
	"github.com/conduit-lang/parcelgen/internal/watch"
)

var watchDelay time.Duration

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate code whenever a schema changes",
		Long: `Generate code once, then watch the schema directories and regenerate
whenever a schema file is written, created, renamed or removed.

Changed files are parsed again; unchanged schemas come from the cache. Every
type is planned again, since a change in one schema can resolve a type that
failed in another.

Examples:
  parcelgen watch

  # Wait longer for editors that save in several steps
  parcelgen watch --delay 500ms`,
		RunE: runWatch,
	}

	cmd.Flags().DurationVar(&watchDelay, "delay", watch.DefaultDelay, "Time to wait for changes to settle before regenerating")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	defer func() { _ = p.logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	system, err := p.system(false, false)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errColor := color.New(color.FgRed)
	if noColor {
		errColor.DisableColor()
	}

	result, err := system.Build(ctx)
	if err != nil {
		return err
	}
	if err := reportBuild(cmd, p, result); err != nil {
		errColor.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
	}

	dirs, patterns := watchTargets(p.config, p.root)
	watcher, err := watch.NewFileWatcher(watch.Options{
		Dirs:     dirs,
		Patterns: patterns,
		Ignored:  []string{"*~", "*.swp", "*.swo"},
		Delay:    watchDelay,
		Logger:   p.logger,
	}, func(files []string) error {
		fmt.Fprintf(out, "\nChanged: %s\n", strings.Join(relative(p.root, files), ", "))
		result, err := system.IncrementalBuild(ctx, files)
		if err != nil {
			return err
		}
		if err := reportBuild(cmd, p, result); err != nil {
			errColor.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}

	banner := color.New(color.FgCyan, color.Bold)
	hint := color.New(color.FgYellow)
	if noColor {
		banner.DisableColor()
		hint.DisableColor()
	}
	fmt.Fprintln(out)
	banner.Fprintf(out, "Watching %s\n", strings.Join(relative(p.root, watcher.Dirs()), ", "))
	hint.Fprintln(out, "Press Ctrl+C to stop")

	<-ctx.Done()

	if err := watcher.Stop(); err != nil {
		return fmt.Errorf("error stopping watcher: %w", err)
	}
	fmt.Fprintln(out, "Stopped watching")
	return nil
}

// watchTargets returns the existing directories the schema globs read from
// and the base-name patterns that select schema files within them.
func watchTargets(cfg *config.Config, root string) (dirs, patterns []string) {
	seen := make(map[string]bool)
	for _, pattern := range cfg.Schemas {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(root, pattern)
		}
		dir, base := filepath.Split(pattern)
		patterns = append(patterns, base)

		candidates := []string{filepath.Clean(dir)}
		if strings.ContainsAny(dir, "*?[") {
			candidates, _ = filepath.Glob(filepath.Clean(dir))
		}
		for _, d := range candidates {
			if info, err := os.Stat(d); err == nil && info.IsDir() && !seen[d] {
				seen[d] = true
				dirs = append(dirs, d)
			}
		}
	}
	return dirs, patterns
}

func relative(root string, paths []string) []string {
	out := make([]string, len(paths))
	for i, path := range paths {
		out[i] = path
		if rel, err := filepath.Rel(root, path); err == nil {
			out[i] = rel
		}
	}
	return out
}
