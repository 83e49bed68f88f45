package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/parcelgen/internal/cli/ui"
	"github.com/conduit-lang/parcelgen/internal/tooling/build"
)

var (
	generateDryRun bool
	generateForce  bool
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate marshal code for every parcel type",
		Long: `Generate marshal code for every parcel type declared in the project's schemas.

One file named <package>_parcel.go is produced per Go package. Files whose
recorded fingerprint matches the current plans are left untouched.

Examples:
  # Generate into the configured output locations
  parcelgen generate

  # Print generated sources without writing them
  parcelgen generate --dry-run

  # Rewrite every file even when nothing changed
  parcelgen generate --force`,
		RunE: runGenerate,
	}

	cmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Print generated sources instead of writing them")
	cmd.Flags().BoolVarP(&generateForce, "force", "f", false, "Rewrite files even if their fingerprint is unchanged")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	p, err := loadProject()
	if err != nil {
		return err
	}
	defer func() { _ = p.logger.Sync() }()

	system, err := p.system(generateDryRun, generateForce)
	if err != nil {
		return err
	}

	result, err := system.Build(cmd.Context())
	if err != nil {
		return err
	}
	return reportBuild(cmd, p, result)
}

// reportBuild prints diagnostics and the per-file outcome of a build. It
// returns an error when the build had errors.
func reportBuild(cmd *cobra.Command, p *project, result *build.BuildResult) error {
	out := cmd.OutOrStdout()
	ui.WriteDiagnostics(cmd.ErrOrStderr(), result.Diagnostics, noColor)

	gray := color.New(color.FgHiBlack)
	if noColor {
		gray.DisableColor()
	}
	for _, f := range result.Files {
		path := f.Path
		if rel, err := filepath.Rel(p.root, f.Path); err == nil {
			path = rel
		}
		if f.Status == build.StatusDryRun {
			ui.Header(out, path, noColor)
			fmt.Fprintln(out, string(f.Source))
			continue
		}
		fmt.Fprintf(out, "  %-9s %s ", f.Status, path)
		gray.Fprintf(out, "(%d type(s))\n", len(f.Types))
	}

	if !result.Success {
		errs, _, _ := result.Diagnostics.ErrorCount()
		return fmt.Errorf("generation failed with %d error(s)", errs)
	}
	ui.WriteSuccess(out, fmt.Sprintf("Generated %d file(s), %d written in %s",
		len(result.Files), result.Written(), result.Duration.Round(time.Millisecond)), noColor)
	return nil
}
