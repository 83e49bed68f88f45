package commands

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/parcelgen/internal/cli/config"
	"github.com/conduit-lang/parcelgen/internal/cli/ui"
	"github.com/conduit-lang/parcelgen/internal/tooling/build"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

var (
	configPath string
	projectDir string
	logLevel   string
	noColor    bool
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "parcelgen",
		Short: "Parcel marshaling code generator",
		Long: color.CyanString(`parcelgen - parcel codec generator

parcelgen reads schema files describing value types and generates Go code
that writes them to and reads them from a parcel buffer. Field codecs are
resolved from builtin and hand-written adapters, including generic adapters
that depend on the adapters of their type arguments.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: parcelgen.yaml in the project directory)")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", "", "Project directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewAdaptersCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the parcelgen version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			kv := ui.NewKeyValueTable(cmd.OutOrStdout(), noColor)
			kv.AddRow("parcelgen version", Version)
			kv.AddRow("Git commit", GitCommit)
			kv.AddRow("Build date", BuildDate)
			kv.AddRow("Go version", goVer)
			kv.Render()
		},
	}
}

// project is the loaded configuration of the project a command runs in.
type project struct {
	config *config.Config
	root   string
	logger *zap.Logger
}

// configError marks failures to load the configuration, which Execute
// renders with setup hints.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func loadProject() (*project, error) {
	dir := projectDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = wd
	}

	cfg, err := config.Load(dir, configPath)
	if err != nil {
		return nil, &configError{err: err}
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := cfg.Log.Logger()
	if err != nil {
		return nil, &configError{err: err}
	}
	logger.Debug("configuration loaded",
		zap.String("file", cfg.File),
		zap.Strings("schemas", cfg.Schemas),
	)
	return &project{config: cfg, root: cfg.Root(dir), logger: logger}, nil
}

func (p *project) system(dryRun, force bool) (*build.System, error) {
	return build.NewSystem(build.BuildOptions{
		Config: p.config,
		Root:   p.root,
		Logger: p.logger,
		DryRun: dryRun,
		Force:  force,
	})
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		var cfgErr *configError
		if errors.As(err, &cfgErr) {
			fmt.Fprint(rootCmd.ErrOrStderr(), ui.ConfigError(cfgErr.Error(), noColor))
			return err
		}
		errorColor := color.New(color.FgRed, color.Bold)
		if noColor {
			errorColor.DisableColor()
		}
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
