package commands

import (
	"bytes"
	"fmt"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/parcelgen/internal/cli/config"
	"github.com/conduit-lang/parcelgen/internal/cli/ui"
)

var (
	initInteractive bool
	initForce       bool
	initPackage     string
	initImport      string
	initSchemaDir   string
	initOutputDir   string
)

var packageNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// validatePackageName checks that name can be used as a Go package name
func validatePackageName(name string) error {
	if !packageNamePattern.MatchString(name) {
		return fmt.Errorf("package name %q must start with a lowercase letter and contain only lowercase letters, digits and underscores", name)
	}
	if token.IsKeyword(name) {
		return fmt.Errorf("package name %q is a Go keyword", name)
	}
	return nil
}

// validateSchemaDir rejects directories outside the project
func validateSchemaDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("schema directory must not be empty")
	}
	if filepath.IsAbs(dir) {
		return fmt.Errorf("schema directory must be relative to the project")
	}
	if clean := filepath.Clean(dir); clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("schema directory must not leave the project")
	}
	return nil
}

// projectFile is what init writes to parcelgen.yaml.
type projectFile struct {
	Schemas   []string       `yaml:"schemas"`
	OutputDir string         `yaml:"output_dir,omitempty"`
	Workers   int            `yaml:"workers"`
	Log       projectLogFile `yaml:"log"`
}

type projectLogFile struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var sampleSchema = template.Must(template.New("schema").Parse(`# Types declared here get marshal code in {{.Package}}_parcel.go.
package: {{.Package}}
import: {{.Import}}
types:
  - name: com.example.{{.Package}}.Greeting
    parcel: true
    fields:
      - name: Message
        type: String
      - name: Count
        type: int
      - name: Tags
        type: List<String>
`))

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create parcelgen.yaml and a sample schema",
		Long: `Create a parcelgen.yaml configuration and a sample schema in the project
directory.

Examples:
  parcelgen init
  parcelgen init --package model --import example.com/app/model
  parcelgen init --interactive`,
		RunE: runInit,
	}

	cmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for every setting")
	cmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing files")
	cmd.Flags().StringVar(&initPackage, "package", "model", "Go package of the sample schema")
	cmd.Flags().StringVar(&initImport, "import", "", "Import path of the sample package (default: example.com/<package>)")
	cmd.Flags().StringVar(&initSchemaDir, "schema-dir", "schema", "Directory holding schema files")
	cmd.Flags().StringVar(&initOutputDir, "output-dir", "", "Directory generated packages are written to (default: next to each schema)")

	return cmd
}

type initSettings struct {
	Package   string
	Import    string
	SchemaDir string
	OutputDir string
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := projectDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = wd
	}

	settings := initSettings{
		Package:   initPackage,
		Import:    initImport,
		SchemaDir: initSchemaDir,
		OutputDir: initOutputDir,
	}
	if initInteractive {
		if err := promptSettings(&settings); err != nil {
			return err
		}
	}
	if settings.Import == "" {
		settings.Import = "example.com/" + settings.Package
	}
	if err := validatePackageName(settings.Package); err != nil {
		return err
	}
	if err := validateSchemaDir(settings.SchemaDir); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	configFile := filepath.Join(dir, config.FileName+".yaml")
	if _, err := os.Stat(configFile); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configFile)
	}

	data, err := renderConfig(settings)
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configFile, err)
	}
	ui.WriteSuccess(out, "Created "+config.FileName+".yaml", noColor)

	schemaFile := filepath.Join(dir, settings.SchemaDir, settings.Package+".yaml")
	if _, err := os.Stat(schemaFile); err == nil && !initForce {
		fmt.Fprint(out, ui.Info(fmt.Sprintf("Kept existing %s", filepath.Join(settings.SchemaDir, settings.Package+".yaml")), noColor))
		return nil
	}

	var schema bytes.Buffer
	if err := sampleSchema.Execute(&schema, settings); err != nil {
		return fmt.Errorf("failed to render sample schema: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(schemaFile), 0755); err != nil {
		return fmt.Errorf("failed to create schema directory: %w", err)
	}
	if err := os.WriteFile(schemaFile, schema.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", schemaFile, err)
	}
	ui.WriteSuccess(out, "Created "+filepath.Join(settings.SchemaDir, settings.Package+".yaml"), noColor)
	fmt.Fprintln(out, "\nNext: parcelgen generate")
	return nil
}

func renderConfig(s initSettings) ([]byte, error) {
	file := projectFile{
		Schemas:   []string{path.Join(filepath.ToSlash(s.SchemaDir), "*.yaml")},
		OutputDir: filepath.ToSlash(s.OutputDir),
		Log:       projectLogFile{Level: "warn", Format: "console"},
	}
	data, err := yaml.Marshal(&file)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return data, nil
}

func promptSettings(s *initSettings) error {
	questions := []*survey.Question{
		{
			Name:   "Package",
			Prompt: &survey.Input{Message: "Go package of the sample schema:", Default: s.Package},
			Validate: func(ans interface{}) error {
				name, _ := ans.(string)
				return validatePackageName(name)
			},
		},
		{
			Name:   "Import",
			Prompt: &survey.Input{Message: "Import path (empty for example.com/<package>):", Default: s.Import},
		},
		{
			Name:   "SchemaDir",
			Prompt: &survey.Input{Message: "Schema directory:", Default: s.SchemaDir},
			Validate: func(ans interface{}) error {
				dir, _ := ans.(string)
				return validateSchemaDir(dir)
			},
		},
		{
			Name:   "OutputDir",
			Prompt: &survey.Input{Message: "Output directory (empty to generate next to each schema):", Default: s.OutputDir},
		},
	}
	return survey.Ask(questions, s)
}
