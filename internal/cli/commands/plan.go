package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/parcelgen/internal/cli/ui"
	cerrors "github.com/conduit-lang/parcelgen/internal/compiler/errors"
	"github.com/conduit-lang/parcelgen/internal/compiler/fields"
	"github.com/conduit-lang/parcelgen/internal/compiler/plan"
	"github.com/conduit-lang/parcelgen/internal/compiler/processor"
)

var (
	planFormat string
	planType   string
)

// NewPlanCommand creates the plan command
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show how each parcel type will be marshaled",
		Long: `Show the marshal plan of each parcel type without generating code.

A plan lists, per field, the encoding, the strategy used to read and write the
field, and the adapter instance resolved for its type.

Examples:
  # Human-readable plans for every type
  parcelgen plan

  # One type, matched by qualified or simple name
  parcelgen plan --type User

  # Machine-readable output for tooling
  parcelgen plan --format json`,
		RunE: runPlan,
	}

	cmd.Flags().StringVar(&planFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVarP(&planType, "type", "t", "", "Only show the plan of this type")

	return cmd
}

// typeOutput is the JSON form of one processed type.
type typeOutput struct {
	Type    string     `json:"type"`
	Package string     `json:"package"`
	File    string     `json:"file"`
	Pass    int        `json:"pass"`
	Plan    *plan.Plan `json:"plan,omitempty"`
	Error   string     `json:"error,omitempty"`
}

type planOutput struct {
	Types       []typeOutput      `json:"types"`
	Diagnostics cerrors.ErrorList `json:"diagnostics"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(planFormat)
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format: %s (supported: json, text)", planFormat)
	}

	p, err := loadProject()
	if err != nil {
		return err
	}
	defer func() { _ = p.logger.Sync() }()

	system, err := p.system(false, false)
	if err != nil {
		return err
	}
	result, err := system.Plan(cmd.Context())
	if err != nil {
		return err
	}

	results := result.Processor.Results()
	if planType != "" {
		results, err = selectType(results, planType)
		if err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), ui.TypeNotFoundError(planType, typeSuggestions(result.Processor.Results(), planType), noColor))
			return err
		}
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		return writePlansJSON(out, results, result.Diagnostics)
	}

	writePlansText(out, results)
	ui.WriteDiagnostics(cmd.ErrOrStderr(), result.Diagnostics, noColor)
	if !result.Success {
		errs, _, _ := result.Diagnostics.ErrorCount()
		return fmt.Errorf("planning failed with %d error(s)", errs)
	}
	return nil
}

// selectType keeps the results whose qualified or simple name is name.
func selectType(results []*processor.Result, name string) ([]*processor.Result, error) {
	var selected []*processor.Result
	for _, r := range results {
		if r.Type == name || simpleTypeName(r.Type) == name {
			selected = append(selected, r)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("type %s not found", name)
	}
	return selected, nil
}

func typeSuggestions(results []*processor.Result, name string) []string {
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Type)
	}
	return ui.FindSimilar(name, names, nil)
}

func simpleTypeName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func writePlansJSON(w io.Writer, results []*processor.Result, diags cerrors.ErrorList) error {
	out := planOutput{Types: make([]typeOutput, 0, len(results)), Diagnostics: diags}
	if out.Diagnostics == nil {
		out.Diagnostics = cerrors.ErrorList{}
	}
	for _, r := range results {
		t := typeOutput{Type: r.Type, Package: r.Package, File: r.File, Pass: r.Pass, Plan: r.Plan}
		if r.Err != nil {
			t.Error = cerrors.Compact(r.Err)
		}
		out.Types = append(out.Types, t)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func writePlansText(w io.Writer, results []*processor.Result) {
	red := color.New(color.FgRed)
	if noColor {
		red.DisableColor()
	}

	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		ui.Header(w, r.Type, noColor)

		kv := ui.NewKeyValueTable(w, noColor)
		kv.AddRow("Package", r.Package)
		kv.AddRow("Schema", r.File)
		kv.AddRow("Pass", fmt.Sprint(r.Pass))
		if r.Plan == nil {
			kv.Render()
			red.Fprintf(w, "not planned: %v\n", r.Err)
			continue
		}
		kv.AddRow("Go type", r.Plan.GoType)
		kv.AddRow("Construction", construction(r.Plan.Construction))
		kv.Render()

		if len(r.Plan.Fields) > 0 {
			fmt.Fprintln(w)
			table := ui.NewTable(w, []string{"FIELD", "TYPE", "ENCODING", "READ", "WRITE", "ADAPTER"}, &ui.TableOptions{NoColor: noColor})
			for _, f := range r.Plan.Fields {
				table.AddRow(f.Name, f.Type, encoding(f), readStrategy(f.Read), writeStrategy(f.Write), adapterRef(r.Plan, f.Adapter))
			}
			table.Render()
		}

		if len(r.Plan.Decls) > 0 {
			fmt.Fprintln(w)
			table := ui.NewTable(w, []string{"ADAPTER", "TYPE", "CONSTRUCTOR", "ARGS"}, &ui.TableOptions{NoColor: noColor})
			for _, d := range r.Plan.Decls {
				table.AddRow(d.Name, d.TypeName, d.Func, declArgs(r.Plan, d))
			}
			table.Render()
		}
	}
}

func construction(c fields.Construction) string {
	switch c.Kind {
	case fields.ConstructCall:
		return fmt.Sprintf("%s(%s)", c.Func, strings.Join(c.Args, ", "))
	default:
		return c.Kind.String()
	}
}

func encoding(f *plan.FieldPlan) string {
	if f.NullTag {
		return f.Encoding.String() + ", null tag"
	}
	return f.Encoding.String()
}

func readStrategy(r fields.ReadInfo) string {
	if r.Kind == fields.ReadAccessor {
		return fmt.Sprintf("%s %s()", r.Kind, r.Accessor)
	}
	return r.Kind.String()
}

func writeStrategy(w fields.WriteInfo) string {
	switch w.Kind {
	case fields.WriteConstructor:
		return fmt.Sprintf("%s #%d", w.Kind, w.Index)
	case fields.WriteMutator:
		return fmt.Sprintf("%s %s()", w.Kind, w.Mutator)
	default:
		return w.Kind.String()
	}
}

// adapterRef renders an adapter reference as the expression generated code
// uses for it.
func adapterRef(p *plan.Plan, r *plan.Ref) string {
	if r == nil {
		return "-"
	}
	name := r.TypeName
	if r.Singleton() {
		name = r.Expr
	} else if d, ok := p.Decl(r.TypeName); ok {
		name = d.Name
	}
	if r.Wrap {
		return name + " (null-safe)"
	}
	return name
}

func declArgs(p *plan.Plan, d *plan.Decl) string {
	args := make([]string, 0, len(d.Args))
	for _, a := range d.Args {
		switch {
		case a.Ref != nil:
			args = append(args, adapterRef(p, a.Ref))
		case a.Factory != "":
			args = append(args, a.Factory)
		default:
			args = append(args, a.GoType)
		}
	}
	return strings.Join(args, ", ")
}
