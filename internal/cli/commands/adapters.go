package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/parcelgen/internal/cli/ui"
	"github.com/conduit-lang/parcelgen/internal/compiler/adapter"
	"github.com/conduit-lang/parcelgen/internal/compiler/types"
)

var (
	adaptersMatch   string
	adaptersBuiltin bool
	adaptersType    string
)

// NewAdaptersCommand creates the adapters command
func NewAdaptersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adapters",
		Short: "List the adapters available for field resolution",
		Long: `List the adapters available for field resolution, in resolution order.

The list holds the builtin adapters followed by the adapters declared in the
project's schemas. When several adapters match a field type, the one with the
highest priority wins.

Examples:
  # Every adapter known to the project
  parcelgen adapters

  # Adapters whose name or adapted type contains "List"
  parcelgen adapters --match list

  # Only the builtin adapters, without loading a project
  parcelgen adapters --builtin

  # The adapters that apply to a field type, in the order they are tried
  parcelgen adapters --type "ArrayList<String>"`,
		RunE: runAdapters,
	}

	cmd.Flags().StringVarP(&adaptersMatch, "match", "m", "", "Only list adapters whose name or adapted type contains this text")
	cmd.Flags().BoolVar(&adaptersBuiltin, "builtin", false, "Only list builtin adapters")
	cmd.Flags().StringVarP(&adaptersType, "type", "t", "", "Only list adapters applicable to this type expression")

	return cmd
}

func runAdapters(cmd *cobra.Command, args []string) error {
	var fieldType types.Type
	if adaptersType != "" {
		t, err := types.Parse(adaptersType)
		if err != nil {
			return fmt.Errorf("invalid type %q: %w", adaptersType, err)
		}
		fieldType = t
	}

	var registry *adapter.Registry
	var hierarchy types.Hierarchy
	if adaptersBuiltin {
		registry = adapter.NewRegistry(nil)
		hierarchy = types.NewUniverse()
	} else {
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
		registry = result.Processor.Registry()
		hierarchy = result.Processor.Universe()
	}

	out := cmd.OutOrStdout()
	if fieldType != nil {
		return printMatches(out, adapter.NewResolver(registry, hierarchy, nil), fieldType)
	}

	match := strings.ToLower(adaptersMatch)
	table := ui.NewTable(out, []string{"ADAPTER", "ADAPTS", "PRIORITY", "PROPERTIES"}, &ui.TableOptions{NoColor: noColor})
	for _, d := range registry.Descriptors() {
		name := adapterName(d)
		if match != "" && !strings.Contains(strings.ToLower(name), match) &&
			!strings.Contains(strings.ToLower(d.Adapted.String()), match) {
			continue
		}
		table.AddRow(name, d.Adapted.String(), fmt.Sprint(d.Priority), properties(d))
	}

	if table.Len() == 0 {
		fmt.Fprint(out, ui.Warning(fmt.Sprintf("No adapter matches %q.", adaptersMatch), noColor))
		return nil
	}
	table.Render()
	return nil
}

// printMatches lists the adapters applicable to t and marks the one
// resolution selects.
func printMatches(out io.Writer, resolver *adapter.Resolver, t types.Type) error {
	match := strings.ToLower(adaptersMatch)
	selected, resolveErr := resolver.Resolve(t)

	table := ui.NewTable(out, []string{"ADAPTER", "ADAPTS", "TYPE ARGS", "PRIORITY", "SELECTED"}, &ui.TableOptions{NoColor: noColor})
	for _, m := range resolver.Matching(t) {
		d := m.Descriptor
		name := adapterName(d)
		if match != "" && !strings.Contains(strings.ToLower(name), match) &&
			!strings.Contains(strings.ToLower(d.Adapted.String()), match) {
			continue
		}
		args := make([]string, len(m.TypeArgs))
		for i, a := range m.TypeArgs {
			args[i] = a.String()
		}
		typeArgs := "-"
		if len(args) > 0 {
			typeArgs = strings.Join(args, ", ")
		}
		mark := "-"
		if selected != nil && selected.Descriptor == d {
			mark = "yes"
		}
		table.AddRow(name, d.Adapted.String(), typeArgs, fmt.Sprint(d.Priority), mark)
	}

	if table.Len() == 0 {
		fmt.Fprint(out, ui.Warning(fmt.Sprintf("No adapter applies to %s.", t), noColor))
	} else {
		table.Render()
	}
	if resolveErr != nil {
		fmt.Fprint(out, ui.Warning(fmt.Sprintf("%s does not resolve: %v", t, resolveErr), noColor))
	}
	return nil
}

func adapterName(d *adapter.Descriptor) string {
	if len(d.Params) == 0 {
		return d.Name
	}
	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = p.Name
	}
	return d.Name + "<" + strings.Join(params, ", ") + ">"
}

func properties(d *adapter.Descriptor) string {
	var props []string
	if d.Singleton {
		props = append(props, "singleton")
	}
	if d.NullSafe {
		props = append(props, "null-safe")
	}
	if d.ValueType {
		props = append(props, "value")
	}
	if len(props) == 0 {
		return "-"
	}
	return strings.Join(props, ", ")
}
