package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnana997/modpeek/pkg/render"
	"github.com/gnana997/modpeek/pkg/surface"
)

var (
	flagTreeDepth  int
	flagTreeFormat string
)

var treeCmd = &cobra.Command{
	Use:   "tree <module>",
	Short: "Show a module's API surface as a tree",
	Long:  "Explores a dotted module path and prints its functions, classes, constants and submodules. Accepts [package::]dotted.path[@version] specifiers.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTree,
}

func init() {
	treeCmd.Flags().IntVar(&flagTreeDepth, "depth", 2, "maximum submodule depth")
	treeCmd.Flags().StringVar(&flagTreeFormat, "format", "pretty", "output format: pretty|json")
}

func runTree(cmd *cobra.Command, args []string) error {
	if err := validateFormat(flagTreeFormat); err != nil {
		return err
	}

	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.close()

	record, err := stack.service.Tree(cmd.Context(), args[0], flagTreeDepth)
	if err != nil {
		return err
	}

	displayName := args[0]
	if spec, perr := surface.ParseSpec(args[0]); perr == nil {
		displayName = spec.ModulePath
	}

	switch flagTreeFormat {
	case "json":
		out, err := render.NewJSONRenderer().Tree(record, displayName)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	default:
		fmt.Fprint(cmd.OutOrStdout(), render.NewPrettyRenderer(displayConfig()).Tree(record, displayName))
	}
	return nil
}

func validateFormat(format string) error {
	switch format {
	case "pretty", "json":
		return nil
	default:
		return fmt.Errorf("invalid format %q: expected pretty or json", format)
	}
}
