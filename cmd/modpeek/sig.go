package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnana997/modpeek/pkg/render"
	"github.com/gnana997/modpeek/pkg/surface"
)

var flagSigFormat string

var sigCmd = &cobra.Command{
	Use:   "sig <module:object>",
	Short: "Show the signature of a function or class",
	Long:  "Finds the parameter list and return type of a callable, following import chains for re-exported symbols. Accepts 'module:object' or 'module.object'.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSig,
}

func init() {
	sigCmd.Flags().StringVar(&flagSigFormat, "format", "pretty", "output format: pretty|json")
}

func runSig(cmd *cobra.Command, args []string) error {
	if err := validateFormat(flagSigFormat); err != nil {
		return err
	}

	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.close()

	pretty := render.NewPrettyRenderer(displayConfig())
	jsonr := render.NewJSONRenderer()

	sig, err := stack.service.Signature(cmd.Context(), args[0])
	if err != nil {
		// A miss still prints an answer; only real failures abort.
		var miss *surface.SymbolNotFound
		if !errors.As(err, &miss) {
			return err
		}
		if flagSigFormat == "json" {
			out, jerr := jsonr.SignatureNotAvailable(miss.Symbol)
			if jerr != nil {
				return jerr
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), pretty.SignatureNotAvailable(miss.Symbol))
		return nil
	}

	if flagSigFormat == "json" {
		out, err := jsonr.Signature(sig)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), pretty.Signature(sig))
	return nil
}
