package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	stateffect "github.com/stateffect/stateffect-go"
	"github.com/stateffect/stateffect-go/interp"
	"github.com/stateffect/stateffect-go/loader"
)

func newApplyCommand() *cobra.Command {
	var (
		stateFile  string
		paramsFile string
		noValidate bool
	)

	cmd := &cobra.Command{
		Use:   "apply FILE",
		Short: "Apply an effect description to a state document",
		Long: `Apply the effects in FILE (JSON or YAML) to a state document and
print the full result: the resulting state, the applied and failed
effects, and any pending or speculative entries.

Examples:
  # Apply against an empty document
  stateffectc apply effects.yaml

  # Apply against an existing state document with parameters
  stateffectc apply effects.yaml --state state.json --params params.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			effects, err := loader.ParseEffects(data)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			state := stateffect.Document{}
			if stateFile != "" {
				raw, err := os.ReadFile(stateFile)
				if err != nil {
					return fmt.Errorf("reading %s: %w", stateFile, err)
				}
				state, err = loader.ParseDocument(raw)
				if err != nil {
					return fmt.Errorf("parsing %s: %w", stateFile, err)
				}
			}

			ctx := stateffect.NewContext(state)
			if paramsFile != "" {
				raw, err := os.ReadFile(paramsFile)
				if err != nil {
					return fmt.Errorf("reading %s: %w", paramsFile, err)
				}
				params, err := loader.ParseDocument(raw)
				if err != nil {
					return fmt.Errorf("parsing %s: %w", paramsFile, err)
				}
				ctx = ctx.WithParams(params)
			}

			var opts []interp.Option
			if noValidate {
				opts = append(opts, interp.WithValidation(false))
			}

			result := interp.ApplyAll(state, effects, ctx, opts...)
			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
			fmt.Println(string(encoded))

			if len(result.Failed) > 0 {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&stateFile, "state", "", "State document file (JSON or YAML)")
	cmd.Flags().StringVar(&paramsFile, "params", "", "Parameter document file (JSON or YAML)")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip shape validation before applying")
	return cmd
}

func init() {
	rootCmd.AddCommand(newApplyCommand())
}
