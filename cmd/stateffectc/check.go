package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stateffect/stateffect-go/loader"
	"github.com/stateffect/stateffect-go/schema"
)

// issue is one validation finding, suitable for text or JSON output.
type issue struct {
	File    string `json:"file"`
	Effect  int    `json:"effect"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func newCheckCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Validate effect description files",
		Long: `Parse effect description files (JSON or YAML) and validate each
effect against the built-in shape catalog. Exits non-zero when any
effect is malformed.

Examples:
  # Validate a single file
  stateffectc check effects.yaml

  # Validate several files, JSON output
  stateffectc check --format json a.yaml b.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issues, err := runCheck(args)
			if err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "json":
				encoded, err := json.MarshalIndent(issues, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding issues: %w", err)
				}
				fmt.Println(string(encoded))
			case "text":
				for _, iss := range issues {
					if iss.Field != "" {
						fmt.Printf("%s: effect %d: %s: %s\n", iss.File, iss.Effect, iss.Field, iss.Message)
					} else {
						fmt.Printf("%s: effect %d: %s\n", iss.File, iss.Effect, iss.Message)
					}
				}
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			if len(issues) > 0 {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func runCheck(files []string) ([]issue, error) {
	var issues []issue
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		effects, err := loader.ParseEffects(data)
		if err != nil {
			issues = append(issues, issue{File: file, Message: err.Error()})
			continue
		}
		for i, eff := range effects {
			if exp := schema.Explain(eff); exp != nil {
				issues = append(issues, issue{
					File:    file,
					Effect:  i,
					Field:   exp.Field,
					Message: exp.Message,
				})
			}
		}
	}
	return issues, nil
}

func init() {
	rootCmd.AddCommand(newCheckCommand())
}
