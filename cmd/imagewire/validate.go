package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	imagewire "github.com/imagewire/imagewire"
	"github.com/imagewire/imagewire/internal/discover"
	"github.com/imagewire/imagewire/internal/validation"
)

// newValidateCmd creates the "validate" subcommand.
func newValidateCmd() *cobra.Command {
	var (
		outputFormat string
		templateFile string
	)

	cmd := &cobra.Command{
		Use:   "validate [packages...]",
		Short: "Validate resources and references",
		Long: `Validate discovers resources and checks for issues.

Checks performed:
  - Reference validity: all resource references point to defined declarations
  - Dependency graph: resource dependencies exist
  - Template validity: cfn-lint on a generated template (with --template)

Examples:
    imagewire validate ./stack/...
    imagewire validate ./stack/... --template template.yaml
    imagewire validate ./stack/... --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args, outputFormat, templateFile)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVarP(&templateFile, "template", "t", "", "Generated template to check with cfn-lint")

	return cmd
}

// runValidate validates declarations and, optionally, a generated template.
func runValidate(packages []string, format, templateFile string) error {
	result, err := discover.Discover(discover.Options{
		Packages: packages,
	})
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	validateResult := imagewire.ValidateResult{
		Success:   len(result.Errors) == 0,
		Resources: len(result.Resources),
	}

	for _, e := range result.Errors {
		validateResult.Errors = append(validateResult.Errors, e.Error())
	}

	if templateFile != "" {
		cfnResult, err := validation.RunCfnLint(templateFile)
		if err != nil {
			return err
		}
		validateResult.Errors = append(validateResult.Errors, cfnResult.Errors...)
		validateResult.Warnings = append(validateResult.Warnings, cfnResult.Warnings...)
		if !cfnResult.Passed {
			validateResult.Success = false
		}
	}

	return outputValidateResult(validateResult, format)
}

func outputValidateResult(result imagewire.ValidateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Success && len(result.Warnings) == 0 {
			fmt.Printf("Validation passed: %d resources OK\n", result.Resources)
			return nil
		}

		if !result.Success {
			fmt.Println("Validation FAILED:")
		}
		for _, errMsg := range result.Errors {
			fmt.Printf("  ERROR: %s\n", errMsg)
		}
		for _, warnMsg := range result.Warnings {
			fmt.Printf("  WARNING: %s\n", warnMsg)
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		os.Exit(1)
	}

	return nil
}
