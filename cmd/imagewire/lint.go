package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	imagewire "github.com/imagewire/imagewire"
	"github.com/imagewire/imagewire/internal/discover"
	"github.com/imagewire/imagewire/internal/linter"
)

func newLintCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "lint [packages...]",
		Short: "Check Go packages for issues",
		Long: `Lint checks Go packages containing resource declarations for common issues.

Rules:
    IW001: Use pseudo-parameter constants instead of hardcoded strings
    IW002: Use intrinsic types instead of raw map[string]any
    IW003: Detect duplicate resource variable names
    IW004: Split large files with too many resources
    IW005: Do not hardcode secrets; use a NoEcho Parameter

Examples:
    imagewire lint ./stack/...
    imagewire lint ./stack/... --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(args, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runLint(packages []string, format string) error {
	var issues []imagewire.LintIssue

	// Discovery validates references alongside the style rules.
	discoverResult, err := discover.Discover(discover.Options{
		Packages: packages,
	})
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}

	for _, e := range discoverResult.Errors {
		issues = append(issues, imagewire.LintIssue{
			Severity: "error",
			Message:  e.Error(),
			Rule:     "undefined-reference",
		})
	}

	for _, pkg := range packages {
		lintResult, err := linter.LintPackage(pkg, linter.Options{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to lint %s: %v\n", pkg, err)
			continue
		}

		for _, issue := range lintResult.Issues {
			issues = append(issues, imagewire.LintIssue{
				Severity: issue.Severity,
				Message:  issue.Message,
				Rule:     issue.Rule,
				File:     issue.File,
				Line:     issue.Line,
				Column:   issue.Column,
			})
		}
	}

	result := imagewire.LintResult{
		Success: len(issues) == 0,
		Issues:  issues,
	}

	return outputLintResult(result, format)
}

func outputLintResult(result imagewire.LintResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Success {
			fmt.Println("No issues found.")
			return nil
		}

		for _, issue := range result.Issues {
			if issue.File != "" {
				fmt.Printf("%s:%d:%d: %s: %s [%s]\n",
					issue.File, issue.Line, issue.Column,
					issue.Severity, issue.Message, issue.Rule)
			} else {
				fmt.Printf("%s: %s [%s]\n", issue.Severity, issue.Message, issue.Rule)
			}
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if !result.Success {
		os.Exit(2) // issues found
	}

	return nil
}
