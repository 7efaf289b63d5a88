// Package validation runs template and stack validation.
//
// Two layers are checked:
//   - imagewire lint: style and pattern rules on the stack Go source
//   - cfn-lint-go: CloudFormation validation on the generated template
package validation

import (
	"fmt"
	"os"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"

	"github.com/imagewire/imagewire/internal/linter"
)

// LintResult contains the result of linting stack source code.
type LintResult struct {
	Passed bool     `json:"passed"`
	Issues []string `json:"issues"`
}

// CfnLintResult contains the result of running cfn-lint on a template.
type CfnLintResult struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
}

// TotalIssues returns the total number of issues found.
func (r CfnLintResult) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// Result contains all validation results for a stack.
type Result struct {
	LintResult    *LintResult    `json:"lint_result,omitempty"`
	CfnLintResult *CfnLintResult `json:"cfn_lint_result,omitempty"`
}

// Passed reports whether every layer that ran passed.
func (r Result) Passed() bool {
	if r.LintResult != nil && !r.LintResult.Passed {
		return false
	}
	if r.CfnLintResult != nil && !r.CfnLintResult.Passed {
		return false
	}
	return true
}

// RunLint lints the stack package source with the built-in rules.
func RunLint(packageDir string) (*LintResult, error) {
	res, err := linter.LintPackage(packageDir, linter.Options{})
	if err != nil {
		return nil, fmt.Errorf("linting %s: %w", packageDir, err)
	}

	result := &LintResult{
		Passed: res.Success,
		Issues: []string{},
	}
	for _, issue := range res.Issues {
		result.Issues = append(result.Issues,
			fmt.Sprintf("%s:%d:%d: %s: %s", issue.File, issue.Line, issue.Column, issue.Rule, issue.Message))
	}
	return result, nil
}

// RunCfnLint runs cfn-lint-go on the given template file.
// cfn-lint-go is used as a library dependency for guaranteed version control.
func RunCfnLint(templatePath string) (*CfnLintResult, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Template file not found: %s", templatePath)},
		}, nil
	}

	cfn := lint.New(lint.Options{})
	matches, err := cfn.LintFile(templatePath)
	if err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Linter error: %v", err)},
		}, nil
	}

	result := &CfnLintResult{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
	}

	if len(matches) == 0 {
		result.Passed = true
		return result, nil
	}

	for _, match := range matches {
		formatted := formatMatch(match)

		switch match.Level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	// Warnings are acceptable, errors are not.
	result.Passed = len(result.Errors) == 0

	return result, nil
}

// formatMatch formats a cfn-lint-go match for display.
func formatMatch(match lint.Match) string {
	pathStr := ""
	if len(match.Location.Path) > 0 {
		parts := make([]string, len(match.Location.Path))
		for i, p := range match.Location.Path {
			parts[i] = fmt.Sprintf("%v", p)
		}
		pathStr = strings.Join(parts, "/")
	}

	if pathStr != "" {
		return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, pathStr)
	}
	return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
}

// ValidateStack lints the stack source and, when templatePath is set,
// validates the generated template.
func ValidateStack(packageDir, templatePath string) (*Result, error) {
	result := &Result{}

	lintResult, err := RunLint(packageDir)
	if err != nil {
		return nil, err
	}
	result.LintResult = lintResult

	if templatePath != "" {
		cfnResult, err := RunCfnLint(templatePath)
		if err != nil {
			return nil, err
		}
		result.CfnLintResult = cfnResult
	}

	return result, nil
}
