// Package linter provides lint rules for stack declaration code.
package linter

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// Severity levels for lint issues.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Issue is a single lint finding.
type Issue struct {
	Rule       string
	Message    string
	Suggestion string
	File       string
	Line       int
	Column     int
	Severity   string
}

// Result contains the outcome of linting.
type Result struct {
	Success bool
	Issues  []Issue
}

// Options configures the linter.
type Options struct {
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
	// MaxResources for the FileTooLarge rule.
	MaxResources int
}

// LintFile lints a single Go file.
func LintFile(path string, opts Options) (Result, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return Result{}, err
	}

	rules := getRules(opts)
	var issues []Issue

	for _, rule := range rules {
		issues = append(issues, rule.Check(file, fset)...)
	}

	return Result{
		Success: len(issues) == 0,
		Issues:  issues,
	}, nil
}

// LintPackage lints all Go files in a package directory.
func LintPackage(pkgPath string, opts Options) (Result, error) {
	if strings.HasSuffix(pkgPath, "/...") {
		return lintRecursive(strings.TrimSuffix(pkgPath, "/..."), opts)
	}
	if strings.HasSuffix(pkgPath, "...") {
		return lintRecursive(strings.TrimSuffix(pkgPath, "..."), opts)
	}

	fset := token.NewFileSet()

	pkgs, err := parser.ParseDir(fset, pkgPath, nil, parser.ParseComments)
	if err != nil {
		return Result{}, err
	}

	rules := getRules(opts)
	var allIssues []Issue

	for _, pkg := range pkgs {
		for _, file := range pkg.Files {
			for _, rule := range rules {
				allIssues = append(allIssues, rule.Check(file, fset)...)
			}
		}
	}

	return Result{
		Success: len(allIssues) == 0,
		Issues:  allIssues,
	}, nil
}

// lintRecursive lints all Go packages under root.
func lintRecursive(root string, opts Options) (Result, error) {
	var allIssues []Issue

	if root == "" {
		root = "."
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() && info.Name() == "vendor" {
			return filepath.SkipDir
		}
		if info.IsDir() && strings.HasPrefix(info.Name(), ".") && info.Name() != "." {
			return filepath.SkipDir
		}

		if !info.IsDir() && strings.HasSuffix(path, ".go") {
			if strings.HasSuffix(path, "_test.go") {
				return nil
			}

			result, err := LintFile(path, opts)
			if err != nil {
				// Skip files that fail to parse
				return nil
			}

			allIssues = append(allIssues, result.Issues...)
		}

		return nil
	})

	if err != nil {
		return Result{}, err
	}

	return Result{
		Success: len(allIssues) == 0,
		Issues:  allIssues,
	}, nil
}

// getRules returns the rules to use based on options.
func getRules(opts Options) []Rule {
	all := AllRules()

	if opts.MaxResources > 0 {
		for i, r := range all {
			if ftl, ok := r.(FileTooLarge); ok {
				ftl.MaxResources = opts.MaxResources
				all[i] = ftl
			}
		}
	}

	if len(opts.EnabledRules) == 0 {
		return all
	}

	enabled := make(map[string]bool)
	for _, id := range opts.EnabledRules {
		enabled[id] = true
	}

	var filtered []Rule
	for _, r := range all {
		if enabled[r.ID()] {
			filtered = append(filtered, r)
		}
	}

	return filtered
}
