package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	imagewire "github.com/imagewire/imagewire"
	"github.com/imagewire/imagewire/internal/discover"
	"github.com/imagewire/imagewire/internal/runner"
	"github.com/imagewire/imagewire/internal/template"
)

func newBuildCmd() *cobra.Command {
	var (
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "build [packages...]",
		Short: "Generate SAM template from Go packages",
		Long: `Build discovers resources in Go packages and generates a SAM template.

Examples:
    imagewire build ./stack/...
    imagewire build ./stack/... -o template.json
    imagewire build ./stack/... --format yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(args, outputFormat, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runBuild(packages []string, format, outputFile string) error {
	tmpl, result, err := buildTemplate(packages)
	if err != nil {
		return err
	}

	resourceNames := make([]string, 0, len(result.Resources))
	for name := range result.Resources {
		resourceNames = append(resourceNames, name)
	}

	buildResult := imagewire.BuildResult{
		Success:   true,
		Template:  *tmpl,
		Resources: resourceNames,
	}

	return outputBuildResult(buildResult, format, outputFile)
}

// buildTemplate runs the full discover/extract/build pipeline.
// Shared between build and watch.
func buildTemplate(packages []string) (*imagewire.Template, *discover.Result, error) {
	result, err := discover.Discover(discover.Options{
		Packages: packages,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("discovery failed: %w", err)
	}

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return nil, nil, fmt.Errorf("build failed")
	}

	builder := template.NewBuilderFull(
		result.Resources,
		result.Parameters,
		result.Outputs,
	)

	// Attribute references are zero values at runtime, so splice them in
	// from discovery. Resolution follows references through property vars.
	for name := range result.Resources {
		builder.SetVarAttrRefs(name, result.ResolveAttrRefs(name))
	}
	for name := range result.Outputs {
		builder.SetVarAttrRefs(name, result.ResolveAttrRefs(name))
	}

	values, err := runner.ExtractAll(
		packages[0],
		result.Resources,
		result.Parameters,
		result.Outputs,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("extracting values: %w", err)
	}

	for name, props := range values.Resources {
		builder.SetValue(name, props)
	}
	for name, props := range values.Parameters {
		builder.SetValue(name, props)
	}
	for name, props := range values.Outputs {
		builder.SetValue(name, props)
	}

	tmpl, err := builder.Build()
	if err != nil {
		return nil, nil, err
	}

	return tmpl, result, nil
}

func outputBuildResult(result imagewire.BuildResult, format, outputFile string) error {
	var data []byte
	var err error

	switch format {
	case "json":
		data, err = template.ToJSON(&result.Template)
	case "yaml":
		data, err = template.ToYAML(&result.Template)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if err != nil {
		return err
	}

	if outputFile == "" {
		fmt.Println(string(data))
		return nil
	}

	return os.WriteFile(outputFile, data, 0644)
}
