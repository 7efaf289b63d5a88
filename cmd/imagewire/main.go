// Command imagewire generates SAM templates from Go resource declarations.
//
// Usage:
//
//	imagewire build ./stack/...      Generate SAM template
//	imagewire lint ./stack/...       Check for issues
//	imagewire validate ./stack/...   Validate references and templates
//	imagewire version                Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "imagewire",
		Short: "Generate SAM templates from Go",
		Long: `imagewire generates CloudFormation/SAM templates from Go resource declarations.

Define your infrastructure using native Go syntax:

    var ImagesFunction = serverless.Function{
        Handler: "bootstrap",
        Runtime: "provided.al2023",
    }

Then generate the template:

    imagewire build ./stack/...`,
	}

	rootCmd.AddCommand(
		newBuildCmd(),
		newValidateCmd(),
		newListCmd(),
		newLintCmd(),
		newGraphCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("imagewire %s\n", getVersion())
		},
	}
}
