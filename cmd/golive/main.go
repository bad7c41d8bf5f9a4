// Command golive is the small companion CLI for the golive library.
//
// Its main job is extracting the embedded client runtime for asset
// pipelines that prefer serving static files themselves instead of
// mounting golive.ScriptHandler:
//
//	golive script -o static/livecomponents.js
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kainovaii/golive"
)

const version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:           "golive",
		Short:         "Companion CLI for the golive component library",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newScriptCmd(), newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newScriptCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "script",
		Short: "Write the embedded client runtime to a file",
		Long: `Write the embedded livecomponents.js client runtime to a file.

Use this when your deployment serves static assets from a CDN or a
fingerprinting pipeline rather than from the Go process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				_, err := cmd.OutOrStdout().Write(golive.ClientScript())
				return err
			}
			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(output, golive.ClientScript(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(golive.ClientScript()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: stdout)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the golive version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "golive version %s\n", version)
		},
	}
}
