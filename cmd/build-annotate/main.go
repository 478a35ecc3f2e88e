package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "build-annotate",
		Short: "Build Annotator - post-build scripts for badges and status",
		Long: `Build Annotator runs a post-build script against a finished build.
The script can attach badges and summaries to the build record and
degrade the build result. Extra script libraries must be approved by an
administrator before they are loaded.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
